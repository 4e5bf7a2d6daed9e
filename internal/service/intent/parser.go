package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"merry/internal/domain/models"
)

// candidate is the intermediate shape decoded from an LLM completion before
// the schema validator normalizes it.
type candidate struct {
	DocumentType string
	Topic        string
	Tone         string
	Raw          map[string]any // validator input: sections / sheets / sources
}

// decodeCandidate extracts the candidate document from a raw completion.
// Completions are untrusted: they may be fenced in markdown, carry prose
// around the JSON object, or be structurally wrong. Returns false when no
// usable candidate can be recovered; callers fall back to the minimal
// "could not verify" document.
func decodeCandidate(completion string) (*candidate, bool) {
	payload := extractJSON(completion)
	if payload == "" {
		return nil, false
	}

	parsed := gjson.Parse(payload)
	if !parsed.IsObject() {
		return nil, false
	}

	c := &candidate{
		DocumentType: parsed.Get("document_type").String(),
		Topic:        parsed.Get("topic").String(),
		Tone:         parsed.Get("tone").String(),
	}
	if c.DocumentType == "" {
		c.DocumentType = string(models.KindWord)
	}
	if c.Tone == "" {
		c.Tone = "formal"
	}

	var generic map[string]any
	if err := json.Unmarshal([]byte(payload), &generic); err != nil {
		return nil, false
	}

	switch models.Kind(c.DocumentType) {
	case models.KindWord:
		sections, _ := generic["sections"].([]any)
		if len(sections) == 0 {
			return nil, false
		}
		c.Raw = map[string]any{"sections": sections}
	case models.KindExcel:
		sheet, ok := sheetFromTabular(c.Topic, parsed, generic)
		if !ok {
			return nil, false
		}
		c.Raw = map[string]any{"sheets": []any{sheet}}
	default:
		return nil, false
	}

	return c, true
}

// extractJSON strips markdown fences and locates the outermost JSON object
// in a completion.
func extractJSON(completion string) string {
	text := strings.TrimSpace(completion)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if gjson.Valid(text) {
		return text
	}

	// Prose around the object: take the widest brace-delimited slice.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		slice := text[start : end+1]
		if gjson.Valid(slice) {
			return slice
		}
	}
	return ""
}

// sheetFromTabular converts the model's columns/sample_data shape into one
// sheet for the schema validator. Cells keyed by column name are re-keyed to
// generated column ids so rows address cells the canonical way.
func sheetFromTabular(topic string, parsed gjson.Result, generic map[string]any) (map[string]any, bool) {
	names := parsed.Get("columns")
	if !names.IsArray() || len(names.Array()) == 0 {
		return nil, false
	}

	columns := make([]any, 0, len(names.Array()))
	idByName := make(map[string]string, len(names.Array()))
	for i, name := range names.Array() {
		id := fmt.Sprintf("c%d", i+1)
		idByName[name.String()] = id
		columns = append(columns, map[string]any{"id": id, "name": name.String()})
	}

	sampleData, _ := generic["sample_data"].([]any)
	rows := make([]any, 0, len(sampleData))
	for _, item := range sampleData {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cells := make(map[string]any, len(m))
		for name, value := range m {
			if id, ok := idByName[name]; ok {
				cells[id] = value
			}
		}
		rows = append(rows, map[string]any{"cells": cells})
	}

	name := topic
	if name == "" {
		name = "Data"
	}
	return map[string]any{
		"name":    name,
		"columns": columns,
		"rows":    rows,
	}, true
}
