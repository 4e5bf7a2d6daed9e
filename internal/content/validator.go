// Package content normalizes untrusted document payloads (AI output or API
// client JSON) into the canonical content model and computes structural
// diffs between content snapshots.
package content

import (
	"encoding/json"
	"fmt"

	"merry/internal/config"
	"merry/internal/domain"
	"merry/internal/domain/models"
)

// SchemaError reports the first violated structural constraint of a payload.
// It matches domain.ErrValidation with errors.Is so handlers map it to 400.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return e.Reason
}

// Is allows errors.Is() to match against domain.ErrValidation
func (e *SchemaError) Is(target error) bool {
	return target == domain.ErrValidation
}

func schemaErrorf(format string, args ...any) error {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// Normalize validates an arbitrary mapping against the declared kind and
// produces canonical content. It is a pure function: no side effects, and
// only structural shape is enforced - factual accuracy is the AI prompt's
// responsibility. Recoverable shape problems (empty headings, undeclared row
// keys) are repaired and reported as warnings; hard violations return a
// SchemaError naming the first violated constraint. Unknown top-level keys
// are ignored for forward compatibility.
func Normalize(raw map[string]any, kind models.Kind) (*models.Content, []string, error) {
	if !kind.Valid() {
		return nil, nil, schemaErrorf("unsupported kind %q", kind)
	}

	c := &models.Content{
		Sections: []models.Section{},
		Sheets:   []models.Sheet{},
		Sources:  []models.Source{},
	}
	var warnings []string

	switch kind {
	case models.KindWord:
		sections, warns, err := normalizeSections(asSlice(raw["sections"]), 1)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		if len(sections) == 0 {
			return nil, nil, schemaErrorf("word document requires at least one section")
		}
		c.Sections = sections

	case models.KindExcel:
		sheets, warns, err := normalizeSheets(asSlice(raw["sheets"]))
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		if len(sheets) == 0 {
			return nil, nil, schemaErrorf("excel document requires at least one sheet")
		}
		c.Sheets = sheets
	}

	c.Sources = normalizeSources(asSlice(raw["sources"]))

	return c, warnings, nil
}

// normalizeSections validates one level of the section tree. Sections with
// an empty heading are dropped with a warning rather than failing the whole
// payload; children past the depth cap are dropped the same way.
func normalizeSections(raw []any, depth int) ([]models.Section, []string, error) {
	sections := make([]models.Section, 0, len(raw))
	var warnings []string

	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, nil, schemaErrorf("sections[%d]: expected an object, got %T", i, item)
		}

		heading := asString(m["heading"])
		if heading == "" {
			warnings = append(warnings, fmt.Sprintf("dropped section %d: empty heading", i))
			continue
		}

		sec := models.Section{
			Heading: heading,
			Level:   clampLevel(m["level"], depth),
			Content: asString(m["content"]),
		}

		switch status := asString(m["verification_status"]); status {
		case "", models.VerificationVerified, models.VerificationNeeded:
			sec.VerificationStatus = status
		default:
			warnings = append(warnings, fmt.Sprintf("section %q: unknown verification_status %q dropped", heading, status))
		}

		if children := asSlice(m["children"]); len(children) > 0 {
			if depth >= config.MaxSectionDepth {
				warnings = append(warnings, fmt.Sprintf("section %q: children beyond depth %d dropped", heading, config.MaxSectionDepth))
			} else {
				childSections, childWarns, err := normalizeSections(children, depth+1)
				if err != nil {
					return nil, nil, err
				}
				warnings = append(warnings, childWarns...)
				sec.Children = childSections
			}
		}

		sections = append(sections, sec)
	}

	return sections, warnings, nil
}

func normalizeSheets(raw []any) ([]models.Sheet, []string, error) {
	sheets := make([]models.Sheet, 0, len(raw))
	var warnings []string

	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, nil, schemaErrorf("sheets[%d]: expected an object, got %T", i, item)
		}

		name := asString(m["name"])
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if len(name) > config.MaxSheetNameLength {
			warnings = append(warnings, fmt.Sprintf("sheet %q: name truncated to %d characters", name, config.MaxSheetNameLength))
			name = name[:config.MaxSheetNameLength]
		}

		columns, err := normalizeColumns(asSlice(m["columns"]), i)
		if err != nil {
			return nil, nil, err
		}
		if len(columns) == 0 {
			return nil, nil, schemaErrorf("sheets[%d]: at least one column is required", i)
		}

		rows, rowWarns := normalizeRows(asSlice(m["rows"]), columns, name)
		warnings = append(warnings, rowWarns...)

		sheets = append(sheets, models.Sheet{Name: name, Columns: columns, Rows: rows})
	}

	return sheets, warnings, nil
}

func normalizeColumns(raw []any, sheetIdx int) ([]models.Column, error) {
	columns := make([]models.Column, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, schemaErrorf("sheets[%d].columns[%d]: expected an object, got %T", sheetIdx, i, item)
		}
		col := models.Column{
			ID:   asString(m["id"]),
			Name: asString(m["name"]),
		}
		if col.ID == "" {
			col.ID = fmt.Sprintf("c%d", i+1)
		}
		if col.Name == "" {
			col.Name = fmt.Sprintf("Column %d", i+1)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// normalizeRows keeps every row's cell map keyed exactly by the declared
// column ids: undeclared keys are dropped with a warning, missing keys are
// filled with an explicit null so row arity stays stable for export.
func normalizeRows(raw []any, columns []models.Column, sheetName string) ([]models.Row, []string) {
	declared := make(map[string]bool, len(columns))
	for _, col := range columns {
		declared[col.ID] = true
	}

	rows := make([]models.Row, 0, len(raw))
	var warnings []string

	for i, item := range raw {
		m, _ := item.(map[string]any)
		rawCells, _ := m["cells"].(map[string]any)

		cells := make(map[string]any, len(columns))
		for key, value := range rawCells {
			if !declared[key] {
				warnings = append(warnings, fmt.Sprintf("sheet %q row %d: undeclared cell %q dropped", sheetName, i, key))
				continue
			}
			cells[key] = coerceScalar(value, &warnings, sheetName, i, key)
		}
		for _, col := range columns {
			if _, ok := cells[col.ID]; !ok {
				cells[col.ID] = nil
			}
		}

		rows = append(rows, models.Row{Cells: cells})
	}

	return rows, warnings
}

func normalizeSources(raw []any) []models.Source {
	sources := make([]models.Source, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		src := models.Source{
			Title: asString(m["title"]),
			URL:   asString(m["url"]),
		}
		if src.URL == "" && src.Title == "" {
			continue
		}
		sources = append(sources, src)
	}
	return sources
}

// coerceScalar keeps JSON scalars as-is and stringifies anything structured
// so canonical cells are always scalar-valued.
func coerceScalar(v any, warnings *[]string, sheet string, row int, col string) any {
	switch v.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return v
	default:
		*warnings = append(*warnings, fmt.Sprintf("sheet %q row %d: non-scalar cell %q stringified", sheet, row, col))
		return fmt.Sprint(v)
	}
}

// clampLevel resolves a section's heading level: explicit values are clamped
// to [1,3], absent values default to the tree depth.
func clampLevel(v any, depth int) int {
	level := depth
	switch n := v.(type) {
	case float64:
		level = int(n)
	case int:
		level = n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			level = int(i)
		}
	}
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return level
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
