package intent

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		want       string
	}{
		{
			name:       "bare object",
			completion: `{"a": 1}`,
			want:       `{"a": 1}`,
		},
		{
			name:       "fenced json",
			completion: "```json\n{\"a\": 1}\n```",
			want:       `{"a": 1}`,
		},
		{
			name:       "fenced without language tag",
			completion: "```\n{\"a\": 1}\n```",
			want:       `{"a": 1}`,
		},
		{
			name:       "prose around object",
			completion: `Sure! Here is the document: {"a": 1} Hope that helps.`,
			want:       `{"a": 1}`,
		},
		{
			name:       "no json at all",
			completion: "I cannot help with that.",
			want:       "",
		},
		{
			name:       "broken json",
			completion: `{"a": `,
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.completion); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeCandidate_Word(t *testing.T) {
	completion := `{
		"document_type": "word",
		"topic": "Solar Power",
		"tone": "technical",
		"sections": [{"heading": "Overview", "content": "text"}]
	}`

	cand, ok := decodeCandidate(completion)
	if !ok {
		t.Fatal("expected a usable candidate")
	}
	if cand.DocumentType != "word" || cand.Topic != "Solar Power" || cand.Tone != "technical" {
		t.Errorf("metadata wrong: %+v", cand)
	}
	sections, _ := cand.Raw["sections"].([]any)
	if len(sections) != 1 {
		t.Errorf("expected 1 raw section, got %d", len(sections))
	}
}

func TestDecodeCandidate_ExcelRekeysCells(t *testing.T) {
	completion := `{
		"document_type": "excel",
		"topic": "Planets",
		"columns": ["Name", "Radius"],
		"sample_data": [
			{"Name": "Mars", "Radius": 3389},
			{"Name": "Venus", "Radius": 6051, "Unknown": "dropped"}
		]
	}`

	cand, ok := decodeCandidate(completion)
	if !ok {
		t.Fatal("expected a usable candidate")
	}

	sheets, _ := cand.Raw["sheets"].([]any)
	if len(sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(sheets))
	}
	sheet := sheets[0].(map[string]any)
	if sheet["name"] != "Planets" {
		t.Errorf("sheet name should default to topic, got %v", sheet["name"])
	}

	columns := sheet["columns"].([]any)
	if len(columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(columns))
	}
	first := columns[0].(map[string]any)
	if first["id"] != "c1" || first["name"] != "Name" {
		t.Errorf("column mapping wrong: %v", first)
	}

	rows := sheet["rows"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	cells := rows[0].(map[string]any)["cells"].(map[string]any)
	if cells["c1"] != "Mars" {
		t.Errorf("cells should be re-keyed by column id, got %v", cells)
	}
	cells = rows[1].(map[string]any)["cells"].(map[string]any)
	if _, ok := cells["Unknown"]; ok {
		t.Error("cells outside declared columns should not survive re-keying")
	}
}

func TestDecodeCandidate_Defaults(t *testing.T) {
	completion := `{"sections": [{"heading": "Only"}]}`

	cand, ok := decodeCandidate(completion)
	if !ok {
		t.Fatal("expected a usable candidate")
	}
	if cand.DocumentType != "word" {
		t.Errorf("document_type should default to word, got %q", cand.DocumentType)
	}
	if cand.Tone != "formal" {
		t.Errorf("tone should default to formal, got %q", cand.Tone)
	}
}

func TestDecodeCandidate_Unusable(t *testing.T) {
	tests := []struct {
		name       string
		completion string
	}{
		{"prose only", "I could not find anything."},
		{"json array", `[1, 2, 3]`},
		{"word without sections", `{"document_type": "word"}`},
		{"excel without columns", `{"document_type": "excel", "sample_data": []}`},
		{"unknown document type", `{"document_type": "slides", "sections": [{"heading": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := decodeCandidate(tt.completion); ok {
				t.Error("expected candidate to be rejected")
			}
		})
	}
}

func TestSearchBudget(t *testing.T) {
	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}

	tests := []struct {
		prompt string
		want   int
	}{
		{"make me a spreadsheet of planets", settings.Budgets.Data},
		{"build an Excel file with sales numbers", settings.Budgets.Data},
		{"a LIST of the top ten films", settings.Budgets.Data},
		{"write an essay about autumn", settings.Budgets.Narrative},
	}

	for _, tt := range tests {
		if got := settings.SearchBudget(tt.prompt); got != tt.want {
			t.Errorf("SearchBudget(%q) = %d, want %d", tt.prompt, got, tt.want)
		}
	}
}
