package content

import (
	"testing"

	"merry/internal/domain/models"
)

func mustNormalize(t *testing.T, raw map[string]any, kind models.Kind) *models.Content {
	t.Helper()
	c, _, err := Normalize(raw, kind)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return c
}

func TestDiff_SectionAdded(t *testing.T) {
	parent := mustNormalize(t, map[string]any{
		"sections": []any{
			map[string]any{"heading": "Q3 Report", "content": "summary"},
		},
	}, models.KindWord)

	next := mustNormalize(t, map[string]any{
		"sections": []any{
			map[string]any{"heading": "Q3 Report", "content": "summary"},
			map[string]any{"heading": "Outlook", "content": "forecast"},
		},
	}, models.KindWord)

	entries, err := Diff(parent, next)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
	}
	if entries[0].Op != models.DiffAdd {
		t.Errorf("expected add, got %s", entries[0].Op)
	}
	if entries[0].Path != "sections.1" {
		t.Errorf("expected path sections.1, got %s", entries[0].Path)
	}
}

func TestDiff_ContentChanged(t *testing.T) {
	parent := mustNormalize(t, map[string]any{
		"sections": []any{
			map[string]any{"heading": "Intro", "content": "old text"},
		},
	}, models.KindWord)

	next := mustNormalize(t, map[string]any{
		"sections": []any{
			map[string]any{"heading": "Intro", "content": "new text"},
		},
	}, models.KindWord)

	entries, err := Diff(parent, next)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
	}
	e := entries[0]
	if e.Op != models.DiffChange || e.Path != "sections.0.content" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.From != "old text" || e.To != "new text" {
		t.Errorf("from/to wrong: %v -> %v", e.From, e.To)
	}
}

func TestDiff_IdenticalContentIsEmpty(t *testing.T) {
	raw := map[string]any{
		"sections": []any{
			map[string]any{"heading": "Same"},
		},
	}
	a := mustNormalize(t, raw, models.KindWord)
	b := mustNormalize(t, raw, models.KindWord)

	entries, err := Diff(a, b)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty diff, got %+v", entries)
	}
}

func TestDiff_RowRemoved(t *testing.T) {
	parent := mustNormalize(t, map[string]any{
		"sheets": []any{
			map[string]any{
				"name":    "Data",
				"columns": []any{map[string]any{"id": "c1", "name": "A"}},
				"rows": []any{
					map[string]any{"cells": map[string]any{"c1": "one"}},
					map[string]any{"cells": map[string]any{"c1": "two"}},
				},
			},
		},
	}, models.KindExcel)

	next := mustNormalize(t, map[string]any{
		"sheets": []any{
			map[string]any{
				"name":    "Data",
				"columns": []any{map[string]any{"id": "c1", "name": "A"}},
				"rows": []any{
					map[string]any{"cells": map[string]any{"c1": "one"}},
				},
			},
		},
	}, models.KindExcel)

	entries, err := Diff(parent, next)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(entries) != 1 || entries[0].Op != models.DiffRemove {
		t.Fatalf("expected one remove entry, got %+v", entries)
	}
	if entries[0].Path != "sheets.0.rows.1" {
		t.Errorf("expected path sheets.0.rows.1, got %s", entries[0].Path)
	}
}
