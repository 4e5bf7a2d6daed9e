package content

import (
	"fmt"
	"reflect"
	"sort"

	"merry/internal/domain/models"
)

// Diff computes the structural key-level delta between two content
// snapshots. Entries carry dotted JSON paths; array elements are compared by
// index. The result is deterministic: map keys are visited in sorted order.
//
// Storing the diff next to the full snapshot is deliberate redundancy: the
// snapshot reconstructs any version in O(1), the diff renders "what changed"
// without recomputing it from two snapshots.
func Diff(parent, next *models.Content) ([]models.DiffEntry, error) {
	parentMap, err := ToMap(parent)
	if err != nil {
		return nil, err
	}
	nextMap, err := ToMap(next)
	if err != nil {
		return nil, err
	}

	var entries []models.DiffEntry
	diffValue("", parentMap, nextMap, &entries)
	return entries, nil
}

func diffValue(path string, from, to any, entries *[]models.DiffEntry) {
	fromMap, fromIsMap := from.(map[string]any)
	toMap, toIsMap := to.(map[string]any)
	if fromIsMap && toIsMap {
		diffMap(path, fromMap, toMap, entries)
		return
	}

	fromSlice, fromIsSlice := from.([]any)
	toSlice, toIsSlice := to.([]any)
	if fromIsSlice && toIsSlice {
		diffSlice(path, fromSlice, toSlice, entries)
		return
	}

	if !reflect.DeepEqual(from, to) {
		*entries = append(*entries, models.DiffEntry{Op: models.DiffChange, Path: path, From: from, To: to})
	}
}

func diffMap(path string, from, to map[string]any, entries *[]models.DiffEntry) {
	keys := make([]string, 0, len(from)+len(to))
	seen := make(map[string]bool, len(from)+len(to))
	for k := range from {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range to {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		childPath := k
		if path != "" {
			childPath = path + "." + k
		}
		fromVal, inFrom := from[k]
		toVal, inTo := to[k]
		switch {
		case !inFrom:
			*entries = append(*entries, models.DiffEntry{Op: models.DiffAdd, Path: childPath, To: toVal})
		case !inTo:
			*entries = append(*entries, models.DiffEntry{Op: models.DiffRemove, Path: childPath, From: fromVal})
		default:
			diffValue(childPath, fromVal, toVal, entries)
		}
	}
}

func diffSlice(path string, from, to []any, entries *[]models.DiffEntry) {
	n := len(from)
	if len(to) > n {
		n = len(to)
	}
	for i := 0; i < n; i++ {
		childPath := fmt.Sprintf("%s.%d", path, i)
		switch {
		case i >= len(from):
			*entries = append(*entries, models.DiffEntry{Op: models.DiffAdd, Path: childPath, To: to[i]})
		case i >= len(to):
			*entries = append(*entries, models.DiffEntry{Op: models.DiffRemove, Path: childPath, From: from[i]})
		default:
			diffValue(childPath, from[i], to[i], entries)
		}
	}
}
