package content

import (
	"encoding/json"
	"fmt"

	"merry/internal/domain/models"
)

// Canonical serializes content to its canonical JSON form. encoding/json
// sorts map keys, so equal content always yields identical bytes.
func Canonical(c *models.Content) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}
	return data, nil
}

// ToMap converts canonical content back into the generic mapping shape the
// validator accepts. Useful for re-validation and for merge paths that work
// on raw payloads.
func ToMap(c *models.Content) (map[string]any, error) {
	data, err := Canonical(c)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}
	return m, nil
}

// Decode parses stored canonical JSON into the content model.
func Decode(data []byte) (*models.Content, error) {
	var c models.Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if c.Sections == nil {
		c.Sections = []models.Section{}
	}
	if c.Sheets == nil {
		c.Sheets = []models.Sheet{}
	}
	if c.Sources == nil {
		c.Sources = []models.Source{}
	}
	return &c, nil
}
