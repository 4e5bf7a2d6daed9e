package intent

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/intent.yaml
var configFiles embed.FS

// Settings is the embedded intent-parsing configuration.
type Settings struct {
	DataKeywords []string `yaml:"data_keywords"`
	Budgets      struct {
		Data      int `yaml:"data"`
		Narrative int `yaml:"narrative"`
		Rewrite   int `yaml:"rewrite"`
	} `yaml:"budgets"`
}

// LoadSettings parses the embedded YAML configuration.
func LoadSettings() (*Settings, error) {
	data, err := configFiles.ReadFile("config/intent.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read intent config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intent config: %w", err)
	}
	if len(s.DataKeywords) == 0 {
		return nil, fmt.Errorf("intent config has no data keywords")
	}
	return &s, nil
}

// SearchBudget returns the number of search results to request for a
// prompt. Data-oriented prompts warrant a larger budget than narrative
// ones.
func (s *Settings) SearchBudget(prompt string) int {
	lower := strings.ToLower(prompt)
	for _, kw := range s.DataKeywords {
		if strings.Contains(lower, kw) {
			return s.Budgets.Data
		}
	}
	return s.Budgets.Narrative
}
