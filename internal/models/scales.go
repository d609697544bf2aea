package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scale describes one self-report questionnaire: item count and per-item bounds.
type Scale struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Items     int     `yaml:"items"`
	ItemMin   float64 `yaml:"item_min"`
	ItemMax   float64 `yaml:"item_max"`
	SingleMax float64 `yaml:"single_max,omitempty"` // for single-item scales like Cantril
}

// MaxTotal is the ceiling of the scale's total score.
func (s Scale) MaxTotal() float64 {
	if s.Items <= 1 {
		if s.SingleMax > 0 {
			return s.SingleMax
		}
		return s.ItemMax
	}
	return float64(s.Items) * s.ItemMax
}

// ScaleCatalog holds the questionnaire definitions loaded at startup.
type ScaleCatalog struct {
	Scales []Scale `yaml:"scales"`
}

// ByID looks a scale up by its identifier.
func (c *ScaleCatalog) ByID(id string) (Scale, bool) {
	for _, s := range c.Scales {
		if s.ID == id {
			return s, true
		}
	}
	return Scale{}, false
}

// LoadScaleCatalog reads and parses the scales.yaml file.
func LoadScaleCatalog(path string) (*ScaleCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scale catalog: %w", err)
	}

	var catalog ScaleCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scale catalog YAML: %w", err)
	}

	return &catalog, nil
}

// DefaultScaleCatalog returns the built-in WHO-5 / SWLS / Cantril definitions,
// used when no scales.yaml is present.
func DefaultScaleCatalog() *ScaleCatalog {
	return &ScaleCatalog{Scales: []Scale{
		{ID: "who5", Name: "WHO-5 Well-Being Index", Items: 5, ItemMin: 0, ItemMax: 5},
		{ID: "swls", Name: "Satisfaction With Life Scale", Items: 5, ItemMin: 1, ItemMax: 7},
		{ID: "cantril", Name: "Cantril Ladder", Items: 1, ItemMin: 0, ItemMax: 10, SingleMax: 10},
	}}
}
