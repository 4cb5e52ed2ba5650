package knowledge

import "strings"

// ContraProfile lists conditions that block a herb outright, plus
// pregnancy and surgery guidance.
type ContraProfile struct {
	Herb        string   `yaml:"herb"`
	Conditions  []string `yaml:"conditions"`
	Pregnancy   string   `yaml:"pregnancy,omitempty"`
	Surgery     string   `yaml:"surgery,omitempty"`
	MaxDuration string   `yaml:"max_duration,omitempty"`
}

// BlockedBy returns the user's conditions that collide with this profile,
// one entry per blocked-condition match. A blocked condition matches when
// it appears as a case-insensitive substring of the user's condition, so
// "bleeding disorder" catches "inherited bleeding disorders".
func (c *ContraProfile) BlockedBy(userConditions []string) []string {
	var hits []string
	for _, blocked := range c.Conditions {
		bl := strings.ToLower(blocked)
		if bl == "" {
			continue
		}
		for _, uc := range userConditions {
			if strings.Contains(strings.ToLower(uc), bl) {
				hits = append(hits, uc)
			}
		}
	}
	return hits
}
