package knowledge

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/servvia/trust/internal/model"
)

// InteractionProfile lists the drugs a herb is known to interact with, in
// table order, plus the shared effect description and safer alternatives.
type InteractionProfile struct {
	Herb         string            `yaml:"herb"`
	Drugs        orderedSeverities `yaml:"interacts_with"`
	Effect       string            `yaml:"effect"`
	Alternatives []string          `yaml:"alternatives"`
}

// DrugSeverity pairs one drug key with its interaction severity
type DrugSeverity struct {
	Drug     string
	Severity model.InteractionSeverity
}

// orderedSeverities decodes a YAML mapping while preserving file order.
// Order matters: when several drug keys match one medication, the last
// match in table order decides the interaction note.
type orderedSeverities []DrugSeverity

func (o *orderedSeverities) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("interacts_with: expected a mapping")
	}
	out := make(orderedSeverities, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		d := DrugSeverity{
			Drug:     strings.ToLower(strings.TrimSpace(node.Content[i].Value)),
			Severity: model.InteractionSeverity(strings.ToLower(node.Content[i+1].Value)),
		}
		switch d.Severity {
		case model.SeverityCritical, model.SeverityHigh, model.SeverityModerate, model.SeverityLow:
		default:
			return fmt.Errorf("drug %q: unknown severity %q", d.Drug, d.Severity)
		}
		out = append(out, d)
	}
	*o = out
	return nil
}

func (p *InteractionProfile) validate() error {
	if p.Herb == "" {
		return fmt.Errorf("missing herb")
	}
	if len(p.Drugs) == 0 {
		return fmt.Errorf("%s: no drugs listed", p.Herb)
	}
	return nil
}

// Matches returns every drug key that overlaps the medication name, in
// table order. Matching is substring in both directions so brand names
// and generic classes land on the same key ("coumadin 5mg" matches
// "coumadin", "thinner" matches "blood thinner").
func (p *InteractionProfile) Matches(medication string) []DrugSeverity {
	med := strings.ToLower(strings.TrimSpace(medication))
	if med == "" {
		return nil
	}
	var out []DrugSeverity
	for _, d := range p.Drugs {
		if strings.Contains(med, d.Drug) || strings.Contains(d.Drug, med) {
			out = append(out, d)
		}
	}
	return out
}

// First returns the first matching drug key in table order
func (p *InteractionProfile) First(medication string) (DrugSeverity, bool) {
	m := p.Matches(medication)
	if len(m) == 0 {
		return DrugSeverity{}, false
	}
	return m[0], true
}
