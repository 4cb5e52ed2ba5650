package model

import "strings"

// UserProfile carries the personal context a verification runs against.
// All matching against profile fields is case-insensitive.
type UserProfile struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Allergies   []string `json:"allergies,omitempty" yaml:"allergies,omitempty"`
	Conditions  []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Medications []string `json:"medications,omitempty" yaml:"medications,omitempty"`
}

// IsAllergicTo reports whether herb matches one of the profile's allergies
func (p *UserProfile) IsAllergicTo(herb string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Allergies {
		if strings.EqualFold(strings.TrimSpace(a), herb) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the profile carries no personal context at all
func (p *UserProfile) IsEmpty() bool {
	return p == nil || (p.Name == "" && len(p.Allergies) == 0 &&
		len(p.Conditions) == 0 && len(p.Medications) == 0)
}
