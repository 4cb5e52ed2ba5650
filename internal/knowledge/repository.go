package knowledge

import (
	"fmt"
	"io/fs"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/servvia/trust/internal/model"
)

// HerbRecord is a curated herb entry with preparation guidance
type HerbRecord struct {
	ID                int      `yaml:"-" json:"id"`
	Name              string   `yaml:"name" json:"name"`
	ScientificName    string   `yaml:"scientific_name" json:"scientific_name"`
	Description       string   `yaml:"description" json:"description,omitempty"`
	Properties        []string `yaml:"properties" json:"properties,omitempty"`
	Contraindications []string `yaml:"contraindications" json:"contraindications,omitempty"`
	Usage             string   `yaml:"usage" json:"usage,omitempty"`
}

// ConditionRecord is a curated condition entry
type ConditionRecord struct {
	ID       int      `yaml:"-" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	ICDCode  string   `yaml:"icd_code" json:"icd_code,omitempty"`
	Symptoms []string `yaml:"symptoms" json:"symptoms,omitempty"`
}

// EvidenceLink ties a curated herb to a condition with graded evidence
type EvidenceLink struct {
	ID          int                `json:"id"`
	HerbID      int                `json:"herb_id"`
	ConditionID int                `json:"condition_id"`
	Tier        model.EvidenceTier `json:"evidence_tier"`
	PubMedIDs   []string           `json:"pubmed_ids,omitempty"`
	Mechanism   string             `json:"mechanism,omitempty"`
}

// Remedy is one evidence-ranked option for a condition
type Remedy struct {
	Herb      *HerbRecord        `json:"herb"`
	Tier      model.EvidenceTier `json:"evidence_tier"`
	TierLabel string             `json:"evidence_tier_label"`
	PubMedIDs []string           `json:"pubmed_ids,omitempty"`
	Mechanism string             `json:"mechanism,omitempty"`
	Score     float64            `json:"score"` // tier weight plus study bonus, one decimal
}

// Repository holds the curated herb and condition records. Unlike Base
// lookups, records can be added at runtime; IDs are assigned in insertion
// order starting from 1.
type Repository struct {
	mu         sync.RWMutex
	herbs      []*HerbRecord
	conditions []*ConditionRecord
	links      []*EvidenceLink
}

// NewRepository returns an empty repository
func NewRepository() *Repository {
	return &Repository{}
}

// AddHerb registers a curated herb and assigns its ID
func (r *Repository) AddHerb(h HerbRecord) *HerbRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := h
	rec.ID = len(r.herbs) + 1
	r.herbs = append(r.herbs, &rec)
	return &rec
}

// AddCondition registers a curated condition and assigns its ID
func (r *Repository) AddCondition(c ConditionRecord) *ConditionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := c
	rec.ID = len(r.conditions) + 1
	r.conditions = append(r.conditions, &rec)
	return &rec
}

// Link records graded evidence between a named herb and condition.
// Both must already exist in the repository.
func (r *Repository) Link(herb, condition string, tier model.EvidenceTier, pubmedIDs []string, mechanism string) (*EvidenceLink, error) {
	h, ok := r.HerbByName(herb)
	if !ok {
		return nil, fmt.Errorf("link %s/%s: unknown herb", herb, condition)
	}
	c, ok := r.ConditionByName(condition)
	if !ok {
		return nil, fmt.Errorf("link %s/%s: unknown condition", herb, condition)
	}
	if tier < model.TierClinical || tier > model.TierTheoretical {
		return nil, fmt.Errorf("link %s/%s: tier %d out of range", herb, condition, tier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	link := &EvidenceLink{
		ID:          len(r.links) + 1,
		HerbID:      h.ID,
		ConditionID: c.ID,
		Tier:        tier,
		PubMedIDs:   pubmedIDs,
		Mechanism:   mechanism,
	}
	r.links = append(r.links, link)
	return link, nil
}

// HerbByName finds a curated herb by name, case-insensitively
func (r *Repository) HerbByName(name string) (*HerbRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.herbs {
		if strings.EqualFold(h.Name, name) {
			return h, true
		}
	}
	return nil, false
}

// HerbByID finds a curated herb by its assigned ID
func (r *Repository) HerbByID(id int) (*HerbRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 1 || id > len(r.herbs) {
		return nil, false
	}
	return r.herbs[id-1], true
}

// ConditionByName finds a curated condition by name, case-insensitively
func (r *Repository) ConditionByName(name string) (*ConditionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.conditions {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// ConditionByID finds a curated condition by its assigned ID
func (r *Repository) ConditionByID(id int) (*ConditionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 1 || id > len(r.conditions) {
		return nil, false
	}
	return r.conditions[id-1], true
}

// Herbs returns every curated herb in insertion order
func (r *Repository) Herbs() []*HerbRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*HerbRecord, len(r.herbs))
	copy(out, r.herbs)
	return out
}

// RemediesFor returns the evidence-linked remedies for a condition,
// strongest tier first. Herbs named in exclude are skipped, so callers
// can drop a user's allergens.
func (r *Repository) RemediesFor(condition string, exclude ...string) []Remedy {
	cond, ok := r.ConditionByName(condition)
	if !ok {
		return nil
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Remedy
	for _, link := range r.links {
		if link.ConditionID != cond.ID {
			continue
		}
		herb := r.herbs[link.HerbID-1]
		if _, excluded := skip[strings.ToLower(herb.Name)]; excluded {
			continue
		}
		out = append(out, Remedy{
			Herb:      herb,
			Tier:      link.Tier,
			TierLabel: link.Tier.LongLabel(),
			PubMedIDs: link.PubMedIDs,
			Mechanism: link.Mechanism,
			Score:     remedyScore(link.Tier, len(link.PubMedIDs)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}

// remedyScore ranks a remedy by its evidence tier with a small bonus for
// study count: (weight + min(0.05*n, 0.2)) * 10, one decimal.
func remedyScore(tier model.EvidenceTier, pubmedCount int) float64 {
	bonus := math.Min(float64(pubmedCount)*0.05, 0.2)
	return math.Round((tier.Weight()+bonus)*10*10) / 10
}

// HerbCount returns the number of curated herbs
func (r *Repository) HerbCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.herbs)
}

// ConditionCount returns the number of curated conditions
func (r *Repository) ConditionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conditions)
}

// LinkCount returns the number of evidence links
func (r *Repository) LinkCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}

// loadHerbs parses herbs.yaml, returning the supplemental registry names
// and the curated herb records.
func loadHerbs(fsys fs.FS, name string) ([]string, []*HerbRecord, error) {
	var doc struct {
		Registry []string     `yaml:"registry"`
		Herbs    []HerbRecord `yaml:"herbs"`
	}
	if err := readYAML(fsys, name, &doc); err != nil {
		return nil, nil, err
	}
	if len(doc.Registry) == 0 {
		return nil, nil, fmt.Errorf("%s: empty registry", name)
	}
	recs := make([]*HerbRecord, 0, len(doc.Herbs))
	for i := range doc.Herbs {
		h := &doc.Herbs[i]
		if strings.TrimSpace(h.Name) == "" {
			return nil, nil, fmt.Errorf("%s: herb %d: missing name", name, i)
		}
		recs = append(recs, h)
	}
	return doc.Registry, recs, nil
}

// loadRepository parses conditions.yaml and seeds a repository with the
// curated herbs, conditions, and evidence links.
func loadRepository(fsys fs.FS, name string, herbs []*HerbRecord) (*Repository, error) {
	var doc struct {
		Conditions []ConditionRecord `yaml:"conditions"`
		Links      []struct {
			Herb      string             `yaml:"herb"`
			Condition string             `yaml:"condition"`
			Tier      model.EvidenceTier `yaml:"tier"`
			PubMedIDs []string           `yaml:"pubmed_ids"`
			Mechanism string             `yaml:"mechanism"`
		} `yaml:"links"`
	}
	if err := readYAML(fsys, name, &doc); err != nil {
		return nil, err
	}

	repo := NewRepository()
	for _, h := range herbs {
		repo.AddHerb(*h)
	}
	for i, c := range doc.Conditions {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("%s: condition %d: missing name", name, i)
		}
		repo.AddCondition(c)
	}
	for _, l := range doc.Links {
		if _, err := repo.Link(l.Herb, l.Condition, l.Tier, l.PubMedIDs, l.Mechanism); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return repo, nil
}
