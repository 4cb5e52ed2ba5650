// Package knowledge loads and indexes the herb-remedy knowledge base:
// graded evidence pairs, drug interaction profiles, contraindication rules,
// the herb registry, and curated herb/condition records.
//
// The tables ship embedded in the binary. A directory override lets
// deployments patch tables without rebuilding.
package knowledge

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/servvia/trust/internal/model"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	evidenceFile          = "evidence.yaml"
	interactionsFile      = "interactions.yaml"
	contraindicationsFile = "contraindications.yaml"
	herbsFile             = "herbs.yaml"
	conditionsFile        = "conditions.yaml"
)

// pairKey identifies one herb/condition evidence entry
type pairKey struct {
	herb      string
	condition string
}

// Base is the loaded, indexed knowledge base. It is immutable after Load
// and safe for concurrent readers.
type Base struct {
	evidence          map[pairKey]*EvidenceEntry
	byCondition       map[string][]*EvidenceEntry
	interactions      map[string]*InteractionProfile
	contraindications map[string]*ContraProfile

	registry  map[string]struct{}
	herbNames []string // sorted registry view

	repo *Repository
}

// Load builds the knowledge base from the embedded tables
func Load() (*Base, error) {
	return loadFS(embedded, "data")
}

// LoadDir builds the knowledge base from YAML tables in dir instead of the
// embedded defaults. All five table files must be present.
func LoadDir(dir string) (*Base, error) {
	if fi, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("knowledge dir: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("knowledge dir: %s is not a directory", dir)
	}
	return loadFS(os.DirFS(dir), ".")
}

func loadFS(fsys fs.FS, root string) (*Base, error) {
	b := &Base{
		evidence:          make(map[pairKey]*EvidenceEntry),
		byCondition:       make(map[string][]*EvidenceEntry),
		interactions:      make(map[string]*InteractionProfile),
		contraindications: make(map[string]*ContraProfile),
	}

	if err := b.loadEvidence(fsys, path.Join(root, evidenceFile)); err != nil {
		return nil, err
	}
	if err := b.loadInteractions(fsys, path.Join(root, interactionsFile)); err != nil {
		return nil, err
	}
	if err := b.loadContraindications(fsys, path.Join(root, contraindicationsFile)); err != nil {
		return nil, err
	}

	extra, herbs, err := loadHerbs(fsys, path.Join(root, herbsFile))
	if err != nil {
		return nil, err
	}
	b.buildRegistry(extra)

	repo, err := loadRepository(fsys, path.Join(root, conditionsFile), herbs)
	if err != nil {
		return nil, err
	}
	b.repo = repo

	return b, nil
}

func (b *Base) loadEvidence(fsys fs.FS, name string) error {
	var doc struct {
		Evidence []*EvidenceEntry `yaml:"evidence"`
	}
	if err := readYAML(fsys, name, &doc); err != nil {
		return err
	}
	if len(doc.Evidence) == 0 {
		return fmt.Errorf("%s: no evidence entries", name)
	}
	for i, e := range doc.Evidence {
		e.Herb = strings.ToLower(strings.TrimSpace(e.Herb))
		e.Condition = strings.ToLower(strings.TrimSpace(e.Condition))
		if err := e.validate(); err != nil {
			return fmt.Errorf("%s: entry %d: %w", name, i, err)
		}
		k := pairKey{e.Herb, e.Condition}
		if _, dup := b.evidence[k]; dup {
			return fmt.Errorf("%s: duplicate pair %s/%s", name, e.Herb, e.Condition)
		}
		b.evidence[k] = e
		b.byCondition[e.Condition] = append(b.byCondition[e.Condition], e)
	}
	// strongest evidence first; file order breaks ties
	for _, entries := range b.byCondition {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Tier < entries[j].Tier
		})
	}
	return nil
}

func (b *Base) loadInteractions(fsys fs.FS, name string) error {
	var doc struct {
		Interactions []*InteractionProfile `yaml:"interactions"`
	}
	if err := readYAML(fsys, name, &doc); err != nil {
		return err
	}
	for i, p := range doc.Interactions {
		p.Herb = strings.ToLower(strings.TrimSpace(p.Herb))
		if err := p.validate(); err != nil {
			return fmt.Errorf("%s: profile %d: %w", name, i, err)
		}
		if _, dup := b.interactions[p.Herb]; dup {
			return fmt.Errorf("%s: duplicate profile for %s", name, p.Herb)
		}
		b.interactions[p.Herb] = p
	}
	return nil
}

func (b *Base) loadContraindications(fsys fs.FS, name string) error {
	var doc struct {
		Contraindications []*ContraProfile `yaml:"contraindications"`
	}
	if err := readYAML(fsys, name, &doc); err != nil {
		return err
	}
	for i, c := range doc.Contraindications {
		c.Herb = strings.ToLower(strings.TrimSpace(c.Herb))
		if c.Herb == "" {
			return fmt.Errorf("%s: profile %d: missing herb", name, i)
		}
		if _, dup := b.contraindications[c.Herb]; dup {
			return fmt.Errorf("%s: duplicate profile for %s", name, c.Herb)
		}
		b.contraindications[c.Herb] = c
	}
	return nil
}

// Evidence returns the graded entry for an exact herb/condition pair.
// Both arguments are case-insensitive.
func (b *Base) Evidence(herb, condition string) (*EvidenceEntry, bool) {
	k := pairKey{
		herb:      strings.ToLower(strings.TrimSpace(herb)),
		condition: strings.ToLower(strings.TrimSpace(condition)),
	}
	e, ok := b.evidence[k]
	return e, ok
}

// EvidenceForCondition returns every entry for the condition, strongest
// tier first
func (b *Base) EvidenceForCondition(condition string) []*EvidenceEntry {
	entries := b.byCondition[strings.ToLower(strings.TrimSpace(condition))]
	out := make([]*EvidenceEntry, len(entries))
	copy(out, entries)
	return out
}

// Conditions returns every condition with at least one evidence entry, sorted
func (b *Base) Conditions() []string {
	out := make([]string, 0, len(b.byCondition))
	for c := range b.byCondition {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Interaction returns the drug interaction profile for a herb
func (b *Base) Interaction(herb string) (*InteractionProfile, bool) {
	p, ok := b.interactions[strings.ToLower(strings.TrimSpace(herb))]
	return p, ok
}

// Contraindication returns the contraindication profile for a herb
func (b *Base) Contraindication(herb string) (*ContraProfile, bool) {
	c, ok := b.contraindications[strings.ToLower(strings.TrimSpace(herb))]
	return c, ok
}

// Repo returns the curated herb/condition repository
func (b *Base) Repo() *Repository {
	return b.repo
}

// Stats summarizes table sizes for diagnostics
type Stats struct {
	KnownHerbs        int `json:"known_herbs"`
	EvidencePairs     int `json:"evidence_pairs"`
	Conditions        int `json:"conditions"`
	InteractionHerbs  int `json:"interaction_herbs"`
	ContraHerbs       int `json:"contraindication_herbs"`
	CuratedHerbs      int `json:"curated_herbs"`
	CuratedConditions int `json:"curated_conditions"`
	EvidenceLinks     int `json:"evidence_links"`
}

// Stats reports the size of each loaded table
func (b *Base) Stats() Stats {
	return Stats{
		KnownHerbs:        len(b.registry),
		EvidencePairs:     len(b.evidence),
		Conditions:        len(b.byCondition),
		InteractionHerbs:  len(b.interactions),
		ContraHerbs:       len(b.contraindications),
		CuratedHerbs:      b.repo.HerbCount(),
		CuratedConditions: b.repo.ConditionCount(),
		EvidenceLinks:     b.repo.LinkCount(),
	}
}

func readYAML(fsys fs.FS, name string, out interface{}) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// EvidenceEntry is one graded herb/condition pairing from the evidence table
type EvidenceEntry struct {
	Herb      string             `yaml:"herb" json:"herb"`
	Condition string             `yaml:"condition" json:"condition"`
	Tier      model.EvidenceTier `yaml:"tier" json:"tier"`
	Mechanism string             `yaml:"mechanism" json:"mechanism"`
	PubMedIDs []string           `yaml:"pubmed_ids" json:"pubmed_ids,omitempty"`
	Dose      string             `yaml:"dose" json:"dose,omitempty"`
	Onset     string             `yaml:"onset,omitempty" json:"onset,omitempty"`
	Cautions  []string           `yaml:"cautions,omitempty" json:"cautions,omitempty"`
}

func (e *EvidenceEntry) validate() error {
	if e.Herb == "" {
		return fmt.Errorf("missing herb")
	}
	if e.Condition == "" {
		return fmt.Errorf("%s: missing condition", e.Herb)
	}
	if e.Tier < model.TierClinical || e.Tier > model.TierTheoretical {
		return fmt.Errorf("%s/%s: tier %d out of range", e.Herb, e.Condition, e.Tier)
	}
	return nil
}
