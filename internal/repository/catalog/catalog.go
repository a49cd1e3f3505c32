// Package catalog serves the section and technique catalog from a JSON
// document. The document is parsed on first use and cached until Reset.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/msomdec/praylude/internal/domain"
)

//go:embed techniques.json
var embedded []byte

type document struct {
	Sections   []domain.Section   `json:"sections"`
	Techniques []domain.Technique `json:"techniques"`
}

// Repository implements domain.CatalogRepository.
type Repository struct {
	load func() ([]byte, error)

	mu     sync.Mutex
	cached *document
}

// NewEmbedded serves the catalog compiled into the binary.
func NewEmbedded() *Repository {
	return &Repository{load: func() ([]byte, error) { return embedded, nil }}
}

// NewFile serves the catalog stored at path.
func NewFile(path string) *Repository {
	return &Repository{load: func() ([]byte, error) { return os.ReadFile(path) }}
}

// NewBytes serves a catalog held in memory.
func NewBytes(data []byte) *Repository {
	return &Repository{load: func() ([]byte, error) { return data, nil }}
}

// Reset drops the cached document; the next query reloads it.
func (r *Repository) Reset() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *Repository) data() (*document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached, nil
	}

	raw, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var doc struct {
		Sections   *[]domain.Section   `json:"sections"`
		Techniques *[]domain.Technique `json:"techniques"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.Sections == nil {
		return nil, errors.New("parse catalog: sections array not found")
	}
	if doc.Techniques == nil {
		return nil, errors.New("parse catalog: techniques array not found")
	}

	r.cached = &document{Sections: *doc.Sections, Techniques: *doc.Techniques}
	return r.cached, nil
}

// ListSections returns every section sorted by order.
func (r *Repository) ListSections(ctx context.Context) ([]domain.Section, error) {
	doc, err := r.data()
	if err != nil {
		return nil, err
	}
	sections := slices.Clone(doc.Sections)
	slices.SortStableFunc(sections, func(a, b domain.Section) int { return a.Order - b.Order })
	return sections, nil
}

func (r *Repository) GetSection(ctx context.Context, id string) (*domain.Section, error) {
	return r.findSection(func(s domain.Section) bool { return s.ID == id })
}

func (r *Repository) GetSectionByName(ctx context.Context, name domain.SectionName) (*domain.Section, error) {
	return r.findSection(func(s domain.Section) bool { return s.Name == name })
}

func (r *Repository) findSection(match func(domain.Section) bool) (*domain.Section, error) {
	doc, err := r.data()
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(doc.Sections, match)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	s := doc.Sections[i]
	return &s, nil
}

func (r *Repository) ListTechniques(ctx context.Context) ([]domain.Technique, error) {
	return r.filterTechniques(func(domain.Technique) bool { return true })
}

func (r *Repository) GetTechnique(ctx context.Context, id string) (*domain.Technique, error) {
	doc, err := r.data()
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(doc.Techniques, func(t domain.Technique) bool { return t.ID == id })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	t := doc.Techniques[i]
	return &t, nil
}

func (r *Repository) ListTechniquesBySection(ctx context.Context, sectionID string) ([]domain.Technique, error) {
	return r.filterTechniques(func(t domain.Technique) bool { return t.SectionID == sectionID })
}

func (r *Repository) ListTechniquesByDifficulty(ctx context.Context, difficulty domain.Difficulty) ([]domain.Technique, error) {
	return r.filterTechniques(func(t domain.Technique) bool { return t.Difficulty == difficulty })
}

func (r *Repository) filterTechniques(keep func(domain.Technique) bool) ([]domain.Technique, error) {
	doc, err := r.data()
	if err != nil {
		return nil, err
	}
	techniques := make([]domain.Technique, 0, len(doc.Techniques))
	for _, t := range doc.Techniques {
		if keep(t) {
			techniques = append(techniques, t)
		}
	}
	return techniques, nil
}
