package catalog

import (
	"embed"
	"fmt"

	"github.com/pscheid92/dappboard/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed/*.yaml
var seedFiles embed.FS

// Seed holds the datasets every session starts from.
type Seed struct {
	DApps   []domain.FeedItem
	Courses []domain.FeedItem
	Votes   []domain.VotableItem
}

// LoadSeed parses the embedded datasets.
func LoadSeed() (*Seed, error) {
	var s Seed
	if err := readSeed("seed/dapps.yaml", &s.DApps); err != nil {
		return nil, err
	}
	if err := readSeed("seed/courses.yaml", &s.Courses); err != nil {
		return nil, err
	}
	if err := readSeed("seed/votes.yaml", &s.Votes); err != nil {
		return nil, err
	}
	return &s, nil
}

func readSeed(path string, out any) error {
	data, err := seedFiles.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// VoteItems returns a fresh copy of the votable items for a new session.
func (s *Seed) VoteItems() []domain.VotableItem {
	items := make([]domain.VotableItem, len(s.Votes))
	copy(items, s.Votes)
	return items
}

// Catalog returns the items of a named feed catalog.
func (s *Seed) Catalog(name domain.CatalogName) ([]domain.FeedItem, error) {
	switch name {
	case domain.CatalogDApps:
		return s.DApps, nil
	case domain.CatalogCourses:
		return s.Courses, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, name)
	}
}

// MemoryProvider serves the seed catalogs from memory.
func (s *Seed) MemoryProvider() *Provider {
	return NewProvider(map[domain.CatalogName]domain.CatalogSource{
		domain.CatalogDApps:   NewShared(domain.CatalogDApps, NewMemory(s.DApps)),
		domain.CatalogCourses: NewShared(domain.CatalogCourses, NewMemory(s.Courses)),
	})
}
