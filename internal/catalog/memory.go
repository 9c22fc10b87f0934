package catalog

import (
	"context"
	"fmt"

	"github.com/pscheid92/dappboard/internal/domain"
)

// Memory serves a fixed, ordered slice of items.
type Memory struct {
	items []domain.FeedItem
}

func NewMemory(items []domain.FeedItem) *Memory {
	owned := make([]domain.FeedItem, len(items))
	copy(owned, items)
	return &Memory{items: owned}
}

func (m *Memory) Fetch(ctx context.Context, cursor, limit int) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("memory fetch: %w", err)
	}
	if cursor < 0 || limit < 0 {
		return domain.Page{}, fmt.Errorf("invalid page window cursor=%d limit=%d", cursor, limit)
	}
	if cursor >= len(m.items) {
		return domain.Page{}, nil
	}

	end := min(cursor+limit, len(m.items))
	page := make([]domain.FeedItem, end-cursor)
	copy(page, m.items[cursor:end])

	return domain.Page{Items: page, More: end < len(m.items)}, nil
}

func (m *Memory) Len() int {
	return len(m.items)
}

// Provider maps catalog names to sources.
type Provider struct {
	sources map[domain.CatalogName]domain.CatalogSource
}

func NewProvider(sources map[domain.CatalogName]domain.CatalogSource) *Provider {
	owned := make(map[domain.CatalogName]domain.CatalogSource, len(sources))
	for name, src := range sources {
		owned[name] = src
	}
	return &Provider{sources: owned}
}

func (p *Provider) Source(name domain.CatalogName) (domain.CatalogSource, error) {
	src, ok := p.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, name)
	}
	return src, nil
}

// Names lists the catalogs this provider serves.
func (p *Provider) Names() []domain.CatalogName {
	names := make([]domain.CatalogName, 0, len(p.sources))
	for _, name := range domain.Catalogs() {
		if _, ok := p.sources[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
