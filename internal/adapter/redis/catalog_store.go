package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/dappboard/internal/catalog"
	"github.com/pscheid92/dappboard/internal/domain"
)

// CatalogStore keeps each feed catalog as a Redis list of JSON items.
type CatalogStore struct {
	rdb *goredis.Client
}

func NewCatalogStore(rdb *goredis.Client) *CatalogStore {
	return &CatalogStore{rdb: rdb}
}

func catalogKey(name domain.CatalogName) string {
	return "catalog:" + string(name)
}

// Replace atomically swaps the contents of a catalog.
func (s *CatalogStore) Replace(ctx context.Context, name domain.CatalogName, items []domain.FeedItem) error {
	values := make([]any, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode item %s: %w", item.ID, err)
		}
		values = append(values, data)
	}

	key := catalogKey(name)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(values) > 0 {
		pipe.RPush(ctx, key, values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace catalog %s pipeline failed: %w", name, err)
	}
	return nil
}

// Len reports how many items a catalog holds. A missing catalog is empty.
func (s *CatalogStore) Len(ctx context.Context, name domain.CatalogName) (int, error) {
	n, err := s.rdb.LLen(ctx, catalogKey(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog %s length: %w", name, err)
	}
	return int(n), nil
}

// Fetch reads the window [cursor, cursor+limit) of a catalog together with its length,
// in one round trip.
func (s *CatalogStore) Fetch(ctx context.Context, name domain.CatalogName, cursor, limit int) (domain.Page, error) {
	if cursor < 0 || limit < 0 {
		return domain.Page{}, fmt.Errorf("invalid window cursor=%d limit=%d", cursor, limit)
	}

	key := catalogKey(name)
	if limit == 0 {
		total, err := s.Len(ctx, name)
		if err != nil {
			return domain.Page{}, err
		}
		return domain.Page{More: cursor < total}, nil
	}

	pipe := s.rdb.Pipeline()
	rangeCmd := pipe.LRange(ctx, key, int64(cursor), int64(cursor+limit-1))
	lenCmd := pipe.LLen(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return domain.Page{}, fmt.Errorf("fetch catalog %s pipeline failed: %w", name, err)
	}

	raw, err := rangeCmd.Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return domain.Page{}, fmt.Errorf("lrange result failed: %w", err)
	}
	total, err := lenCmd.Result()
	if err != nil {
		return domain.Page{}, fmt.Errorf("llen result failed: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(raw))
	for _, r := range raw {
		var item domain.FeedItem
		if err := json.Unmarshal([]byte(r), &item); err != nil {
			return domain.Page{}, fmt.Errorf("failed to decode catalog %s item: %w", name, err)
		}
		items = append(items, item)
	}

	return domain.Page{Items: items, More: int64(cursor+len(items)) < total}, nil
}

// Source binds the store to one catalog.
func (s *CatalogStore) Source(name domain.CatalogName) (domain.CatalogSource, error) {
	if _, err := domain.ParseCatalogName(string(name)); err != nil {
		return nil, fmt.Errorf("%w: %s", err, name)
	}
	return domain.CatalogSourceFunc(func(ctx context.Context, cursor, limit int) (domain.Page, error) {
		return s.Fetch(ctx, name, cursor, limit)
	}), nil
}

// Provider exposes every known catalog, with concurrent identical fetches collapsed.
func (s *CatalogStore) Provider() *catalog.Provider {
	sources := make(map[domain.CatalogName]domain.CatalogSource)
	for _, name := range domain.Catalogs() {
		src, _ := s.Source(name)
		sources[name] = catalog.NewShared(name, src)
	}
	return catalog.NewProvider(sources)
}
