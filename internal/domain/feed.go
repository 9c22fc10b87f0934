package domain

import "context"

// CatalogName identifies a backing catalog instance.
type CatalogName string

const (
	CatalogDApps   CatalogName = "dapps"
	CatalogCourses CatalogName = "courses"
)

// Catalogs lists every catalog a session browses, in display order.
func Catalogs() []CatalogName {
	return []CatalogName{CatalogDApps, CatalogCourses}
}

// ParseCatalogName rejects names that do not belong to a known catalog.
func ParseCatalogName(s string) (CatalogName, error) {
	switch CatalogName(s) {
	case CatalogDApps, CatalogCourses:
		return CatalogName(s), nil
	default:
		return "", ErrCatalogNotFound
	}
}

// FeedItem is a discoverable listing. Only ID, Name and Description carry meaning
// for the paginator; the rest is display metadata.
type FeedItem struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`

	Rating   float64 `json:"rating,omitempty" yaml:"rating"`
	Votes    int     `json:"votes,omitempty" yaml:"votes"`
	Users    string  `json:"users,omitempty" yaml:"users"`
	Image    string  `json:"image,omitempty" yaml:"image"`
	Featured bool    `json:"featured,omitempty" yaml:"featured"`
	TVL      string  `json:"tvl,omitempty" yaml:"tvl"`

	// Course metadata.
	Level     string `json:"level,omitempty" yaml:"level"`
	Enrolled  int    `json:"enrolled,omitempty" yaml:"enrolled"`
	Duration  string `json:"duration,omitempty" yaml:"duration"`
	Reward    int    `json:"reward,omitempty" yaml:"reward"`
	Progress  int    `json:"progress,omitempty" yaml:"progress"`
	Completed bool   `json:"completed,omitempty" yaml:"completed"`
}

// FeedState is the paginator's state. LoadedItems is always an in-order prefix of
// the backing catalog.
type FeedState struct {
	LoadedItems []FeedItem `json:"items"`
	HasMore     bool       `json:"hasMore"`
	IsLoading   bool       `json:"isLoading"`
}

// Clone returns a copy that shares no backing array with s.
func (s FeedState) Clone() FeedState {
	items := make([]FeedItem, len(s.LoadedItems))
	copy(items, s.LoadedItems)
	s.LoadedItems = items
	return s
}

// Page is one slice of a catalog. More is false once the page reaches the catalog end.
type Page struct {
	Items []FeedItem
	More  bool
}

// CatalogSource is an ordered, finite catalog that serves the next limit items after cursor.
type CatalogSource interface {
	Fetch(ctx context.Context, cursor, limit int) (Page, error)
}

// CatalogSourceFunc adapts a function to CatalogSource.
type CatalogSourceFunc func(ctx context.Context, cursor, limit int) (Page, error)

func (f CatalogSourceFunc) Fetch(ctx context.Context, cursor, limit int) (Page, error) {
	return f(ctx, cursor, limit)
}

// CatalogProvider resolves catalog sources by name.
type CatalogProvider interface {
	Source(name CatalogName) (CatalogSource, error)
}
