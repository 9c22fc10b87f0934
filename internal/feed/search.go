package feed

import (
	"strings"

	"github.com/pscheid92/dappboard/internal/domain"
)

// AllCategories matches every item in FilterByCategory.
const AllCategories = "All"

// Search combines a text query with a category filter.
type Search struct {
	Query    string
	Category string
}

// Apply runs both filters over items. Neither filter ever adds items.
func (s Search) Apply(items []domain.FeedItem) []domain.FeedItem {
	return FilterByCategory(FilterByQuery(items, s.Query), s.Category)
}

// FilterByQuery returns the items whose name or description contains query,
// ignoring case, in their original order. An empty query returns items unchanged.
func FilterByQuery(items []domain.FeedItem, query string) []domain.FeedItem {
	if query == "" {
		return items
	}

	needle := strings.ToLower(query)
	matched := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			matched = append(matched, item)
		}
	}
	return matched
}

// FilterByCategory keeps items of the given category. "" and AllCategories keep everything.
func FilterByCategory(items []domain.FeedItem, category string) []domain.FeedItem {
	if category == "" || category == AllCategories {
		return items
	}

	matched := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Featured returns the featured listings among items. Feed views pass the loaded
// prefix, so listings past the cursor show up once their page has loaded.
func Featured(items []domain.FeedItem) []domain.FeedItem {
	matched := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if item.Featured {
			matched = append(matched, item)
		}
	}
	return matched
}
