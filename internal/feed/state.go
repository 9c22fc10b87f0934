package feed

import "github.com/pscheid92/dappboard/internal/domain"

// Cursor is where the next page starts. It is never tracked separately from the loaded items.
func Cursor(s domain.FeedState) int {
	return len(s.LoadedItems)
}

// BeginLoad moves an idle feed into Loading. It reports false, leaving s untouched,
// when a load is already in flight or the catalog is exhausted.
func BeginLoad(s domain.FeedState) (domain.FeedState, bool) {
	if s.IsLoading || !s.HasMore {
		return s, false
	}
	s.IsLoading = true
	return s, true
}

// CompleteLoad appends a fetched page and returns the feed to Idle. HasMore drops to
// false when the page is empty, shorter than pageSize, or reaches the catalog end.
func CompleteLoad(s domain.FeedState, page domain.Page, pageSize int) domain.FeedState {
	s = s.Clone()

	seen := make(map[string]struct{}, len(s.LoadedItems))
	for _, item := range s.LoadedItems {
		seen[item.ID] = struct{}{}
	}
	for _, item := range page.Items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		s.LoadedItems = append(s.LoadedItems, item)
	}

	if len(page.Items) == 0 || len(page.Items) < pageSize || !page.More {
		s.HasMore = false
	}
	s.IsLoading = false
	return s
}

// FailLoad returns the feed to Idle without touching the loaded items or HasMore,
// so the caller can retry.
func FailLoad(s domain.FeedState) domain.FeedState {
	s.IsLoading = false
	return s
}
