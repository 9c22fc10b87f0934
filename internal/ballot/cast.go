package ballot

import (
	"fmt"
	"strings"

	"github.com/pscheid92/dappboard/internal/domain"
)

// Cast applies one ballot gesture to item.
//
// Casting the direction the viewer already holds withdraws the ballot. Casting the other
// direction releases the previous ballot before counting the new one, so the total moves by
// -1 on cancel, +1 on a first cast and 0 on a switch.
func Cast(item domain.VotableItem, direction domain.Direction) (domain.VotableItem, domain.VoteOutcome, error) {
	if direction != domain.DirectionUp && direction != domain.DirectionDown {
		return item, domain.VoteCast, fmt.Errorf("%w: %s", domain.ErrInvalidDirection, direction)
	}

	prev := item.MyVote
	if prev == direction {
		release(&item, direction)
		item.MyVote = domain.DirectionNone
		return item, domain.VoteCanceled, nil
	}

	outcome := domain.VoteCast
	if prev != domain.DirectionNone {
		release(&item, prev)
		outcome = domain.VoteSwitched
	}

	switch direction {
	case domain.DirectionUp:
		item.Upvotes++
	case domain.DirectionDown:
		item.Downvotes++
	}
	item.MyVote = direction

	return item, outcome, nil
}

// release takes the viewer's ballot out of a bucket. Buckets never go negative,
// even when seed data claims a ballot the tally does not contain.
func release(item *domain.VotableItem, direction domain.Direction) {
	switch direction {
	case domain.DirectionUp:
		if item.Upvotes > 0 {
			item.Upvotes--
		}
	case domain.DirectionDown:
		if item.Downvotes > 0 {
			item.Downvotes--
		}
	}
}

// Apply casts a ballot on the item with the given id and returns a new collection.
// The input slice is never modified. Unknown ids yield ErrItemNotFound and the
// original collection.
func Apply(items []domain.VotableItem, itemID string, direction domain.Direction) ([]domain.VotableItem, domain.VotableItem, domain.VoteOutcome, error) {
	for i, item := range items {
		if item.ID != itemID {
			continue
		}

		updated, outcome, err := Cast(item, direction)
		if err != nil {
			return items, item, outcome, err
		}

		next := make([]domain.VotableItem, len(items))
		copy(next, items)
		next[i] = updated
		return next, updated, outcome, nil
	}

	return items, domain.VotableItem{}, domain.VoteCast, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
}

// ParticipationCount is the number of items the viewer currently holds a ballot on.
func ParticipationCount(items []domain.VotableItem) int {
	n := 0
	for _, item := range items {
		if item.Voted() {
			n++
		}
	}
	return n
}

// TotalRewardEarned sums the reward of every item carrying a ballot, regardless of direction.
func TotalRewardEarned(items []domain.VotableItem) int {
	sum := 0
	for _, item := range items {
		if item.Voted() {
			sum += item.Reward
		}
	}
	return sum
}

// AllCategories matches every item in FilterByCategory.
const AllCategories = "All"

// FilterByCategory returns the items in the given category, preserving order.
// An empty category or AllCategories returns the collection unchanged.
func FilterByCategory(items []domain.VotableItem, category string) []domain.VotableItem {
	if category == "" || category == AllCategories {
		return items
	}

	filtered := make([]domain.VotableItem, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
