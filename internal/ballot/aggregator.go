package ballot

import (
	"fmt"
	"sync"

	"github.com/pscheid92/dappboard/internal/domain"
)

// Aggregator owns one viewer's votable items. Every cast is applied atomically
// under the lock; readers only ever see copies.
type Aggregator struct {
	mu    sync.Mutex
	items []domain.VotableItem
	index map[string]int
}

// NewAggregator seeds an aggregator. Item ids must be unique and tallies non-negative.
func NewAggregator(seed []domain.VotableItem) (*Aggregator, error) {
	items := make([]domain.VotableItem, len(seed))
	index := make(map[string]int, len(seed))

	for i, item := range seed {
		if item.ID == "" {
			return nil, fmt.Errorf("votable item at position %d has no id", i)
		}
		if _, dup := index[item.ID]; dup {
			return nil, fmt.Errorf("duplicate votable item id %q", item.ID)
		}
		if item.Upvotes < 0 || item.Downvotes < 0 || item.Reward < 0 {
			return nil, fmt.Errorf("votable item %q has negative counts", item.ID)
		}
		items[i] = item
		index[item.ID] = i
	}

	return &Aggregator{items: items, index: index}, nil
}

// CastVote applies a ballot gesture and returns the updated item.
func (a *Aggregator) CastVote(itemID string, direction domain.Direction) (domain.VotableItem, domain.VoteOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.index[itemID]
	if !ok {
		return domain.VotableItem{}, domain.VoteCast, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}

	updated, outcome, err := Cast(a.items[i], direction)
	if err != nil {
		return a.items[i], outcome, err
	}
	a.items[i] = updated
	return updated, outcome, nil
}

// Item returns a copy of a single item.
func (a *Aggregator) Item(itemID string) (domain.VotableItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.index[itemID]
	if !ok {
		return domain.VotableItem{}, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	return a.items[i], nil
}

// Items returns a snapshot of the whole collection in seed order.
func (a *Aggregator) Items() []domain.VotableItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.VotableItem, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Aggregator) ParticipationCount() int {
	return ParticipationCount(a.Items())
}

func (a *Aggregator) TotalRewardEarned() int {
	return TotalRewardEarned(a.Items())
}
