package domain

import (
	"encoding/json"
	"fmt"
)

// Direction is the viewer's ballot on an item. DirectionNone means no ballot.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// ParseDirection converts "up"/"down" into a Direction. Anything else is rejected;
// a ballot can only be cast in one of the two directions.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	default:
		return DirectionNone, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// MarshalJSON renders DirectionNone as null, matching how clients model "no ballot".
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == DirectionNone {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DirectionNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("direction must be a string: %w", err)
	}
	return d.UnmarshalText([]byte(s))
}

func (d *Direction) UnmarshalText(b []byte) error {
	if len(b) == 0 || string(b) == "none" {
		*d = DirectionNone
		return nil
	}
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ItemKind distinguishes dApp listings from governance proposals.
type ItemKind string

const (
	ItemKindDApp     ItemKind = "dapp"
	ItemKindProposal ItemKind = "proposal"
)

// VotableItem is an entity the viewer can cast a ballot on.
type VotableItem struct {
	ID          string    `json:"id" yaml:"id"`
	Kind        ItemKind  `json:"type" yaml:"type"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Image       string    `json:"image,omitempty" yaml:"image"`
	Upvotes     int       `json:"upvotes" yaml:"upvotes"`
	Downvotes   int       `json:"downvotes" yaml:"downvotes"`
	Reward      int       `json:"reward" yaml:"reward"`
	MyVote      Direction `json:"myVote" yaml:"myVote"`
	Category    string    `json:"category" yaml:"category"`
	TimeLeft    string    `json:"timeLeft" yaml:"timeLeft"`
}

// TotalVotes is always derived, never stored.
func (v VotableItem) TotalVotes() int {
	return v.Upvotes + v.Downvotes
}

// Voted reports whether the viewer currently holds a ballot on the item.
func (v VotableItem) Voted() bool {
	return v.MyVote != DirectionNone
}

// VoteOutcome describes which transition a cast produced.
type VoteOutcome int

const (
	VoteCast     VoteOutcome = iota // first ballot on the item
	VoteCanceled                    // same direction again, ballot withdrawn
	VoteSwitched                    // ballot moved to the other bucket
)

func (o VoteOutcome) String() string {
	switch o {
	case VoteCast:
		return "cast"
	case VoteCanceled:
		return "canceled"
	case VoteSwitched:
		return "switched"
	default:
		return "unknown"
	}
}
