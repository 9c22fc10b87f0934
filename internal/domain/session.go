package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionInfo is the outward view of a viewer session.
type SessionInfo struct {
	ID              uuid.UUID `json:"sessionId"`
	StartedAt       time.Time `json:"startedAt"`
	WalletConnected bool      `json:"walletConnected"`
}

// RewardSummary aggregates the community points a viewer has earned this session.
// Vote rewards are recomputed from the current ballots on every read, so a canceled
// ballot no longer contributes.
type RewardSummary struct {
	VoteRewards      int `json:"voteRewards"`
	VotesCast        int `json:"votesCast"`
	LearnRewards     int `json:"learnRewards"`
	CompletedCourses int `json:"completedCourses"`
	Total            int `json:"total"`
}

// VoteSeedSource supplies the votable items a new session starts with.
type VoteSeedSource interface {
	VoteItems() []VotableItem
}
