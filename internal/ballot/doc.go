// Package ballot implements the vote aggregation engine.
//
// Cast and Apply are pure transitions over VotableItem values; Aggregator owns one viewer's
// item collection and serialises casts against it. Rewards are never stored: they are
// derived from the current ballots on every read.
package ballot
