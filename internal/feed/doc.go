// Package feed implements the incremental feed loader.
//
// BeginLoad, CompleteLoad and FailLoad are the pure transitions of the feed state machine:
// Idle(hasMore) -> Loading -> Idle(recomputed). Paginator drives them around an
// asynchronous fetch from a CatalogSource and enforces that at most one fetch is in flight.
// Search helpers only ever look at what has already been loaded.
package feed
