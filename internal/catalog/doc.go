// Package catalog provides backing sources for the feed paginator: an in-memory
// source over the embedded seed datasets, and a singleflight wrapper that collapses
// identical concurrent fetches coming from many viewer sessions.
package catalog
