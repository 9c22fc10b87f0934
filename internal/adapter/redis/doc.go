// Package redis serves feed catalogs from Redis. Each catalog is a Redis list of JSON
// encoded items, read window by window with LRANGE; LLEN gives the definite end.
// All commands pass through a circuit breaker hook so a failing Redis degrades into
// fast fetch failures instead of piling up timeouts.
package redis
