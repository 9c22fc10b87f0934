// Package app provides the application service layer.
//
// A Service owns the live viewer sessions. Each session pairs one vote aggregator with
// one paginator and scroll trigger per feed catalog, and is torn down as a unit, either
// explicitly, by the idle reaper, or on shutdown. HTTP handlers talk to the Service only.
package app
