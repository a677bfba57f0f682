// Package events carries per-request notifications from the request pipeline
// to observers (metrics, logs) without coupling the two.
//
// The primary components are:
//   - RequestEvent: what happened to one HTTP request
//   - EventHandler: receives events
//   - InMemoryEventEmitter: synchronous fan-out to registered handlers
//   - AsyncEmitter: fire-and-forget wrapper that never blocks the request
package events
