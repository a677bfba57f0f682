// Package health reports whether the service and its collaborators are
// usable.
//
// A shallow report is constant and does no I/O; it answers liveness
// checks. A deep report runs every configured probe concurrently, each
// under its own timeout, and is cached for a short time so that frequent
// polling does not turn into load on the database or Redis.
package health
