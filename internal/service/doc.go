// Package service holds the application operations behind the HTTP
// handlers. Services coordinate stores, the read-through cache and the
// background job queue; they never deal with HTTP.
package service
