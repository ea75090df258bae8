// Package session provides the HTTP client finboard uses to reach upstream
// financial data providers.
//
// A session stacks three behaviours on top of a pooled transport:
//
//   - a fixed User-Agent header on every request
//   - an optional SQLite response cache ([cache.Store]) consulted before
//     any network traffic
//   - rate limits applied only to requests that miss the cache
//
// Users of the finboard library should not need to interact with this
// package directly.
package session
