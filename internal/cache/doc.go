// Package cache provides the SQLite-backed HTTP response cache used by the
// finboard session.
//
// Entries are keyed by request method and URL and expire after a fixed
// time-to-live. Expired entries are never returned and are removed lazily
// on lookup.
//
// Users of the finboard library should not need to interact with this
// package directly. Cache location and expiry are configured through the
// main finboard package.
package cache
