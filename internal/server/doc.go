// Package server provides the HTTP server for the finboard dashboard and API.
//
// This package is internal to finboard and handles all HTTP concerns:
//
//   - Pages: home page with search at "/", company page at "/search"
//   - REST API: snapshots at "/api/metrics" and "/api/metrics/{symbol}"
//   - Fragments: rendered dashboard markup at "/api/dashboard/{symbol}"
//   - Server-Sent Events: snapshot updates at "/api/sse"
//
// Company pages are rendered from the embedded host templates and the
// dashboard is then mounted into their #financial-dashboard container.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
