// Package poller provides periodic concurrent refresh of watched symbols
// for finboard.
//
// This package is internal to finboard. It implements a worker pool that
// fetches metrics for each watched symbol at its configured interval, with
// a configurable concurrency limit.
//
// The main components are:
//
//   - [Scheduler]: Manages periodic refresh of targets with a worker pool
//   - [Target]: A symbol to refresh and how often
//   - [Result]: Outcome of refreshing a single symbol
//   - [Fetcher]: Computes metrics for a symbol
//
// Users of the finboard library should not need to interact with this
// package directly. Configuration is done through the main finboard package.
package poller
