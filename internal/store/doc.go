// Package store provides storage and pub/sub for symbol snapshots.
//
// This package is internal to finboard and keeps the latest metrics
// snapshot for every watched symbol in memory. It implements a
// publish-subscribe pattern so connected dashboards re-render when a
// snapshot changes.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Snapshot]: Storage representation of one symbol's latest metrics
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the system).
package store
