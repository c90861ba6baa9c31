// Package store provides storage and pub/sub for dashboard view snapshots.
//
// This package is internal to serverboard and holds the latest rendering of
// the view-model: its data state, the servers on screen, any error, and the
// ping/save indicators. It implements a publish-subscribe pattern so
// connected dashboard clients see every transition as it happens.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [View]: Storage representation of one view-model snapshot
//
// The store is designed for concurrent access with proper synchronization.
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the system). Every view
// is a full snapshot, so a missed update never leaves a client inconsistent.
//
// Users of the serverboard library should not need to interact with this
// package directly. Storage is managed internally by [serverboard.Dashboard].
package store
