// Package store provides storage and pub/sub functionality for tasks.
//
// This package is internal to HostPulse and keeps the task board in memory.
// Status changes are published to subscribers so that connected dashboard
// clients and SDK callbacks see every accepted change.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Task]: Storage representation of a task
//   - [Change]: A single accepted status transition
//
// The store is designed for concurrent access with proper synchronization.
// Subscribers receive changes via channels with non-blocking sends (slow
// subscribers will miss changes rather than block the system).
//
// Nothing is persisted; the board is rebuilt from configuration at startup.
package store
