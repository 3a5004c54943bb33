// Package snapshot implements the passive-sync channel: transports that
// carry a serialized state snapshot from an active consumer to secondary,
// passively synced ones.
//
// Two legs exist:
//
//   - Store persists JSON snapshots in object storage, for sharing across
//     processes and for durable, linkable state exports.
//   - Broker fans snapshots out in-process, for mirrors living in the same
//     application.
//
// The orchestrator knows nothing about either; its only dependency on this
// machinery is SyncFromSnapshot.
package snapshot
