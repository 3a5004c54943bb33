// Package params implements the addressable parameter state: a canonical
// key/value set whose only persisted representation is a single external
// address string (a percent-encoded query string).
//
// # Components
//
//   - ParameterSet: the mapping itself, with lossless string serialization.
//     Numbers, booleans and comma-joined arrays survive a round trip through
//     Serialize/Deserialize with their semantic values intact, though the
//     textual form may be canonicalized.
//   - Store: synchronous snapshot access, a replaying change stream that
//     deduplicates structurally equal sets, and merge/clear updates committed
//     through a Committer.
//   - Committer: the address-commit boundary. Rejection is a boolean, never
//     an error, and leaves the store unchanged. MemoryCommitter provides an
//     in-process history stack with push/replace semantics and Back/Forward
//     navigation.
//
// # Update semantics
//
// Update merges a partial set into the current one; keys mapped to nil are
// deleted. ModeReplace overwrites the current history entry, ModePush appends
// a new one. SetAddress is the inverse direction: an address that changed
// externally replaces the set wholesale and re-emits if distinct.
package params
