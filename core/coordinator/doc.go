// Package coordinator turns arbitrary keyed fetch functions into
// deduplicated, cached, retried requests.
//
// # Layers
//
// Execute resolves a key through three layers, strictly in order:
//
//  1. TTL cache: a fresh entry is returned without invoking the fetch; an
//     expired entry is evicted and resolution continues.
//  2. In-flight deduplication: callers for a key that is already being
//     fetched join the outstanding request and observe the same outcome,
//     success or failure.
//  3. Retrying execution: the fetch runs with exponential backoff
//     (base * 2^(attempt-1)) up to the configured retry count. Success
//     populates the cache; failure never does.
//
// Failures are treated uniformly: an adapter whose errors must not be
// retried encodes that by resolving them before the coordinator (or by
// setting NoRetries), not through a separate error taxonomy.
//
// # Loading side-channel
//
// Loading, AnyLoading and LoadingChanges are derived purely from pending
// membership, for consumers that need aggregate indicators without
// participating in a fetch.
//
// # Invalidation
//
// Invalidate and InvalidatePattern only touch the cache. An in-flight
// request invalidated mid-flight is allowed to complete and repopulate the
// cache; that race is accepted, since whichever fetch finishes serves
// subsequent identical requests.
package coordinator
