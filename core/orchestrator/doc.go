// Package orchestrator ties the engine together: it reacts to parameter
// store emissions, derives a typed filter state and highlight overlay via
// injected pure functions, resolves the fetch through a coordinator and
// republishes results, loading and error information as observable state.
//
// Orchestrator instances are not shared. Each consumer context, including a
// secondary, passively synced one, owns its own instance and its own State.
// Passive instances never fetch; they are seeded through SyncFromSnapshot.
//
// The central correctness property is last-write-wins: when the parameter
// set changes again before the previous fetch settles, the earlier result is
// discarded by generation comparison, not by cancelling the fetch. Fetch
// failures become State.Error while the previously fetched items stay on
// display: stale-but-valid over blank.
package orchestrator
