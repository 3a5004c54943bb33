// Package broadcast provides a minimal latest-value publish/subscribe
// primitive used to propagate state changes between engine components.
//
// A Broadcaster combines two access styles:
//
//   - Synchronous: Get() returns the latest published value immediately.
//   - Asynchronous: Subscribe() returns a channel that replays the current
//     value and then receives every subsequent publish.
//
// Subscriber channels coalesce rather than buffer: a slow consumer skips
// intermediate values and always observes the most recent one. This matches
// the engine's needs (consumers render the latest state, they do not replay
// history) and keeps publishers non-blocking regardless of consumer speed.
package broadcast
