// Package listing binds the coordination engine to the vehicle listing
// domain.
//
// The request query string is the sole external address for listing state:
// every filter, the pagination window, the sort order and the highlight
// overlay round-trip through it. Changing the address re-derives the typed
// filter state, resolves the page through the shared coordinator and
// republishes the result.
//
// # Components
//
//   - Filters / DeriveFilters: typed projection of the raw parameter set,
//     with coercion, clamping and the sort whitelist.
//   - BuildKey: deterministic cache key for a derived state.
//   - Adapter: gorm-backed fetch running the page, count and overlay
//     segment queries concurrently.
//   - Service: owns the store, history, coordinator, the active
//     orchestrator and a passive mirror fed through the snapshot broker.
//   - Handler: HTTP surface.
//
// # HTTP Endpoints
//
//   - GET  /listings            : apply the query string, return the settled page.
//   - POST /listings/refresh    : re-fetch the current state, bypassing the cache.
//   - POST /listings/invalidate : drop every cached listing response.
//   - POST /listings/back       : navigate the address history backwards.
//   - POST /listings/forward    : navigate the address history forwards.
//   - GET  /listings/snapshot   : return a shared snapshot by name, or the current state.
//   - POST /listings/share      : publish the current state as a snapshot object.
//   - POST /listings/sync       : apply a received snapshot to the mirror.
//   - GET  /listings/mirror     : return the passively synced state.
package listing
