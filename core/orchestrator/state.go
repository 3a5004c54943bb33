package orchestrator

// Overlay is the highlight overlay: a secondary mapping, disjoint from the
// filter namespace, that requests statistics segmented into "matches
// overlay" vs "all". It participates in cache-key computation because it
// changes the response shape.
type Overlay map[string]string

// Segment is one statistics bucket: how many of the fetched set match the
// overlay constraint, out of how many in total.
type Segment struct {
	Matching int64 `json:"matching"`
	Total    int64 `json:"total"`
}

// Statistics maps overlay keys to their segments.
type Statistics map[string]Segment

// Result is the payload a fetch adapter resolves to.
type Result[T any] struct {
	Items      []T        `json:"items"`
	TotalCount int64      `json:"total_count"`
	Statistics Statistics `json:"statistics,omitempty"`
}

// State is the published resource state. One instance per orchestrator;
// consumers receive it through the result stream and must treat it as
// read-only.
type State[F, T any] struct {
	Items      []T        `json:"items"`
	TotalCount int64      `json:"total_count"`
	Statistics Statistics `json:"statistics,omitempty"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	Filters    F          `json:"filters"`
	Generation uint64     `json:"generation"`
}
