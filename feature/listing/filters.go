package listing

import (
	"strings"

	"github.com/spf13/cast"

	"query-sync/core/orchestrator"
	"query-sync/core/params"
)

// OverlayPrefix marks parameter keys that belong to the highlight overlay
// rather than the filter state. The two namespaces are disjoint: "hl_"
// keys never influence which rows are fetched, only how statistics are
// segmented.
const OverlayPrefix = "hl_"

// Default and bound values for pagination.
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// Filters is the typed filter state derived from the raw parameter set.
type Filters struct {
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
	Sort         string   `json:"sort"`
	Order        string   `json:"order"`
	Manufacturer []string `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	BodyStyle    string   `json:"body_style,omitempty"`
	YearFrom     int      `json:"year_from,omitempty"`
	YearTo       int      `json:"year_to,omitempty"`
	PriceMax     float64  `json:"price_max,omitempty"`
	Search       string   `json:"search,omitempty"`
}

// sortColumns whitelists the columns a caller may sort by. Anything else
// falls back to id.
var sortColumns = map[string]struct{}{
	"id":           {},
	"manufacturer": {},
	"model":        {},
	"year":         {},
	"price":        {},
	"mileage":      {},
}

// DeriveFilters projects a parameter set into the typed filter state and
// highlight overlay. It is pure and total: malformed values are coerced or
// dropped, out-of-range values clamped, never an error.
func DeriveFilters(set params.ParameterSet) (Filters, orchestrator.Overlay) {
	f := Filters{
		Page:         cast.ToInt(set["page"]),
		PageSize:     cast.ToInt(set["page_size"]),
		Sort:         cast.ToString(set["sort"]),
		Order:        strings.ToLower(cast.ToString(set["order"])),
		Manufacturer: stringList(set["manufacturer"]),
		Model:        cast.ToString(set["model"]),
		BodyStyle:    cast.ToString(set["body_style"]),
		YearFrom:     cast.ToInt(set["year_from"]),
		YearTo:       cast.ToInt(set["year_to"]),
		PriceMax:     cast.ToFloat64(set["price_max"]),
		Search:       strings.TrimSpace(cast.ToString(set["search"])),
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if _, ok := sortColumns[f.Sort]; !ok {
		f.Sort = "id"
	}
	if f.Order != "desc" {
		f.Order = "asc"
	}
	if f.PriceMax < 0 {
		f.PriceMax = 0
	}
	if f.YearFrom < 0 {
		f.YearFrom = 0
	}
	if f.YearTo < 0 {
		f.YearTo = 0
	}

	overlay := orchestrator.Overlay{}
	for key, value := range set {
		if !strings.HasPrefix(key, OverlayPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, OverlayPrefix)
		if name == "" {
			continue
		}
		overlay[name] = CanonicalizeOverlayValue(encodeOverlayValue(value))
	}
	return f, overlay
}

// stringList accepts a scalar or array parameter value and returns it as a
// list of non-empty strings.
func stringList(v any) []string {
	if v == nil {
		return nil
	}
	var raw []string
	if arr, ok := v.([]any); ok {
		for _, item := range arr {
			raw = append(raw, cast.ToString(item))
		}
	} else {
		raw = []string{cast.ToString(v)}
	}

	out := raw[:0]
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func encodeOverlayValue(v any) string {
	if arr, ok := v.([]any); ok {
		parts := make([]string, len(arr))
		for i, item := range arr {
			parts[i] = cast.ToString(item)
		}
		return strings.Join(parts, ",")
	}
	return cast.ToString(v)
}
