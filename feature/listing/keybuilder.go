package listing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"query-sync/core/orchestrator"
)

// KeyNamespace prefixes every listing cache key, keeping the namespace
// disjoint from other features sharing the same coordinator.
const KeyNamespace = "listings"

// BuildKey derives the deterministic cache key for a filter state and
// overlay. Equal inputs always produce identical keys: fields appear in a
// fixed order, list values are sorted, and overlay values are canonicalized
// before entering the key.
func BuildKey(f Filters, overlay orchestrator.Overlay) string {
	var b strings.Builder
	b.WriteString(KeyNamespace)
	fmt.Fprintf(&b, "|p=%d|ps=%d|sort=%s:%s", f.Page, f.PageSize, f.Sort, f.Order)

	if len(f.Manufacturer) > 0 {
		b.WriteString("|mfr=")
		b.WriteString(CanonicalizeOverlayValue(strings.Join(f.Manufacturer, ",")))
	}
	if f.Model != "" {
		b.WriteString("|model=")
		b.WriteString(f.Model)
	}
	if f.BodyStyle != "" {
		b.WriteString("|body=")
		b.WriteString(f.BodyStyle)
	}
	if f.YearFrom > 0 {
		fmt.Fprintf(&b, "|yf=%d", f.YearFrom)
	}
	if f.YearTo > 0 {
		fmt.Fprintf(&b, "|yt=%d", f.YearTo)
	}
	if f.PriceMax > 0 {
		b.WriteString("|pmax=")
		b.WriteString(strconv.FormatFloat(f.PriceMax, 'f', -1, 64))
	}
	if f.Search != "" {
		b.WriteString("|q=")
		b.WriteString(f.Search)
	}

	if len(overlay) > 0 {
		keys := make([]string, 0, len(overlay))
		for k := range overlay {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("|hl:")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(CanonicalizeOverlayValue(overlay[k]))
		}
	}
	return b.String()
}

// CanonicalizeOverlayValue normalizes a comma-joined value: elements are
// trimmed, empties dropped, and the remainder sorted and re-joined. "b, a"
// and "a,b" therefore contribute the same key fragment.
func CanonicalizeOverlayValue(value string) string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
