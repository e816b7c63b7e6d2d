package query

import (
	"strings"

	"github.com/kostyay/netinspect/internal/model"
)

// Matches reports whether r satisfies every active constraint in c.
// Text filters are case-insensitive substring matches; an unresolved field
// is the empty string and never matches a non-empty filter.
func Matches(c Criteria, r model.Record) bool {
	if c.onlyFavorites && !r.Value.Favorite {
		return false
	}
	return containsFold(r.Value.AppProtocol, c.app) &&
		containsFold(r.Value.Domain, c.domain) &&
		containsFold(r.Value.Country, c.country) &&
		containsFold(r.Value.ASName, c.asName)
}

// containsFold is strings.Contains on lower-cased operands.
// An empty needle always matches.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Filter returns the records that match c, preserving order.
func Filter(c Criteria, records []model.Record) []model.Record {
	if !c.IsActive() {
		out := make([]model.Record, len(records))
		copy(out, records)
		return out
	}

	var out []model.Record
	for _, r := range records {
		if Matches(c, r) {
			out = append(out, r)
		}
	}
	return out
}
