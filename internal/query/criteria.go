// Package query turns a store snapshot into the ordered, paginated slice of
// connections shown by the inspect page.
package query

import "strings"

// FilterField identifies one of the text filters in Criteria.
type FilterField int

const (
	FieldApp FilterField = iota
	FieldDomain
	FieldCountry
	FieldASName
)

// String returns a human-readable name for the FilterField.
func (f FilterField) String() string {
	switch f {
	case FieldApp:
		return "Application"
	case FieldDomain:
		return "Domain"
	case FieldCountry:
		return "Country"
	case FieldASName:
		return "AS name"
	default:
		return "Unknown"
	}
}

// Fields lists the text filters in display order.
var Fields = []FilterField{FieldApp, FieldCountry, FieldDomain, FieldASName}

// Criteria is the active search. It is a comparable value: builders return a
// copy, so a Criteria held elsewhere never observes a half-applied change.
//
// Text filters are trimmed on the way in. An empty filter places no
// constraint on its field.
type Criteria struct {
	app           string
	domain        string
	country       string
	asName        string
	onlyFavorites bool
}

// NewCriteria builds a Criteria from raw user input.
func NewCriteria(app, domain, country, asName string, onlyFavorites bool) Criteria {
	return Criteria{
		app:           normalize(app),
		domain:        normalize(domain),
		country:       normalize(country),
		asName:        normalize(asName),
		onlyFavorites: onlyFavorites,
	}
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}

// App returns the application protocol filter.
func (c Criteria) App() string { return c.app }

// Domain returns the domain filter.
func (c Criteria) Domain() string { return c.domain }

// Country returns the country filter.
func (c Criteria) Country() string { return c.country }

// ASName returns the administrative entity filter.
func (c Criteria) ASName() string { return c.asName }

// OnlyFavorites reports whether only favorite connections match.
func (c Criteria) OnlyFavorites() bool { return c.onlyFavorites }

// Text returns the filter text for field.
func (c Criteria) Text(field FilterField) string {
	switch field {
	case FieldApp:
		return c.app
	case FieldDomain:
		return c.domain
	case FieldCountry:
		return c.country
	case FieldASName:
		return c.asName
	default:
		return ""
	}
}

// WithText returns a copy with field set to value.
func (c Criteria) WithText(field FilterField, value string) Criteria {
	value = normalize(value)
	switch field {
	case FieldApp:
		c.app = value
	case FieldDomain:
		c.domain = value
	case FieldCountry:
		c.country = value
	case FieldASName:
		c.asName = value
	}
	return c
}

// WithApp returns a copy with the application protocol filter replaced.
func (c Criteria) WithApp(v string) Criteria { return c.WithText(FieldApp, v) }

// WithDomain returns a copy with the domain filter replaced.
func (c Criteria) WithDomain(v string) Criteria { return c.WithText(FieldDomain, v) }

// WithCountry returns a copy with the country filter replaced.
func (c Criteria) WithCountry(v string) Criteria { return c.WithText(FieldCountry, v) }

// WithASName returns a copy with the administrative entity filter replaced.
func (c Criteria) WithASName(v string) Criteria { return c.WithText(FieldASName, v) }

// WithOnlyFavorites returns a copy with the favorites flag replaced.
func (c Criteria) WithOnlyFavorites(v bool) Criteria {
	c.onlyFavorites = v
	return c
}

// Cleared returns a copy with field emptied.
func (c Criteria) Cleared(field FilterField) Criteria {
	return c.WithText(field, "")
}

// IsActive reports whether any constraint is set.
func (c Criteria) IsActive() bool {
	return c != Criteria{}
}

// ActiveCount returns the number of constraints currently set.
func (c Criteria) ActiveCount() int {
	n := 0
	for _, f := range Fields {
		if c.Text(f) != "" {
			n++
		}
	}
	if c.onlyFavorites {
		n++
	}
	return n
}
