package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostyay/netinspect/internal/model"
)

func TestMatches(t *testing.T) {
	r := withResolution(rec(1, 10, 1), "https", "www.Example.com", "US", "CLOUDFLARENET")

	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"empty criteria matches", Criteria{}, true},
		{"app substring", Criteria{}.WithApp("http"), true},
		{"domain substring", Criteria{}.WithDomain("example"), true},
		{"domain case-insensitive", Criteria{}.WithDomain("EXAMPLE.COM"), true},
		{"country lower case", Criteria{}.WithCountry("us"), true},
		{"as substring", Criteria{}.WithASName("cloudflare"), true},
		{"domain mismatch", Criteria{}.WithDomain("example.org"), false},
		{"app mismatch", Criteria{}.WithApp("dns"), false},
		{"all match", NewCriteria("https", "example", "US", "flare", false), true},
		{"one of many fails", NewCriteria("https", "example", "DE", "flare", false), false},
		{"favorites on non-favorite", Criteria{}.WithOnlyFavorites(true), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.c, r))
		})
	}
}

func TestMatches_FavoritesOnly(t *testing.T) {
	fav := favorite(withResolution(rec(1, 10, 1), "dns", "", "", ""))
	c := Criteria{}.WithOnlyFavorites(true)

	assert.True(t, Matches(c, fav))
	assert.True(t, Matches(c.WithApp("dns"), fav))
	assert.False(t, Matches(c.WithApp("http"), fav))
}

func TestMatches_UnresolvedFieldExcluded(t *testing.T) {
	r := rec(1, 10, 1) // nothing resolved

	assert.False(t, Matches(Criteria{}.WithDomain("example.com"), r))
	assert.False(t, Matches(Criteria{}.WithCountry("U"), r))
	assert.True(t, Matches(Criteria{}, r))
}

func TestMatches_ANDSemantics(t *testing.T) {
	records := []model.Record{
		favorite(withResolution(rec(1, 1, 1), "https", "a.example.com", "US", "AMAZON")),
		withResolution(rec(2, 1, 1), "https", "b.example.com", "DE", "HETZNER"),
		favorite(withResolution(rec(3, 1, 1), "dns", "", "US", "GOOGLE")),
		withResolution(rec(4, 1, 1), "", "c.example.org", "", ""),
	}
	combined := NewCriteria("http", "example", "US", "", true)
	parts := []Criteria{
		Criteria{}.WithApp("http"),
		Criteria{}.WithDomain("example"),
		Criteria{}.WithCountry("US"),
		Criteria{}.WithOnlyFavorites(true),
	}

	for _, r := range records {
		want := true
		for _, p := range parts {
			want = want && Matches(p, r)
		}
		assert.Equal(t, want, Matches(combined, r), "record %s", r.Key)
	}
}

func TestFilter_Monotonicity(t *testing.T) {
	records := []model.Record{
		favorite(withResolution(rec(1, 1, 1), "https", "a.example.com", "US", "AMAZON")),
		withResolution(rec(2, 1, 1), "https", "b.example.com", "DE", "HETZNER"),
		favorite(withResolution(rec(3, 1, 1), "dns", "", "US", "GOOGLE")),
		withResolution(rec(4, 1, 1), "http", "c.example.org", "", ""),
		rec(5, 1, 1),
	}

	chain := []Criteria{
		{},
		Criteria{}.WithApp("http"),
		Criteria{}.WithApp("http").WithDomain("example"),
		Criteria{}.WithApp("http").WithDomain("example").WithCountry("US"),
		Criteria{}.WithApp("http").WithDomain("example").WithCountry("US").WithOnlyFavorites(true),
	}

	prev := len(records) + 1
	for i, c := range chain {
		n := len(Filter(c, records))
		assert.LessOrEqual(t, n, prev, "step %d increased the match set", i)
		prev = n
	}
	assert.Equal(t, 1, prev)
}

func TestFilter_PreservesOrderAndCopies(t *testing.T) {
	records := []model.Record{rec(3, 1, 1), rec(1, 1, 1), rec(2, 1, 1)}

	all := Filter(Criteria{}, records)
	require.Len(t, all, 3)
	all[0] = rec(9, 9, 9)
	assert.Equal(t, 3, records[0].Value.Index, "unfiltered result must not alias input")

	none := Filter(Criteria{}.WithDomain("nothing"), records)
	assert.Empty(t, none)
}
