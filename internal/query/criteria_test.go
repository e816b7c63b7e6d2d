package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCriteria_TrimsInput(t *testing.T) {
	c := NewCriteria("  https ", "\texample.com\n", " US", "Google  ", true)

	assert.Equal(t, "https", c.App())
	assert.Equal(t, "example.com", c.Domain())
	assert.Equal(t, "US", c.Country())
	assert.Equal(t, "Google", c.ASName())
	assert.True(t, c.OnlyFavorites())
}

func TestCriteria_WithReturnsCopy(t *testing.T) {
	orig := NewCriteria("dns", "", "", "", false)
	changed := orig.WithDomain(" example.org ")

	assert.Equal(t, "", orig.Domain(), "original must be untouched")
	assert.Equal(t, "example.org", changed.Domain())
	assert.Equal(t, "dns", changed.App(), "other fields carried over")
}

func TestCriteria_WithText(t *testing.T) {
	var c Criteria
	for _, f := range Fields {
		c = c.WithText(f, " v-"+f.String()+" ")
	}
	for _, f := range Fields {
		assert.Equal(t, "v-"+f.String(), c.Text(f))
	}

	c = c.Cleared(FieldCountry)
	assert.Equal(t, "", c.Country())
	assert.Equal(t, "v-Domain", c.Domain())
}

func TestCriteria_IsActive(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"zero", Criteria{}, false},
		{"whitespace only", NewCriteria("  ", " ", "", "\t", false), false},
		{"app", Criteria{}.WithApp("http"), true},
		{"favorites", Criteria{}.WithOnlyFavorites(true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.IsActive())
		})
	}
}

func TestCriteria_ActiveCount(t *testing.T) {
	c := NewCriteria("http", "", "IT", "", true)
	assert.Equal(t, 3, c.ActiveCount())
	assert.Equal(t, 0, Criteria{}.ActiveCount())
}

func TestCriteria_Comparable(t *testing.T) {
	a := NewCriteria("http", "x", "", "", false)
	b := Criteria{}.WithApp("http").WithDomain("x")
	assert.True(t, a == b)
	assert.False(t, a == b.WithOnlyFavorites(true))
}

func TestFilterFieldString(t *testing.T) {
	assert.Equal(t, "Application", FieldApp.String())
	assert.Equal(t, "AS name", FieldASName.String())
	assert.Equal(t, "Unknown", FilterField(99).String())
}
