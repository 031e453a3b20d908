package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_EncodeOmitsEmptyFields(t *testing.T) {
	q := New(2).With("name", "shirt").With("category", "")

	assert.Equal(t, "name=shirt&page=2", q.Encode())
	assert.False(t, q.Has("category"))
}

func TestQuery_PageAlwaysPresent(t *testing.T) {
	assert.Equal(t, "page=1", Query{}.Encode())
	assert.Equal(t, "page=1", New(-4).Encode())
}

func TestQuery_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  Query
	}{
		{"page only", New(3), New(3)},
		{"with field", New(1).With("name", "cap"), New(1).With("name", "cap")},
		{"empty field dropped", New(5).With("name", "cap").With("sku", ""), New(5).With("name", "cap")},
		{"escaped value", New(1).With("name", "t-shirt & cap"), New(1).With("name", "t-shirt & cap")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.query.Encode())
			assert.True(t, tt.want.Equal(parsed), "got %s", parsed.Encode())
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	tests := []struct {
		raw  string
		page int
		name string
	}{
		{"", 1, ""},
		{"page=0", 1, ""},
		{"page=-2", 1, ""},
		{"page=abc&name=hat", 1, "hat"},
		{"page=4&name=", 4, ""},
		{"name=a&name=b&page=2", 2, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q := Parse(tt.raw)
			assert.Equal(t, tt.page, q.Page)
			assert.Equal(t, tt.name, q.Get("name"))
		})
	}
}

func TestQuery_WithoutRemovesKey(t *testing.T) {
	q := New(3).With("name", "shirt")
	cleared := q.Without("name").WithPage(1)

	assert.False(t, cleared.Has("name"))
	assert.Equal(t, "page=1", cleared.Encode())
	// q itself is untouched
	assert.Equal(t, "shirt", q.Get("name"))
	assert.Equal(t, 3, q.Page)
}

func TestQuery_WithIgnoresPageKey(t *testing.T) {
	q := New(2).With(PageKey, "9")
	assert.Equal(t, 2, q.Page)
	assert.Empty(t, q.Fields())
}

func TestQuery_Fields(t *testing.T) {
	q := New(1).With("sku", "A1").With("name", "x")
	assert.Equal(t, []string{"name", "sku"}, q.Fields())
}

func TestPageIndexConversion(t *testing.T) {
	for page := 1; page <= 50; page++ {
		assert.Equal(t, page, ToPage(ToIndex(page)))
	}
	assert.Equal(t, 0, ToIndex(1))
	assert.Equal(t, 3, ToPage(2))
	assert.Equal(t, 0, ToIndex(0))
	assert.Equal(t, 1, ToPage(-1))
}
