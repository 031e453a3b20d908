// Package search models the sparse filter and pagination record that list
// views keep in the URL query string.
package search

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// PageKey is the query parameter holding the one-based page number
const PageKey = "page"

// Query is a list-view query: a page number that is always at least 1 and
// a set of field filters. Empty values mean no filter and are never kept.
type Query struct {
	Page   int
	fields map[string]string
}

// New returns a query for page with no filters
func New(page int) Query {
	return Query{Page: max(page, 1)}
}

// Get returns the filter value for field, or ""
func (q Query) Get(field string) string {
	return q.fields[field]
}

// Has reports whether a filter is set for field
func (q Query) Has(field string) bool {
	_, ok := q.fields[field]
	return ok
}

// Fields returns the filter names in sorted order
func (q Query) Fields() []string {
	names := make([]string, 0, len(q.fields))
	for k := range q.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of q with field set to value. An empty value removes
// the field.
func (q Query) With(field, value string) Query {
	if field == PageKey {
		return q
	}
	out := q.clone()
	if value == "" {
		delete(out.fields, field)
		return out
	}
	if out.fields == nil {
		out.fields = make(map[string]string)
	}
	out.fields[field] = value
	return out
}

// Without returns a copy of q with field removed
func (q Query) Without(field string) Query {
	out := q.clone()
	delete(out.fields, field)
	return out
}

// WithPage returns a copy of q at page, clamped to 1
func (q Query) WithPage(page int) Query {
	out := q.clone()
	out.Page = max(page, 1)
	return out
}

// Values returns the request parameters: page and every non-empty filter
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set(PageKey, strconv.Itoa(max(q.Page, 1)))
	for k, val := range q.fields {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Encode serializes q to a query string with keys in sorted order
func (q Query) Encode() string {
	return q.Values().Encode()
}

// Equal reports whether two queries serialize identically
func (q Query) Equal(other Query) bool {
	return q.Encode() == other.Encode()
}

func (q Query) clone() Query {
	out := Query{Page: q.Page}
	if len(q.fields) > 0 {
		out.fields = make(map[string]string, len(q.fields))
		for k, v := range q.fields {
			out.fields[k] = v
		}
	}
	return out
}

// Parse reads a raw query string. A missing, malformed or non-positive page
// becomes 1; empty values are dropped.
func Parse(raw string) Query {
	// ParseQuery still returns the pairs that did parse.
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return FromValues(values)
}

// FromValues builds a query from parsed URL values
func FromValues(values url.Values) Query {
	q := New(1)
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		if k == PageKey {
			if page, err := strconv.Atoi(vs[0]); err == nil && page > 0 {
				q.Page = page
			}
			continue
		}
		q = q.With(k, vs[0])
	}
	return q
}

// ToIndex converts a one-based page to the zero-based index used by
// pagination widgets
func ToIndex(page int) int {
	return max(page, 1) - 1
}

// ToPage converts a zero-based pagination index to a one-based page
func ToPage(index int) int {
	return max(index, 0) + 1
}
