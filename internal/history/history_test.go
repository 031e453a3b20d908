package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	loc  string
	kind Kind
}

func record(h *History) (*[]recorded, func()) {
	var got []recorded
	stop := h.Listen(func(loc Location, kind Kind) {
		got = append(got, recorded{loc.String(), kind})
	})
	return &got, stop
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw   string
		path  string
		query string
	}{
		{"/", "/", ""},
		{"", "/", ""},
		{"/admin/product?page=2&name=cap", "/admin/product", "page=2&name=cap"},
		{"?page=3", "/", "page=3"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc := ParseLocation(tt.raw)
			assert.Equal(t, tt.path, loc.Path)
			assert.Equal(t, tt.query, loc.Query)
		})
	}
}

func TestHistory_PushBackForward(t *testing.T) {
	h := New("/")
	got, _ := record(h)

	h.Push("/?page=2")
	h.Push("/?page=3")
	assert.Equal(t, "/?page=3", h.Current().String())

	require.True(t, h.Back())
	assert.Equal(t, "/?page=2", h.Current().String())
	require.True(t, h.Forward())
	assert.False(t, h.Forward())

	require.True(t, h.Back())
	require.True(t, h.Back())
	assert.False(t, h.Back())

	assert.Equal(t, []recorded{
		{"/?page=2", Push},
		{"/?page=3", Push},
		{"/?page=2", Pop},
		{"/?page=3", Pop},
		{"/?page=2", Pop},
		{"/", Pop},
	}, *got)
}

func TestHistory_PushDropsForwardEntries(t *testing.T) {
	h := New("/")
	h.Push("/a")
	h.Push("/b")
	h.Back()
	h.Push("/c")

	assert.Equal(t, 3, h.Len())
	assert.False(t, h.Forward())
	h.Back()
	assert.Equal(t, "/a", h.Current().Path)
}

func TestHistory_Replace(t *testing.T) {
	h := New("/login")
	got, _ := record(h)

	h.Replace("/")
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, []recorded{{"/", Replace}}, *got)
}

func TestHistory_ReloadRunsHooksFirst(t *testing.T) {
	h := New("/cart")
	var order []string
	h.OnReload(func() { order = append(order, "reset") })
	h.Listen(func(loc Location, kind Kind) { order = append(order, kind.String()+" "+loc.Path) })

	h.Reload("/login")

	assert.Equal(t, []string{"reset", "reload /login"}, order)
	assert.Equal(t, "/login", h.Current().Path)
}

func TestHistory_Unlisten(t *testing.T) {
	h := New("/")
	got, stop := record(h)

	h.Push("/a")
	stop()
	h.Push("/b")

	assert.Len(t, *got, 1)
}

func TestHistory_ListenerMayUnsubscribeDuringNotify(t *testing.T) {
	h := New("/")
	var stop func()
	calls := 0
	stop = h.Listen(func(Location, Kind) {
		calls++
		stop()
	})
	other := 0
	h.Listen(func(Location, Kind) { other++ })

	h.Push("/a")
	h.Push("/b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}
