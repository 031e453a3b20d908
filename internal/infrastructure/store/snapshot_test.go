package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDue(t *testing.T) {
	tests := []struct {
		version int
		want    bool
	}{
		{0, false},
		{1, false},
		{9, false},
		{10, true},
		{11, false},
		{20, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Due(tt.version), "version %d", tt.version)
	}
}
