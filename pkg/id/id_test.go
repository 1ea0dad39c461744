package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUniqueAndSortable(t *testing.T) {
	t.Parallel()

	var prev string
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := New()
		require.NoError(t, err)
		assert.Len(t, s, 26)
		assert.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
		if prev != "" {
			assert.Less(t, prev, s)
		}
		prev = s
	}
}
