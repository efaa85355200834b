package suballoc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/mem"
)

// newPot builds a SegregatedSlab[byte] over [0;region[ with power-of-two classes.
func newPot(t testing.TB, region, maxSize, minSize int) *SegregatedSlab[byte] {
	t.Helper()
	cfg, err := Pot(mem.NewRange[byte](0, region), maxSize, minSize)
	require.NoError(t, err)
	sa, err := NewSegregatedSlab(cfg)
	require.NoError(t, err)
	return sa
}

// requireConsistent checks the index pools and that no two live ranges overlap.
func requireConsistent[U any](t testing.TB, sa *SegregatedSlab[U]) {
	t.Helper()
	require.NoError(t, sa.Validate())

	live := sa.Allocations()
	for i := range live {
		require.True(t, live[i].IsSubrangeOf(sa.Region()), "%s outside region", live[i])
		require.True(t, sa.IsAllocated(live[i]), "%s listed but not allocated", live[i])
		for j := i + 1; j < len(live); j++ {
			require.False(t, live[i].Overlaps(live[j]), "%s overlaps %s", live[i], live[j])
		}
	}
}

// fill writes v over r.
func fill(memory []int32, r mem.RangeOf[int32], v int32) {
	for i := r.Offset; i < r.End(); i++ {
		memory[i] = v
	}
}
