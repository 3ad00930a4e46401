package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteSet_AddRemove_SwapKeepsSlotsConsistent(t *testing.T) {
	ss := newSiteSet()
	for _, s := range []int{4, 9, 2, 7} {
		assert.True(t, ss.Add(s))
	}
	assert.False(t, ss.Add(9), "duplicate add must be rejected")
	assert.Equal(t, 4, ss.Len())

	// Removing the first element moves the last one into its slot.
	assert.True(t, ss.Remove(4))
	assert.Equal(t, 7, ss.At(0))
	assert.False(t, ss.Remove(4))
	assert.False(t, ss.Contains(4))

	// The moved element must still be removable through its new slot.
	assert.True(t, ss.Remove(7))
	assert.Equal(t, []int{2, 9}, ss.Sorted())
	for k := 0; k < ss.Len(); k++ {
		assert.True(t, ss.Contains(ss.At(k)))
	}
}

func TestSiteSet_RemoveLast_NoMove(t *testing.T) {
	ss := newSiteSet()
	ss.Add(1)
	ss.Add(2)
	assert.True(t, ss.Remove(2))
	assert.Equal(t, 1, ss.Len())
	assert.Equal(t, 1, ss.At(0))
}
