package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStencil_RescanWindow(t *testing.T) {
	tests := []struct {
		name             string
		st               Stencil
		wantRows, wantCo Span
	}{
		{
			name:     "forward pair",
			st:       Stencil{ReadRows: Span{0, 1}, WriteRows: Span{0, 1}},
			wantRows: Span{-1, 1},
		},
		{
			name:     "forward reach two",
			st:       Stencil{ReadRows: Span{0, 2}, WriteRows: Span{0, 2}},
			wantRows: Span{-2, 2},
		},
		{
			name:     "backward reach two",
			st:       Stencil{ReadRows: Span{-2, 0}, WriteRows: Span{-2, 0}},
			wantRows: Span{-2, 2},
		},
		{
			name:     "symmetric read, single write",
			st:       Stencil{ReadRows: Span{-2, 2}, ReadCols: Span{-1, 1}},
			wantRows: Span{-2, 2},
			wantCo:   Span{-1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols := tt.st.RescanWindow()
			assert.Equal(t, tt.wantRows, rows)
			assert.Equal(t, tt.wantCo, cols)
		})
	}
}

func TestStencil_Validate_InvertedSpan(t *testing.T) {
	err := Stencil{ReadRows: Span{Min: 1, Max: 0}}.Validate()
	assert.True(t, errors.Is(err, ErrConfig))
	assert.NoError(t, rowPair.Stencil().Validate())
}

func TestChannelByName(t *testing.T) {
	c, ok := ChannelByName(rowPair, "detach")
	assert.True(t, ok)
	assert.Equal(t, ChannelID(1), c)
	_, ok = ChannelByName(rowPair, "walk")
	assert.False(t, ok)
}
