package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawBackdrop_Deterministic(t *testing.T) {
	a := NewSurface(120, 80)
	a.DrawBackdrop()
	b := NewSurface(120, 80)
	b.DrawBackdrop()
	assert.Equal(t, a.RGBA().Pix, b.RGBA().Pix)
}

func TestDrawHeatSpots_Deterministic(t *testing.T) {
	a := NewSurface(120, 80)
	a.DrawBackdrop()
	a.DrawHeatSpots()
	b := NewSurface(120, 80)
	b.DrawBackdrop()
	b.DrawHeatSpots()
	assert.Equal(t, a.RGBA().Pix, b.RGBA().Pix)

	plain := NewSurface(120, 80)
	plain.DrawBackdrop()
	assert.NotEqual(t, plain.RGBA().Pix, a.RGBA().Pix, "spots must change the surface")
}

func TestEncodePNG_RoundTrip(t *testing.T) {
	s := NewSurface(32, 16)
	s.DrawBackdrop()

	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, 32, bounds.Dx())
	assert.Equal(t, 16, bounds.Dy())
}
