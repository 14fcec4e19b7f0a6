package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInheritAvatarOverrideVerbatim(t *testing.T) {
	parent := AvatarSpec{Palette: []string{"#ff0000"}, Shape: "hex", Complexity: 3}
	override := &AvatarSpec{Palette: []string{"#00ff00"}, Shape: "circle", Complexity: 5}

	child := InheritAvatar(parent, override, rand.New(rand.NewSource(1)))
	assert.Equal(t, *override, child)
}

func TestInheritAvatarHueShift(t *testing.T) {
	parent := AvatarSpec{Palette: []string{"#ff0000", "#00ff00"}, Shape: "hex", Complexity: 3}
	rng := rand.New(rand.NewSource(42))

	child := InheritAvatar(parent, nil, rng)
	require.Len(t, child.Palette, 2)
	assert.Equal(t, "hex", child.Shape)

	for i, hex := range child.Palette {
		assert.NotEqual(t, parent.Palette[i], hex)

		ph, _, _, ok := hexToHSL(parent.Palette[i])
		require.True(t, ok)
		ch, _, _, ok := hexToHSL(hex)
		require.True(t, ok)

		shift := ch - ph
		if shift < 0 {
			shift += 360
		}
		// Rounding through 8-bit RGB can nudge the hue slightly.
		assert.GreaterOrEqual(t, shift, 14.0)
		assert.LessOrEqual(t, shift, 31.0)
	}
}

func TestInheritAvatarComplexityBounds(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		child := InheritAvatar(AvatarSpec{Complexity: 1}, nil, rng)
		assert.GreaterOrEqual(t, child.Complexity, 1)
		assert.LessOrEqual(t, child.Complexity, 2)

		rng = rand.New(rand.NewSource(seed))
		child = InheritAvatar(AvatarSpec{Complexity: 5}, nil, rng)
		assert.GreaterOrEqual(t, child.Complexity, 4)
		assert.LessOrEqual(t, child.Complexity, 5)
	}
}

func TestInheritAvatarUnparseableColourPassesThrough(t *testing.T) {
	parent := AvatarSpec{Palette: []string{"not-a-colour"}, Complexity: 3}
	child := InheritAvatar(parent, nil, rand.New(rand.NewSource(7)))
	assert.Equal(t, "not-a-colour", child.Palette[0])
}

func TestHexHSLRoundTrip(t *testing.T) {
	for _, hex := range []string{"#336699", "#000000", "#ffffff", "#808080", "#ff8040"} {
		h, s, l, ok := hexToHSL(hex)
		require.True(t, ok, hex)
		assert.Equal(t, hex, hslToHex(h, s, l), hex)
	}
}
