package graph

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// AvatarSpec describes a generated agent avatar.
type AvatarSpec struct {
	Palette    []string `json:"palette"`
	Shape      string   `json:"shape"`
	Complexity int      `json:"complexity"`
}

// InheritAvatar derives a child avatar from a parent. When the child
// supplies any explicit override the override is returned verbatim.
// Otherwise each palette channel gets an independent hue shift drawn
// uniformly from [15, 30] degrees, and the complexity is mutated by one
// step in either direction, bounded to [1, 5]. The caller owns the rand
// source so derivations can be made reproducible.
func InheritAvatar(parent AvatarSpec, override *AvatarSpec, rng *rand.Rand) AvatarSpec {
	if override != nil {
		return *override
	}

	child := AvatarSpec{
		Palette:    make([]string, len(parent.Palette)),
		Shape:      parent.Shape,
		Complexity: parent.Complexity,
	}
	for i, hex := range parent.Palette {
		child.Palette[i] = shiftHue(hex, 15+rng.Float64()*15)
	}

	if rng.Intn(2) == 0 {
		child.Complexity--
	} else {
		child.Complexity++
	}
	if child.Complexity < 1 {
		child.Complexity = 1
	}
	if child.Complexity > 5 {
		child.Complexity = 5
	}
	return child
}

// shiftHue rotates the hue of a #rrggbb colour by the given number of
// degrees. Unparseable colours pass through unchanged.
func shiftHue(hex string, degrees float64) string {
	h, s, l, ok := hexToHSL(hex)
	if !ok {
		return hex
	}
	h = math.Mod(h+degrees, 360)
	if h < 0 {
		h += 360
	}
	return hslToHex(h, s, l)
}

func hexToHSL(hex string) (h, s, l float64, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	var ri, gi, bi int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &ri, &gi, &bi); err != nil {
		return 0, 0, 0, false
	}
	r := float64(ri) / 255
	g := float64(gi) / 255
	b := float64(bi) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l, true
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l, true
}

func hslToHex(h, s, l float64) string {
	if s == 0 {
		v := int(math.Round(l * 255))
		return fmt.Sprintf("#%02x%02x%02x", v, v, v)
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360

	r := hueToRGB(p, q, hk+1.0/3)
	g := hueToRGB(p, q, hk)
	b := hueToRGB(p, q, hk-1.0/3)
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(r*255)), int(math.Round(g*255)), int(math.Round(b*255)))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
