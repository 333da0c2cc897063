package preview

import (
	"image/color"
	"math"
)

/*
	The Mapbox Terrain-RGB encoding decodes heights from rgb as

	height = -10000 + ((R * 256 * 256 + G * 256 + B) * 0.1)

	Replacing (R * 256 * 256 + G * 256 + B) with x and solving for x gives
	x = 10 * height + 100000

	x written as a Base256 number has r at position 2, g at position 1 and b at position 0.
*/

var maxX = int64(math.Pow(256, 3) - 1)

// HeightToRgb encodes an elevation as a Terrain-RGB colour
func HeightToRgb(height float64) color.NRGBA {
	x := int64(10*height+100000) % maxX
	if x < 0 {
		x = 0
	}

	b := uint8(x % 256)
	x = x / 256

	g := uint8(x % 256)
	x = x / 256

	r := uint8(x % 256)

	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
