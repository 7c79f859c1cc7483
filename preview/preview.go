/*
Package preview renders an image, typically a single cell of a sprite
sheet, as a small paletted PNG quantized down to at most 16 colors.
*/
package preview

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

// MaxColors is the palette size previews are quantized to
const MaxColors = 16

// Encode writes m to w as a paletted PNG with its origin normalized to
// (0, 0), so sub-images of a larger sheet come out as standalone images.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()

	q := quantize.MedianCutQuantizer{AddTransparent: true}
	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), q.Quantize(make(color.Palette, 0, MaxColors), m))
	draw.Draw(pm, pm.Rect, m, b.Min, draw.Src)

	return png.Encode(w, pm)
}
