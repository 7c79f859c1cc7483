package dmi2aseprite

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/masterdanvk/DMI2Aseprite/chunk"
	"github.com/masterdanvk/DMI2Aseprite/grid"
	"github.com/masterdanvk/DMI2Aseprite/preview"
)

// loadSheet decodes the PNG at file into an NRGBA buffer and also returns
// the raw file bytes so the metadata chunk can be recovered from them.
func loadSheet(file string) ([]byte, *image.NRGBA, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}

	m, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}

	nm, ok := m.(*image.NRGBA)
	if !ok {
		nm = image.NewNRGBA(m.Bounds())
		draw.Draw(nm, nm.Rect, m, m.Bounds().Min, draw.Src)
	}

	return raw, nm, nil
}

// saveSheet encodes the sheet to file as PNG, re-splicing the metadata
// chunk found in the original raw bytes, if there was one, in front of the
// new IDAT. The spliced region is the extracted chunk verbatim.
func saveSheet(file string, raw []byte, m *image.NRGBA) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return err
	}
	out := buf.Bytes()

	c, err := chunk.Extract(raw, chunk.TypeZTXT, chunk.Keyword)
	switch {
	case err == nil:
		if out, err = chunk.Splice(out, c, chunk.AnchorIDAT); err != nil {
			return err
		}
	case errors.Is(err, chunk.ErrNotFound):
		// Plain sprite sheet, nothing to carry over
	default:
		return err
	}

	return os.WriteFile(file, out, 0644)
}

// Mirror copies every cell facing src onto its immediate successor facing
// dst, horizontally mirrored, and writes the result to out. The metadata
// chunk of the input survives the rewrite byte for byte. Returns the
// number of cell pairs written; 0 means no pair matched and the pixels are
// unchanged.
func (a *App) Mirror(in, out string, cellW, cellH int, src, dst grid.Direction) (int, error) {
	raw, m, err := loadSheet(in)
	if err != nil {
		return 0, err
	}

	g, err := grid.New(m, cellW, cellH)
	if err != nil {
		return 0, err
	}

	n := g.MirrorPaired(src, dst)
	if n == 0 {
		a.logger.Printf("no %s/%s cell pair in %q\n", src, dst, in)
	} else {
		a.logger.Printf("mirrored %d %s cell(s) onto %s in %q\n", n, src, dst, in)
	}

	return n, saveSheet(out, raw, g.Image())
}

// Delete clears every cell facing d to full transparency and writes the
// result to out, carrying the metadata chunk over like Mirror. Returns the
// number of cells cleared.
func (a *App) Delete(in, out string, cellW, cellH int, d grid.Direction) (int, error) {
	raw, m, err := loadSheet(in)
	if err != nil {
		return 0, err
	}

	g, err := grid.New(m, cellW, cellH)
	if err != nil {
		return 0, err
	}

	n := g.ClearDirection(d)
	a.logger.Printf("cleared %d %s cell(s) in %q\n", n, d, in)

	return n, saveSheet(out, raw, g.Image())
}

// Thumb writes a quantized paletted preview of one cell of the sheet to
// out. The metadata chunk is deliberately not carried into the preview.
func (a *App) Thumb(in, out string, cellW, cellH, index int) error {
	_, m, err := loadSheet(in)
	if err != nil {
		return err
	}

	g, err := grid.New(m, cellW, cellH)
	if err != nil {
		return err
	}

	cell, err := g.Cell(index)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	return preview.Encode(f, cell)
}
