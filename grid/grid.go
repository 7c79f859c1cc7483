/*
Package grid treats a sprite sheet as a grid of equally sized cells and
performs direction-aware transforms across cell boundaries.

Cells are numbered row-major and each takes its facing from its index
alone: index mod 4 walks the fixed South, North, East, West cycle BYOND
uses for four-directional icon states. The cycle is a property of the
numbering, not of the sheet geometry, so a transform behaves the same on a
sheet of any width.
*/
package grid

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

// ErrGeometry is returned when the sheet cannot be partitioned into whole
// cells of the requested size
var ErrGeometry = errors.New("grid: sheet does not divide into cells")

// Direction is the facing of one cell.
type Direction int

// The four facings in cycle order.
const (
	South Direction = iota
	North
	East
	West
)

func (d Direction) String() string {
	switch d {
	case South:
		return "south"
	case North:
		return "north"
	case East:
		return "east"
	case West:
		return "west"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection maps the usual spellings, full names or single letters in
// any case, onto a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "south", "s":
		return South, nil
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "west", "w":
		return West, nil
	}
	return 0, fmt.Errorf("grid: unknown direction %q", s)
}

// DirectionOf returns the facing of the cell at the given row-major index.
func DirectionOf(index int) Direction {
	return Direction(index % 4)
}

// Grid partitions a pixel buffer into cells of a fixed size. The buffer is
// owned by the grid for the duration of a transform and mutated in place.
type Grid struct {
	img *image.NRGBA

	cellW, cellH int
	cols, rows   int
}

// New validates the cell size against the sheet dimensions and returns a
// grid over img. Both dimensions must be exact multiples of the cell size;
// validation happens here, before any operation can write a pixel, so a
// failed call never leaves a partially mutated sheet.
func New(img *image.NRGBA, cellW, cellH int) (*Grid, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if cellW <= 0 || cellH <= 0 || w%cellW != 0 || h%cellH != 0 {
		return nil, fmt.Errorf("%w: %dx%d sheet, %dx%d cells", ErrGeometry, w, h, cellW, cellH)
	}

	return &Grid{
		img:   img,
		cellW: cellW,
		cellH: cellH,
		cols:  w / cellW,
		rows:  h / cellH,
	}, nil
}

// Image returns the backing pixel buffer.
func (g *Grid) Image() *image.NRGBA {
	return g.img
}

// Cells returns the number of cells in the grid.
func (g *Grid) Cells() int {
	return g.cols * g.rows
}

// Cell returns the sub-image covering the cell at the given index.
func (g *Grid) Cell(index int) (*image.NRGBA, error) {
	if index < 0 || index >= g.Cells() {
		return nil, fmt.Errorf("grid: cell %d out of range", index)
	}
	x, y := g.origin(index)
	return g.img.SubImage(image.Rect(x, y, x+g.cellW, y+g.cellH)).(*image.NRGBA), nil
}

// origin returns the top-left pixel of the cell at the given index.
func (g *Grid) origin(index int) (int, int) {
	return g.img.Rect.Min.X + index%g.cols*g.cellW, g.img.Rect.Min.Y + index/g.cols*g.cellH
}

// MirrorPaired copies every cell facing src onto the cell immediately
// following it, provided that successor faces dst, flipping the pixels
// horizontally on the way. The source cell is snapshotted first and the
// destination cleared to transparent before the mirrored write, so the
// source is never modified. Pairing is strictly index+1: a src cell whose
// successor is missing or faces elsewhere is skipped, and no search for a
// nearer match is attempted. Returns the number of pairs written; 0 means
// nothing matched and the sheet is untouched.
func (g *Grid) MirrorPaired(src, dst Direction) int {
	count := 0
	tmp := make([]color.NRGBA, g.cellW*g.cellH)

	for i := 0; i < g.Cells(); i++ {
		if DirectionOf(i) != src || i+1 >= g.Cells() || DirectionOf(i+1) != dst {
			continue
		}

		sx, sy := g.origin(i)
		dx, dy := g.origin(i + 1)

		for y := 0; y < g.cellH; y++ {
			for x := 0; x < g.cellW; x++ {
				tmp[y*g.cellW+x] = g.img.NRGBAAt(sx+x, sy+y)
			}
		}

		for y := 0; y < g.cellH; y++ {
			for x := 0; x < g.cellW; x++ {
				g.img.SetNRGBA(dx+x, dy+y, color.NRGBA{})
			}
		}

		for y := 0; y < g.cellH; y++ {
			for x := 0; x < g.cellW; x++ {
				g.img.SetNRGBA(dx+g.cellW-1-x, dy+y, tmp[y*g.cellW+x])
			}
		}

		count++
	}

	return count
}

// ClearDirection overwrites every pixel of every cell facing d with full
// transparency and returns the number of cells cleared.
func (g *Grid) ClearDirection(d Direction) int {
	count := 0

	for i := 0; i < g.Cells(); i++ {
		if DirectionOf(i) != d {
			continue
		}

		cx, cy := g.origin(i)
		for y := 0; y < g.cellH; y++ {
			for x := 0; x < g.cellW; x++ {
				g.img.SetNRGBA(cx+x, cy+y, color.NRGBA{})
			}
		}

		count++
	}

	return count
}
