package board

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultWidth and DefaultHeight are the dimensions of the classic
	// knight's-isolation board.
	DefaultWidth  = 11
	DefaultHeight = 9

	// MaxCells is the largest board a Bitboard can address.
	MaxCells = 128

	// MaxWidth is bounded by coordinate notation (columns a through z).
	MaxWidth = 26
)

// knightOffsets lists the eight knight steps as (row, col) deltas, north
// toward row 0. The order is fixed: move enumeration, and therefore every
// first-seen tie-break downstream, follows it.
var knightOffsets = [8][2]int{
	{-2, 1},  // NNE
	{-1, 2},  // ENE
	{1, 2},   // ESE
	{2, 1},   // SSE
	{2, -1},  // SSW
	{1, -2},  // WSW
	{-1, -2}, // WNW
	{-2, -1}, // NNW
}

// A Geometry holds board dimensions and every table derived from them:
// per-cell knight destinations and the box masks the liberty evaluators use.
// All offset arithmetic happens here, once, at construction; afterwards
// lookups are branch-free. A Geometry is immutable and safe to share.
type Geometry struct {
	width    int
	height   int
	numCells int

	all Bitboard

	knightDests [][]Square
	knightMasks []Bitboard
	boxMasks    [3][]Bitboard
}

func NewGeometry(width, height int) (*Geometry, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("geometry %dx%d: dimensions must be positive", width, height)
	}
	if width > MaxWidth {
		return nil, fmt.Errorf("geometry %dx%d: width cannot exceed %d", width, height, MaxWidth)
	}
	if width*height > MaxCells {
		return nil, fmt.Errorf("geometry %dx%d: %d cells exceed the %d-cell limit",
			width, height, width*height, MaxCells)
	}
	g := &Geometry{width: width, height: height, numCells: width * height}
	g.knightDests = make([][]Square, g.numCells)
	g.knightMasks = make([]Bitboard, g.numCells)
	g.boxMasks[1] = make([]Bitboard, g.numCells)
	g.boxMasks[2] = make([]Bitboard, g.numCells)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			sq := r*width + c
			g.all.Set(Square(sq))
			for _, off := range knightOffsets {
				nr, nc := r+off[0], c+off[1]
				if nr < 0 || nr >= height || nc < 0 || nc >= width {
					continue
				}
				dest := Square(nr*width + nc)
				g.knightDests[sq] = append(g.knightDests[sq], dest)
				g.knightMasks[sq].Set(dest)
			}
			for radius := 1; radius <= 2; radius++ {
				for dr := -radius; dr <= radius; dr++ {
					for dc := -radius; dc <= radius; dc++ {
						nr, nc := r+dr, c+dc
						if (dr == 0 && dc == 0) || nr < 0 || nr >= height ||
							nc < 0 || nc >= width {
							continue
						}
						g.boxMasks[radius][sq].Set(Square(nr*width + nc))
					}
				}
			}
		}
	}
	return g, nil
}

// MustGeometry is NewGeometry for dimensions known to be valid.
func MustGeometry(width, height int) *Geometry {
	g, err := NewGeometry(width, height)
	if err != nil {
		panic(err)
	}
	return g
}

var defaultGeometry = MustGeometry(DefaultWidth, DefaultHeight)

// Default returns the shared 11x9 geometry.
func Default() *Geometry {
	return defaultGeometry
}

func (g *Geometry) Width() int  { return g.width }
func (g *Geometry) Height() int { return g.height }

// NumCells returns width times height.
func (g *Geometry) NumCells() int { return g.numCells }

// AllCells returns the mask of every on-board cell.
func (g *Geometry) AllCells() Bitboard { return g.all }

func (g *Geometry) OnBoard(sq Square) bool {
	return sq >= 0 && int(sq) < g.numCells
}

// Index returns the square at (row, col), or NoSquare when out of bounds.
func (g *Geometry) Index(row, col int) Square {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return NoSquare
	}
	return Square(row*g.width + col)
}

func (g *Geometry) Row(sq Square) int { return int(sq) / g.width }
func (g *Geometry) Col(sq Square) int { return int(sq) % g.width }

// KnightDests returns the on-board knight destinations from sq in offset
// order. The returned slice is shared; callers must not modify it.
func (g *Geometry) KnightDests(sq Square) []Square {
	return g.knightDests[sq]
}

// KnightMask returns the destination set of KnightDests as a Bitboard.
func (g *Geometry) KnightMask(sq Square) Bitboard {
	return g.knightMasks[sq]
}

// Box returns the on-board cells within the square box of the given radius
// around sq, excluding sq itself. Only radius 1 and 2 are tabulated.
func (g *Geometry) Box(sq Square, radius int) Bitboard {
	return g.boxMasks[radius][sq]
}

// SquareName renders sq in coordinate notation: column letter then 1-based
// row number counted from the top, so square 0 is a1.
func (g *Geometry) SquareName(sq Square) string {
	if sq == NoSquare {
		return "-"
	}
	if !g.OnBoard(sq) {
		return fmt.Sprintf("off(%d)", sq)
	}
	return fmt.Sprintf("%c%d", 'a'+g.Col(sq), g.Row(sq)+1)
}

// ParseSquare is the inverse of SquareName. "-" parses to NoSquare.
func (g *Geometry) ParseSquare(name string) (Square, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "-" {
		return NoSquare, nil
	}
	if len(name) < 2 {
		return NoSquare, fmt.Errorf("square %q: want a column letter and a row number", name)
	}
	col := int(name[0] - 'a')
	row, err := strconv.Atoi(name[1:])
	if err != nil {
		return NoSquare, fmt.Errorf("square %q: bad row: %w", name, err)
	}
	sq := g.Index(row-1, col)
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("square %q: outside the %dx%d board", name, g.width, g.height)
	}
	return sq, nil
}
