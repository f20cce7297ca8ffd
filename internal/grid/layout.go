// Package grid computes sensor-window placement around the pointer.
package grid

import "fmt"

// Rect is a sensor-window rectangle in physical pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Slot is a grid coordinate relative to the pointer cell. The center slot
// (0,0) is always omitted — the pointer itself must stay uncovered.
type Slot struct {
	Row int
	Col int
}

// WindowSpec is one planned sensor window.
type WindowSpec struct {
	Slot    Slot
	Rect    Rect
	Clamped bool
}

// Kind selects the placement strategy of a Layout.
type Kind string

const (
	// KindFrame places four thin strips above/below/left/right of the
	// pointer, the same shape as a window border overlay.
	KindFrame Kind = "frame"
	// KindSparse places an N×N grid of small cells with the center cell
	// omitted.
	KindSparse Kind = "sparse"
)

// Layout describes a sensor-window constellation. Layouts are pluggable
// configuration; two proven ones ship built in.
type Layout struct {
	Name string
	Kind Kind

	// Frame parameters.
	ArmLength int // long side of each strip
	Thickness int // short side of each strip
	Clearance int // gap between the pointer and the strip's inner edge

	// Sparse parameters.
	Rows       int
	Cols       int
	CellWidth  int
	CellHeight int
	Gap        int // spacing between adjacent cells
}

// Frame4 is the compact four-strip layout. This is the default.
func Frame4() Layout {
	return Layout{
		Name:      "frame4",
		Kind:      KindFrame,
		ArmLength: 80,
		Thickness: 15,
		Clearance: 50,
	}
}

// Sparse24 is the 5×5 sparse grid with the center cell omitted.
func Sparse24() Layout {
	return Layout{
		Name:       "sparse24",
		Kind:       KindSparse,
		Rows:       5,
		Cols:       5,
		CellWidth:  100,
		CellHeight: 100,
		Gap:        40,
	}
}

// ByName resolves a configured layout name.
func ByName(name string) (Layout, error) {
	switch name {
	case "", "frame4":
		return Frame4(), nil
	case "sparse24":
		return Sparse24(), nil
	default:
		return Layout{}, fmt.Errorf("unknown sensor layout %q (known: frame4, sparse24)", name)
	}
}

// Count returns the number of sensor windows this layout always produces.
func (l Layout) Count() int {
	switch l.Kind {
	case KindFrame:
		return 4
	case KindSparse:
		return l.Rows*l.Cols - 1
	default:
		return 0
	}
}
