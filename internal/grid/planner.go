package grid

import "github.com/1broseidon/dragsense/internal/screen"

// Plan computes the sensor-window rectangles for a layout centered on the
// given physical pixel, clamped into the monitor's bounds. Rectangles are
// always translated onto the monitor, never dropped: len(Plan(...)) equals
// layout.Count() for every center, including the extreme corners.
func Plan(centerX, centerY int, mon screen.Monitor, layout Layout) []WindowSpec {
	var specs []WindowSpec

	switch layout.Kind {
	case KindFrame:
		specs = planFrame(centerX, centerY, layout)
	case KindSparse:
		specs = planSparse(centerX, centerY, layout)
	}

	for i := range specs {
		specs[i].Rect, specs[i].Clamped = clampRect(specs[i].Rect, mon)
	}
	return specs
}

func planFrame(cx, cy int, l Layout) []WindowSpec {
	arm := l.ArmLength
	t := l.Thickness
	c := l.Clearance

	// Strips sit just outside a clearance square around the pointer, long
	// side centered on it.
	return []WindowSpec{
		{Slot: Slot{Row: -1}, Rect: Rect{X: cx - arm/2, Y: cy - c - t, Width: arm, Height: t}},
		{Slot: Slot{Row: 1}, Rect: Rect{X: cx - arm/2, Y: cy + c, Width: arm, Height: t}},
		{Slot: Slot{Col: -1}, Rect: Rect{X: cx - c - t, Y: cy - arm/2, Width: t, Height: arm}},
		{Slot: Slot{Col: 1}, Rect: Rect{X: cx + c, Y: cy - arm/2, Width: t, Height: arm}},
	}
}

func planSparse(cx, cy int, l Layout) []WindowSpec {
	specs := make([]WindowSpec, 0, l.Rows*l.Cols-1)

	stepX := l.CellWidth + l.Gap
	stepY := l.CellHeight + l.Gap
	rowOff := l.Rows / 2
	colOff := l.Cols / 2

	for r := -rowOff; r <= l.Rows-1-rowOff; r++ {
		for c := -colOff; c <= l.Cols-1-colOff; c++ {
			if r == 0 && c == 0 {
				continue
			}
			specs = append(specs, WindowSpec{
				Slot: Slot{Row: r, Col: c},
				Rect: Rect{
					X:      cx + c*stepX - l.CellWidth/2,
					Y:      cy + r*stepY - l.CellHeight/2,
					Width:  l.CellWidth,
					Height: l.CellHeight,
				},
			})
		}
	}
	return specs
}

// clampRect translates r the minimum distance needed to fit entirely inside
// the monitor. X is clamped first, then Y using the adjusted X. A rectangle
// larger than the monitor pins to the monitor origin.
func clampRect(r Rect, mon screen.Monitor) (Rect, bool) {
	clamped := false

	if r.X < mon.X {
		r.X = mon.X
		clamped = true
	} else if r.X+r.Width > mon.X+mon.Width {
		r.X = mon.X + mon.Width - r.Width
		if r.X < mon.X {
			r.X = mon.X
		}
		clamped = true
	}

	if r.Y < mon.Y {
		r.Y = mon.Y
		clamped = true
	} else if r.Y+r.Height > mon.Y+mon.Height {
		r.Y = mon.Y + mon.Height - r.Height
		if r.Y < mon.Y {
			r.Y = mon.Y
		}
		clamped = true
	}

	return r, clamped
}
