// Package screen holds the monitor model and the coordinate normalizer
// that converts raw (logical) pointer coordinates into per-monitor
// physical pixels.
package screen

// Monitor is a read-only snapshot of one physical display. Origin and size
// are physical pixels; Scale is the monitor's HiDPI scale factor (1.0 on
// unscaled displays). Snapshots are re-queried at the start of each drag
// episode to tolerate hot-plug.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
	Scale  float64
}

// scale returns the effective scale factor, guarding against zero-valued
// snapshots coming from a misbehaving display server.
func (m Monitor) scale() float64 {
	if m.Scale <= 0 {
		return 1.0
	}
	return m.Scale
}

// logicalBounds returns the monitor rectangle in logical units, the
// coordinate space global pointer hooks report in.
func (m Monitor) logicalBounds() (x, y, w, h float64) {
	s := m.scale()
	return float64(m.X) / s, float64(m.Y) / s, float64(m.Width) / s, float64(m.Height) / s
}

// Contains reports whether the raw (logical) point lies on this monitor.
func (m Monitor) Contains(rawX, rawY float64) bool {
	x, y, w, h := m.logicalBounds()
	return rawX >= x && rawX < x+w && rawY >= y && rawY < y+h
}

// ContainsPhysical reports whether the physical-pixel point lies on this
// monitor.
func (m Monitor) ContainsPhysical(px, py int) bool {
	return px >= m.X && px < m.X+m.Width && py >= m.Y && py < m.Y+m.Height
}

// Locate returns the ID of the monitor containing the physical-pixel point,
// falling back to the nearest monitor by center distance. Returns -1 with no
// monitors.
func Locate(px, py int, monitors []Monitor) int {
	for _, m := range monitors {
		if m.ContainsPhysical(px, py) {
			return m.ID
		}
	}
	if len(monitors) == 0 {
		return -1
	}

	best := 0
	bestDist := -1
	for i, m := range monitors {
		dx := px - (m.X + m.Width/2)
		dy := py - (m.Y + m.Height/2)
		dist := dx*dx + dy*dy
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return monitors[best].ID
}
