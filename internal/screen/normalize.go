package screen

import "math"

// Normalize converts a raw (logical) pointer position into physical pixels
// on the monitor that contains it, returning the physical coordinates and
// the monitor ID.
//
// If no monitor contains the point — stale coordinates around a display
// reconfiguration — the point is clamped to the edge of the nearest
// monitor instead of failing, so callers never see a hole in the stream.
// With no monitors at all, the raw coordinates are rounded as-is and the
// monitor ID is -1.
//
// Mixed scale factors make neighboring monitors' logical rectangles
// overlap, so a raw point can scale into more than one monitor's physical
// bounds. The containing monitor with the highest scale wins; monitors
// with equal scale have disjoint physical rectangles and cannot collide.
func Normalize(rawX, rawY float64, monitors []Monitor) (physX, physY, monitorID int) {
	best := -1
	for i, m := range monitors {
		if !m.Contains(rawX, rawY) {
			continue
		}
		if best < 0 || m.scale() > monitors[best].scale() {
			best = i
		}
	}
	if best >= 0 {
		m := monitors[best]
		s := m.scale()
		return int(math.Round(rawX * s)), int(math.Round(rawY * s)), m.ID
	}

	if len(monitors) == 0 {
		return int(math.Round(rawX)), int(math.Round(rawY)), -1
	}

	// Clamp to the nearest monitor edge.
	nearest := 0
	bestDist := math.Inf(1)
	var bestX, bestY float64
	for i, m := range monitors {
		cx, cy := clampToMonitor(rawX, rawY, m)
		dx, dy := rawX-cx, rawY-cy
		dist := dx*dx + dy*dy
		if dist < bestDist {
			nearest = i
			bestDist = dist
			bestX, bestY = cx, cy
		}
	}

	m := monitors[nearest]
	s := m.scale()
	return int(math.Round(bestX * s)), int(math.Round(bestY * s)), m.ID
}

// clampToMonitor clamps a logical point into the monitor's logical bounds.
// The right/bottom edges are exclusive, so the clamped point lands on the
// last addressable logical unit.
func clampToMonitor(rawX, rawY float64, m Monitor) (float64, float64) {
	x, y, w, h := m.logicalBounds()

	cx := rawX
	if cx < x {
		cx = x
	}
	if cx > x+w-1 {
		cx = x + w - 1
	}

	cy := rawY
	if cy < y {
		cy = y
	}
	if cy > y+h-1 {
		cy = y + h - 1
	}

	return cx, cy
}
