package grid

import (
	"testing"

	"github.com/1broseidon/dragsense/internal/screen"
)

var fullHD = screen.Monitor{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080, Scale: 1.0}

func TestPlanFrame4Centered(t *testing.T) {
	specs := Plan(500, 500, fullHD, Frame4())
	if len(specs) != 4 {
		t.Fatalf("expected 4 specs, got %d", len(specs))
	}

	want := []Rect{
		{X: 460, Y: 435, Width: 80, Height: 15}, // top
		{X: 460, Y: 550, Width: 80, Height: 15}, // bottom
		{X: 435, Y: 460, Width: 15, Height: 80}, // left
		{X: 550, Y: 460, Width: 15, Height: 80}, // right
	}
	for i, spec := range specs {
		if spec.Rect != want[i] {
			t.Errorf("spec %d: expected %+v, got %+v", i, want[i], spec.Rect)
		}
		if spec.Clamped {
			t.Errorf("spec %d: unexpectedly clamped", i)
		}
	}
}

func TestPlanCountIsConstant(t *testing.T) {
	centers := [][2]int{
		{0, 0}, {1919, 1079}, {0, 1079}, {1919, 0}, {960, 540}, {-100, -100},
	}
	for _, layout := range []Layout{Frame4(), Sparse24()} {
		for _, c := range centers {
			specs := Plan(c[0], c[1], fullHD, layout)
			if len(specs) != layout.Count() {
				t.Fatalf("layout %s center %v: expected %d specs, got %d",
					layout.Name, c, layout.Count(), len(specs))
			}
		}
	}
}

func TestPlanAllRectsWithinBounds(t *testing.T) {
	centers := [][2]int{
		{0, 0}, {1919, 1079}, {5, 1075}, {1915, 3}, {960, 540},
	}
	for _, layout := range []Layout{Frame4(), Sparse24()} {
		for _, c := range centers {
			for _, spec := range Plan(c[0], c[1], fullHD, layout) {
				r := spec.Rect
				if r.X < fullHD.X || r.Y < fullHD.Y ||
					r.X+r.Width > fullHD.X+fullHD.Width ||
					r.Y+r.Height > fullHD.Y+fullHD.Height {
					t.Fatalf("layout %s center %v slot %+v: rect %+v escapes monitor",
						layout.Name, c, spec.Slot, r)
				}
			}
		}
	}
}

func TestPlanCornerMarksClamped(t *testing.T) {
	specs := Plan(0, 0, fullHD, Frame4())
	clamped := 0
	for _, spec := range specs {
		if spec.Clamped {
			clamped++
		}
	}
	if clamped != 4 {
		t.Fatalf("expected all 4 strips clamped at the corner, got %d", clamped)
	}
}

func TestPlanRespectsMonitorOrigin(t *testing.T) {
	// Secondary monitor to the right; a center near its left edge must clamp
	// against that monitor's origin, not against x=0.
	second := screen.Monitor{ID: 1, X: 1920, Y: 0, Width: 1280, Height: 1024, Scale: 1.0}
	for _, spec := range Plan(1925, 500, second, Frame4()) {
		if spec.Rect.X < second.X {
			t.Fatalf("slot %+v: rect %+v crossed onto the previous monitor", spec.Slot, spec.Rect)
		}
	}
}

func TestSparse24OmitsCenterCell(t *testing.T) {
	layout := Sparse24()
	if layout.Count() != 24 {
		t.Fatalf("expected 24 windows, got %d", layout.Count())
	}
	for _, spec := range Plan(960, 540, fullHD, layout) {
		if spec.Slot.Row == 0 && spec.Slot.Col == 0 {
			t.Fatal("center cell must be omitted")
		}
	}
}

func TestByName(t *testing.T) {
	if l, err := ByName(""); err != nil || l.Name != "frame4" {
		t.Fatalf("empty name should default to frame4, got %v/%v", l.Name, err)
	}
	if l, err := ByName("sparse24"); err != nil || l.Kind != KindSparse {
		t.Fatalf("expected sparse24, got %v/%v", l.Name, err)
	}
	if _, err := ByName("spiral"); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}
