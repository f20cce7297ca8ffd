package episode

import (
	"testing"
	"time"

	"github.com/1broseidon/dragsense/internal/event"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/pointer"
)

func originAt(x, y int) pointer.Sample {
	return pointer.Sample{X: x, Y: y, Button: pointer.ButtonLeft, Kind: pointer.Down, Time: time.Now()}
}

func TestOpenIssuesMonotonicIDs(t *testing.T) {
	tr := NewTracker()
	first := tr.Open(originAt(0, 0), nil)
	tr.Close()
	second := tr.Open(originAt(0, 0), nil)
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected episodes 1 then 2, got %d then %d", first.ID, second.ID)
	}
}

func TestOpenedCountsClosedEpisodes(t *testing.T) {
	tr := NewTracker()
	if got := tr.Opened(); got != 0 {
		t.Fatalf("fresh tracker should report 0 opened, got %d", got)
	}
	tr.Open(originAt(0, 0), nil)
	tr.Close()
	tr.Open(originAt(0, 0), nil)
	tr.Close()
	// The count survives the episodes; it must not drop back to zero
	// between drags.
	if got := tr.Opened(); got != 2 {
		t.Fatalf("expected 2 opened after two episodes, got %d", got)
	}
}

func TestOpenWhileActiveSupersedes(t *testing.T) {
	tr := NewTracker()
	old := tr.Open(originAt(0, 0), nil)
	cur := tr.Open(originAt(0, 0), nil)
	if cur.ID <= old.ID {
		t.Fatalf("new episode %d should supersede %d", cur.ID, old.ID)
	}
	if got := tr.Current(); got != cur {
		t.Fatalf("expected current episode %d, got %+v", cur.ID, got)
	}
}

func TestCloseWhenIdle(t *testing.T) {
	tr := NewTracker()
	if tr.Close() {
		t.Fatal("closing an idle tracker should report false")
	}
	tr.Open(originAt(0, 0), nil)
	if !tr.Close() {
		t.Fatal("closing an open episode should report true")
	}
	if tr.Current() != nil {
		t.Fatal("tracker should be idle after close")
	}
}

func TestTranslateRetagsCallback(t *testing.T) {
	tr := NewTracker()
	tr.Open(originAt(500, 500), nil)

	now := time.Now()
	ev, ok := tr.Translate(platform.DragCallback{
		Kind:     platform.Dropped,
		FilePath: "/tmp/report.pdf",
		X:        512,
		Y:        460,
		Time:     now,
		Window:   7,
	})
	if !ok {
		t.Fatal("expected translation while episode open")
	}
	if ev.EventType != event.DragDropped {
		t.Errorf("expected %q, got %q", event.DragDropped, ev.EventType)
	}
	if ev.FilePath != "/tmp/report.pdf" || ev.X != 512 || ev.Y != 460 {
		t.Errorf("payload mismatch: %+v", ev)
	}
	if ev.WindowID != "1.7" {
		t.Errorf(`expected window id "1.7", got %q`, ev.WindowID)
	}
	if ev.Timestamp != event.Timestamp(now) {
		t.Errorf("timestamp not carried over")
	}
}

func TestTranslateKinds(t *testing.T) {
	tests := []struct {
		kind platform.CallbackKind
		want string
	}{
		{platform.Hovered, event.DragHovered},
		{platform.Dropped, event.DragDropped},
		{platform.Cancelled, event.DragHoverCancelled},
	}
	for _, tt := range tests {
		tr := NewTracker()
		tr.Open(originAt(0, 0), nil)
		ev, ok := tr.Translate(platform.DragCallback{Kind: tt.kind, Window: 1})
		if !ok || ev.EventType != tt.want {
			t.Errorf("kind %v: expected %q, got %q/%v", tt.kind, tt.want, ev.EventType, ok)
		}
	}
}

func TestTranslateDropsWhenIdle(t *testing.T) {
	tr := NewTracker()
	if _, ok := tr.Translate(platform.DragCallback{Kind: platform.Dropped, Window: 1}); ok {
		t.Fatal("callbacks with no open episode must be dropped")
	}

	tr.Open(originAt(0, 0), nil)
	tr.Close()
	if _, ok := tr.Translate(platform.DragCallback{Kind: platform.Hovered, Window: 1}); ok {
		t.Fatal("callbacks after close must be dropped")
	}
}

func TestHoverActivatesEpisode(t *testing.T) {
	tr := NewTracker()
	ep := tr.Open(originAt(0, 0), nil)
	if ep.State != Armed {
		t.Fatalf("fresh episode should be Armed, got %v", ep.State)
	}
	tr.Translate(platform.DragCallback{Kind: platform.Hovered, Window: 1})
	if ep.State != Active {
		t.Fatalf("hovered episode should be Active, got %v", ep.State)
	}
}

func TestTranslateDuringClosing(t *testing.T) {
	tr := NewTracker()
	tr.Open(originAt(0, 0), nil)
	tr.BeginClose()
	// Late callbacks racing teardown still belong to the episode.
	if _, ok := tr.Translate(platform.DragCallback{Kind: platform.Dropped, Window: 2}); !ok {
		t.Fatal("callbacks during Closing must still translate")
	}
}
