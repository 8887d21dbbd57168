package scrollsync

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestFractionClampsAndHandlesNoOverflow(t *testing.T) {
	if f := Fraction(Metrics{ScrollTop: 50, ScrollHeight: 100, ClientHeight: 100}); f != 0 {
		t.Fatalf("no-overflow fraction = %v, want 0", f)
	}
	if f := Fraction(Metrics{ScrollTop: -10, ScrollHeight: 300, ClientHeight: 100}); f != 0 {
		t.Fatalf("negative offset fraction = %v, want 0", f)
	}
	if f := Fraction(Metrics{ScrollTop: 900, ScrollHeight: 300, ClientHeight: 100}); f != 1 {
		t.Fatalf("overscroll fraction = %v, want 1", f)
	}
}

// Round-trip: fraction -> target offset -> fraction reproduces the input
// within rounding tolerance whenever both panes have scrollable range.
func TestFractionRoundTrip(t *testing.T) {
	src := Metrics{ScrollHeight: 1000, ClientHeight: 200}
	dst := Metrics{ScrollHeight: 4321, ClientHeight: 333}
	for _, f := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.999, 1} {
		src.ScrollTop = f * src.overflow()
		offset := TargetOffset(Fraction(src), dst)
		dst.ScrollTop = offset
		back := Fraction(dst)
		if math.Abs(back-f) > 1e-9 {
			t.Fatalf("round trip of %v came back as %v", f, back)
		}
	}
}

func TestPropagateComputesProportionalOffset(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := NewWithClock(50*time.Millisecond, clk.now)

	src := Metrics{ScrollTop: 400, ScrollHeight: 1000, ClientHeight: 200} // fraction 0.5
	dst := Metrics{ScrollHeight: 2100, ClientHeight: 100}
	off, ok := s.Propagate(PaneEditor, src, dst)
	if !ok {
		t.Fatalf("propagation refused")
	}
	if math.Abs(off-1000) > 1e-9 {
		t.Fatalf("offset = %v, want 1000", off)
	}
}

func TestEchoSuppressedDuringCooldown(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := NewWithClock(50*time.Millisecond, clk.now)

	src := Metrics{ScrollTop: 100, ScrollHeight: 1000, ClientHeight: 200}
	dst := Metrics{ScrollHeight: 1000, ClientHeight: 200}
	if _, ok := s.Propagate(PaneEditor, src, dst); !ok {
		t.Fatalf("initial propagation refused")
	}

	// The echo arrives from the preview while the cooldown runs: swallowed.
	if _, ok := s.Propagate(PanePreview, dst, src); ok {
		t.Fatalf("echo from target pane must be ignored during cooldown")
	}

	// A genuine follow-up from the editor within the window is still allowed.
	clk.advance(10 * time.Millisecond)
	if _, ok := s.Propagate(PaneEditor, src, dst); !ok {
		t.Fatalf("source pane should keep driving during cooldown")
	}

	// After the cooldown, the preview may drive again.
	clk.advance(60 * time.Millisecond)
	if _, ok := s.Propagate(PanePreview, dst, src); !ok {
		t.Fatalf("propagation should resume after cooldown")
	}
}

func TestNoOpWithoutOverflow(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := NewWithClock(50*time.Millisecond, clk.now)

	short := Metrics{ScrollHeight: 100, ClientHeight: 200}
	tall := Metrics{ScrollTop: 10, ScrollHeight: 1000, ClientHeight: 200}
	if _, ok := s.Propagate(PaneEditor, short, tall); ok {
		t.Fatalf("source without overflow must not propagate")
	}
	if _, ok := s.Propagate(PaneEditor, tall, short); ok {
		t.Fatalf("target without overflow must not receive propagation")
	}
}

func TestSuspendBlocksBothDirections(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := NewWithClock(50*time.Millisecond, clk.now)
	s.Suspend(100 * time.Millisecond)

	m := Metrics{ScrollTop: 10, ScrollHeight: 1000, ClientHeight: 200}
	if _, ok := s.Propagate(PaneEditor, m, m); ok {
		t.Fatalf("suspended synchronizer must not propagate")
	}
	clk.advance(150 * time.Millisecond)
	if _, ok := s.Propagate(PanePreview, m, m); !ok {
		t.Fatalf("suspension should lapse")
	}
}

func TestSyncToLine(t *testing.T) {
	target := Metrics{ScrollHeight: 1100, ClientHeight: 100}
	if off := SyncToLine(1, 100, target); off != 0 {
		t.Fatalf("first line offset = %v", off)
	}
	if off := SyncToLine(100, 100, target); math.Abs(off-1000) > 1e-9 {
		t.Fatalf("last line offset = %v, want 1000", off)
	}
	if off := SyncToLine(5, 1, target); off != 0 {
		t.Fatalf("single-line document offset = %v, want 0", off)
	}
}
