// Package scrollsync keeps two independently-scrollable panes visually
// aligned by proportional position, in both directions, without feedback
// loops: propagation is one level only, and the target pane's echoed scroll
// events are swallowed during a short cooldown window.
package scrollsync

import "time"

// Pane identifies one side of the synchronized pair.
type Pane int

const (
	PaneEditor Pane = iota
	PanePreview
)

// Metrics is a pane's scroll geometry, in whatever unit the pane uses
// (pixels for a DOM-like surface, rows for a terminal viewport).
type Metrics struct {
	ScrollTop    float64
	ScrollHeight float64
	ClientHeight float64
}

// overflow is the scrollable range; zero or negative means the content fits.
func (m Metrics) overflow() float64 {
	return m.ScrollHeight - m.ClientHeight
}

// Fraction normalizes a pane's position to [0,1] of its scrollable range.
// A zero-height range reads as 0.
func Fraction(m Metrics) float64 {
	o := m.overflow()
	if o <= 0 {
		return 0
	}
	f := m.ScrollTop / o
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// TargetOffset converts a fraction back into a scroll offset for the target
// pane.
func TargetOffset(fraction float64, target Metrics) float64 {
	o := target.overflow()
	if o <= 0 {
		return 0
	}
	return fraction * o
}

const defaultCooldown = 50 * time.Millisecond

// Synchronizer is the IDLE → SYNCING → COOLDOWN machine. It is driven from
// the UI event loop and is not goroutine-safe.
type Synchronizer struct {
	cooldown time.Duration
	now      func() time.Time

	quietUntil time.Time
	lastTarget Pane
	hasTarget  bool

	suspendedUntil time.Time
}

func New() *Synchronizer {
	return &Synchronizer{cooldown: defaultCooldown, now: time.Now}
}

// NewWithClock injects the clock for tests.
func NewWithClock(cooldown time.Duration, now func() time.Time) *Synchronizer {
	return &Synchronizer{cooldown: cooldown, now: now}
}

// Propagate handles a scroll event arising in source. It returns the new
// offset for the opposite pane and whether it should be applied. It returns
// false when the event is an echo (the source was the target of a propagation
// still in cooldown), when synchronization is suspended, or when either pane
// has no overflow.
func (s *Synchronizer) Propagate(source Pane, src, dst Metrics) (float64, bool) {
	t := s.now()
	if t.Before(s.suspendedUntil) {
		return 0, false
	}
	if t.Before(s.quietUntil) && s.hasTarget && s.lastTarget == source {
		return 0, false
	}
	if src.overflow() <= 0 || dst.overflow() <= 0 {
		return 0, false
	}

	offset := TargetOffset(Fraction(src), dst)
	s.lastTarget = opposite(source)
	s.hasTarget = true
	s.quietUntil = t.Add(s.cooldown)
	return offset, true
}

// Suspend disables synchronization entirely for the given duration. The UI
// uses it while switching tabs, where both panes jump at once.
func (s *Synchronizer) Suspend(d time.Duration) {
	s.suspendedUntil = s.now().Add(d)
}

// SyncToLine maps a 1-based line position onto a target offset, used for
// goto-line. Single-line documents pin to the top.
func SyncToLine(line, totalLines int, target Metrics) float64 {
	if totalLines <= 1 {
		return 0
	}
	f := float64(line-1) / float64(totalLines-1)
	if f > 1 {
		f = 1
	}
	return TargetOffset(f, target)
}

func opposite(p Pane) Pane {
	if p == PaneEditor {
		return PanePreview
	}
	return PaneEditor
}
