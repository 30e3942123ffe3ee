package igmpsnoop

import "time"

// Clock returns the current tick count. Ticks advance monotonically at
// Config.TimerHz per second. Implementations must tolerate wraparound; all
// comparisons in this package go through timeBefore/timeAfter/timeAfterEq
// rather than raw integer comparison.
type Clock interface {
	Now() uint64
}

// WallClock is a Clock backed by the real wall clock, suitable for use by
// Agent in production. Ticks are derived from time.Since(start) scaled by hz.
type WallClock struct {
	start time.Time
	hz    uint64
}

// NewWallClock returns a Clock that ticks hz times per second starting now.
func NewWallClock(hz uint64) *WallClock {
	return &WallClock{start: time.Now(), hz: hz}
}

func (w *WallClock) Now() uint64 {
	elapsed := time.Since(w.start)
	return uint64(elapsed.Seconds() * float64(w.hz))
}

// timeBefore reports whether a precedes b, tolerating a single wraparound of
// the uint64 tick counter (the difference is interpreted as a signed value).
func timeBefore(a, b uint64) bool {
	return int64(a-b) < 0
}

// timeAfter reports whether a follows b.
func timeAfter(a, b uint64) bool {
	return timeBefore(b, a)
}

// timeAfterEq reports whether a is not before b.
func timeAfterEq(a, b uint64) bool {
	return !timeBefore(a, b)
}
