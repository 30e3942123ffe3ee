package igmpsnoop

import (
	"log"
	"sync"
	"time"

	"github.com/willf/bitset"
	"golang.org/x/time/rate"
)

// SwitchDriver is the hardware capability the cache pushes forwarding state
// to. Calls must be synchronous and return promptly; the cache calls them
// from inside its single event loop and blocks on the result.
type SwitchDriver interface {
	// GetPort resolves the current switch port for a host MAC, or -1 if
	// unknown.
	GetPort(ea MAC) int

	// AddPortmap OR's mask into the forwarding entry for ea.
	AddPortmap(ea MAC, mask *bitset.BitSet)

	// DelPortmap clears the bits in mask from the forwarding entry for ea.
	DelPortmap(ea MAC, mask *bitset.BitSet)

	// ClrPortmap removes the forwarding entry for ea entirely.
	ClrPortmap(ea MAC)
}

// Timer is a single outstanding deadline, rearmed with Mod. It mirrors the
// kernel timer_list the original cache was built around: Mod both arms an
// idle timer and reschedules a pending one.
type Timer interface {
	// Mod arms the timer to fire at the given deadline (a tick count),
	// replacing any previously scheduled deadline.
	Mod(deadline uint64)
	// Cancel disarms the timer. A no-op if not pending.
	Cancel()
	// Pending reports whether the timer is currently armed.
	Pending() bool
}

// TimerDriver constructs Timers bound to a callback. fn is invoked on
// whatever goroutine the driver chooses; Agent is responsible for
// serializing it back onto the cache's single event loop.
type TimerDriver interface {
	NewTimer(fn func()) Timer
}

// wallTimer is a Timer backed by time.AfterFunc, translating tick deadlines
// to real delays via a WallClock.
type wallTimer struct {
	clock *WallClock
	fn    func()

	mu sync.Mutex
	t  *time.Timer
}

func (w *wallTimer) Mod(deadline uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	var delayTicks uint64
	if timeAfter(deadline, now) {
		delayTicks = deadline - now
	}
	delay := time.Duration(float64(delayTicks) / float64(w.clock.hz) * float64(time.Second))

	if w.t != nil {
		w.t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		w.mu.Lock()
		if w.t == t {
			w.t = nil
		}
		w.mu.Unlock()
		w.fn()
	})
	w.t = t
}

func (w *wallTimer) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.t != nil {
		w.t.Stop()
		w.t = nil
	}
}

func (w *wallTimer) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.t != nil
}

// WallTimerDriver is the production TimerDriver, scheduling real time.Timers
// against a WallClock.
type WallTimerDriver struct {
	clock *WallClock
}

// NewWallTimerDriver returns a TimerDriver sharing the same tick base as
// clock, so deadlines computed against clock.Now() translate correctly.
func NewWallTimerDriver(clock *WallClock) *WallTimerDriver {
	return &WallTimerDriver{clock: clock}
}

func (d *WallTimerDriver) NewTimer(fn func()) Timer {
	return &wallTimer{clock: d.clock, fn: fn}
}

// serializingTimerDriver wraps a TimerDriver so every fired callback is
// routed through serialize before running, rather than on whatever
// goroutine the underlying driver fires from (time.AfterFunc's own). Agent
// uses this to keep timer-driven Cache mutations on its single event loop
// goroutine alongside API- and CLI-triggered ones.
type serializingTimerDriver struct {
	next      TimerDriver
	serialize func(func())
}

func (d *serializingTimerDriver) NewTimer(fn func()) Timer {
	return d.next.NewTimer(func() { d.serialize(fn) })
}

// RateLimitedDriver wraps a SwitchDriver and flags bursts of hardware
// mutation calls without ever blocking the caller — the cache's event loop
// must return promptly, so unlike the teacher's TestRunner.run (which blocks
// on rl.Wait), this only uses Allow() and logs when the burst rate is
// exceeded, then forwards the call regardless.
type RateLimitedDriver struct {
	SwitchDriver
	rl *rate.Limiter
}

// NewRateLimitedDriver wraps next with a limiter allowing callsPerSecond
// calls per second to AddPortmap/DelPortmap, with bursts of up to burst
// calls, before logging throttle warnings.
func NewRateLimitedDriver(next SwitchDriver, callsPerSecond float64, burst int) *RateLimitedDriver {
	return &RateLimitedDriver{
		SwitchDriver: next,
		rl:           rate.NewLimiter(rate.Limit(callsPerSecond), burst),
	}
}

func (d *RateLimitedDriver) AddPortmap(ea MAC, mask *bitset.BitSet) {
	if !d.rl.Allow() {
		log.Printf("igmpsnoop: switch driver call burst exceeded limit for %s", ea)
	}
	d.SwitchDriver.AddPortmap(ea, mask)
}

func (d *RateLimitedDriver) DelPortmap(ea MAC, mask *bitset.BitSet) {
	if !d.rl.Allow() {
		log.Printf("igmpsnoop: switch driver call burst exceeded limit for %s", ea)
	}
	d.SwitchDriver.DelPortmap(ea, mask)
}

// LoggingDriver wraps a SwitchDriver and logs each AddPortmap, DelPortmap
// and ClrPortmap call, for visibility into what hardware mutations the cache
// is issuing. GetPort is passed through without logging.
type LoggingDriver struct {
	SwitchDriver
}

func NewLoggingDriver(next SwitchDriver) *LoggingDriver {
	return &LoggingDriver{SwitchDriver: next}
}

func (d *LoggingDriver) AddPortmap(ea MAC, mask *bitset.BitSet) {
	log.Printf("igmpsnoop: switch_add_portmap(%s, %s)", ea, mask.String())
	d.SwitchDriver.AddPortmap(ea, mask)
}

func (d *LoggingDriver) DelPortmap(ea MAC, mask *bitset.BitSet) {
	log.Printf("igmpsnoop: switch_del_portmap(%s, %s)", ea, mask.String())
	d.SwitchDriver.DelPortmap(ea, mask)
}

func (d *LoggingDriver) ClrPortmap(ea MAC) {
	log.Printf("igmpsnoop: switch_clr_portmap(%s)", ea)
	d.SwitchDriver.ClrPortmap(ea)
}

// NoopSwitchDriver is a SwitchDriver that performs no hardware mutation and
// never resolves a port. It exists so cmd/snoopd has something concrete to
// wire up out of the box on a host with no real switch control plane
// attached; real deployments should supply their own SwitchDriver.
type NoopSwitchDriver struct{}

func (NoopSwitchDriver) GetPort(ea MAC) int                     { return -1 }
func (NoopSwitchDriver) AddPortmap(ea MAC, mask *bitset.BitSet) {}
func (NoopSwitchDriver) DelPortmap(ea MAC, mask *bitset.BitSet) {}
func (NoopSwitchDriver) ClrPortmap(ea MAC)                      {}
