// Mock SwitchDriver/TimerDriver used in tests, mirroring the shape of the
// teacher's MockClient in mock.go.
package igmpsnoop

import "github.com/willf/bitset"

// DriverCall records one call made to a MockSwitchDriver, for assertions
// about what was pushed to hardware.
type DriverCall struct {
	Op   string // "add", "del", or "clr"
	MAC  MAC
	Mask *bitset.BitSet // nil for "clr"
}

// MockSwitchDriver is a SwitchDriver test double that records every call
// and resolves GetPort from a preset map.
type MockSwitchDriver struct {
	Ports map[MAC]int
	Calls []DriverCall

	getPortCalls map[MAC]int
}

// NewMockSwitchDriver returns a MockSwitchDriver with no preset ports.
func NewMockSwitchDriver() *MockSwitchDriver {
	return &MockSwitchDriver{Ports: make(map[MAC]int), getPortCalls: make(map[MAC]int)}
}

func (m *MockSwitchDriver) GetPort(ea MAC) int {
	m.getPortCalls[ea]++
	if port, ok := m.Ports[ea]; ok {
		return port
	}
	return -1
}

func (m *MockSwitchDriver) AddPortmap(ea MAC, mask *bitset.BitSet) {
	m.Calls = append(m.Calls, DriverCall{Op: "add", MAC: ea, Mask: mask.Clone()})
}

func (m *MockSwitchDriver) DelPortmap(ea MAC, mask *bitset.BitSet) {
	m.Calls = append(m.Calls, DriverCall{Op: "del", MAC: ea, Mask: mask.Clone()})
}

func (m *MockSwitchDriver) ClrPortmap(ea MAC) {
	m.Calls = append(m.Calls, DriverCall{Op: "clr", MAC: ea})
}

// HardwarePortmap reduces m.Calls into the final asserted portmap for ea,
// for verifying the hardware mirror invariant.
func (m *MockSwitchDriver) HardwarePortmap(ea MAC, portMax int) *bitset.BitSet {
	result := bitset.New(uint(portMax + 1))
	for _, call := range m.Calls {
		if call.MAC != ea {
			continue
		}
		switch call.Op {
		case "add":
			result.InPlaceUnion(call.Mask)
		case "del":
			result.InPlaceDifference(call.Mask)
		case "clr":
			result.ClearAll()
		}
	}
	return result
}

// ManualClock is a Clock test double whose tick count only advances when a
// test tells it to, keeping scenario tests deterministic.
type ManualClock struct {
	tick uint64
}

func (c *ManualClock) Now() uint64 {
	return c.tick
}

// Advance moves the clock forward by delta ticks.
func (c *ManualClock) Advance(delta uint64) {
	c.tick += delta
}

// Set pins the clock to an absolute tick value.
func (c *ManualClock) Set(tick uint64) {
	c.tick = tick
}

// mockTimer is a Timer that never fires on its own; tests fire it
// explicitly via MockTimerDriver.Fire.
type mockTimer struct {
	fn      func()
	pending bool
	deadline uint64
}

func (t *mockTimer) Mod(deadline uint64) {
	t.deadline = deadline
	t.pending = true
}

func (t *mockTimer) Cancel() {
	t.pending = false
}

func (t *mockTimer) Pending() bool {
	return t.pending
}

// MockTimerDriver is a TimerDriver test double: timers are only fired when
// the test explicitly calls Fire, never on a background goroutine. This
// keeps test execution deterministic and single threaded, matching the
// cache's own concurrency model.
type MockTimerDriver struct {
	timers []*mockTimer
}

func NewMockTimerDriver() *MockTimerDriver {
	return &MockTimerDriver{}
}

func (d *MockTimerDriver) NewTimer(fn func()) Timer {
	t := &mockTimer{fn: fn}
	d.timers = append(d.timers, t)
	return t
}

// Fire invokes every pending timer's callback whose deadline is <= now, in
// the order they were created.
func (d *MockTimerDriver) Fire(now uint64) {
	for _, t := range d.timers {
		if t.pending && timeAfterEq(now, t.deadline) {
			t.pending = false
			t.fn()
		}
	}
}

// Pending reports whether any managed timer is currently armed.
func (d *MockTimerDriver) Pending() bool {
	for _, t := range d.timers {
		if t.pending {
			return true
		}
	}
	return false
}
