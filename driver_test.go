package igmpsnoop

import (
	"testing"

	"github.com/willf/bitset"
)

func TestLoggingDriverForwardsCalls(t *testing.T) {
	inner := NewMockSwitchDriver()
	d := NewLoggingDriver(inner)

	mask := bitset.New(8).Set(2)
	d.AddPortmap(exampleGroupMAC, mask)
	d.DelPortmap(exampleGroupMAC, mask)
	d.ClrPortmap(exampleGroupMAC)

	if len(inner.Calls) != 3 {
		t.Fatal("LoggingDriver should forward every call to the wrapped driver, got", inner.Calls)
	}
	if inner.Calls[0].Op != "add" || inner.Calls[1].Op != "del" || inner.Calls[2].Op != "clr" {
		t.Error("unexpected call order/ops:", inner.Calls)
	}
}

func TestRateLimitedDriverForwardsRegardlessOfBurst(t *testing.T) {
	inner := NewMockSwitchDriver()
	d := NewRateLimitedDriver(inner, 1, 1)

	mask := bitset.New(8).Set(1)
	for i := 0; i < 5; i++ {
		d.AddPortmap(exampleGroupMAC, mask)
	}

	if len(inner.Calls) != 5 {
		t.Error("RateLimitedDriver must still forward every call even past the burst limit, got", len(inner.Calls))
	}
}

func TestNoopSwitchDriver(t *testing.T) {
	var d NoopSwitchDriver
	if port := d.GetPort(exampleGroupMAC); port != -1 {
		t.Error("NoopSwitchDriver.GetPort =", port, "want -1")
	}
	// None of these should panic.
	d.AddPortmap(exampleGroupMAC, bitset.New(8))
	d.DelPortmap(exampleGroupMAC, bitset.New(8))
	d.ClrPortmap(exampleGroupMAC)
}
