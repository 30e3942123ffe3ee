package igmpsnoop

import "testing"

// TestHardwareMirrorInvariant is property 2 from spec.md §8: reducing the
// sequence of switch_{add,del,clr}_portmap calls observed for a MAC always
// equals group.portmap | routers.portmap at each settled point.
func TestHardwareMirrorInvariant(t *testing.T) {
	c, driver, _, _ := newTestCache(testCacheConfig())

	c.AddMember(exampleGroupMAC, exampleListenerIP, 2, 260)
	assertHardwareMirror(t, c, driver, exampleGroupMAC)

	c.AddRouter(exampleRouterIP, 1, 260)
	assertHardwareMirror(t, c, driver, exampleGroupMAC)

	c.DelMember(exampleGroupMAC, exampleListenerIP, 2)
	assertHardwareMirror(t, c, driver, exampleGroupMAC)
}

func assertHardwareMirror(t *testing.T, c *Cache, driver *MockSwitchDriver, mac MAC) {
	t.Helper()
	idx, ok := c.lookupGroup(mac)
	if !ok {
		t.Fatalf("group %s not found", mac)
	}
	want := c.groups[idx].portmap.Clone()
	want.InPlaceUnion(c.routers.portmap)
	got := driver.HardwarePortmap(mac, c.cfg.PortMax)
	if !got.Equal(want) {
		t.Errorf("hardware mirror for %s = %s, want %s", mac, got.String(), want.String())
	}
}

// TestGroupCountMemberCountHostCount exercises the debug counters used by
// both the bounded-memory property and the status API.
func TestGroupCountMemberCountHostCount(t *testing.T) {
	c, driver, _, _ := newTestCache(testCacheConfig())
	if c.GroupCount() != 0 || c.MemberCount() != 0 || c.HostCount() != 0 {
		t.Fatal("fresh cache should report zero counts")
	}

	c.AddMember(exampleGroupMAC, exampleListenerIP, 2, 100)
	c.AddMember(exampleGroupMAC, exampleListenerIP2, 3, 100)
	driver.Ports[MAC{0xaa}] = 1
	c.GetPort(MAC{0xaa})

	if c.GroupCount() != 1 {
		t.Error("GroupCount() =", c.GroupCount(), "want 1")
	}
	if c.MemberCount() != 2 {
		t.Error("MemberCount() =", c.MemberCount(), "want 2")
	}
	if c.HostCount() != 1 {
		t.Error("HostCount() =", c.HostCount(), "want 1")
	}
}

func TestGroupPortmapUnknownGroup(t *testing.T) {
	c, _, _, _ := newTestCache(testCacheConfig())
	if c.GroupPortmap(exampleGroupMAC) != nil {
		t.Error("GroupPortmap on an unknown MAC should return nil")
	}
}
