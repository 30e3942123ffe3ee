package igmpsnoop

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	a := &Agent{}
	cfg, err := NewDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	a.cfg = cfg
	a.clock = NewWallClock(cfg.Cache.TimerHz)
	a.driver = NewMockSwitchDriver()
	a.cache = NewCache(cfg.Cache, a.driver, NewMockTimerDriver(), a.clock)
	a.work = make(chan func())
	a.stop = make(chan struct{})
	go a.loop()
	t.Cleanup(func() { close(a.stop) })
	return a
}

func TestStatusHandlerOK(t *testing.T) {
	a := newTestAgent(t)
	s := NewStatusServer(a, "")

	rw := httptest.NewRecorder()
	s.StatusHandler(rw, httptest.NewRequest("GET", "/status", nil))
	if rw.Code != 200 {
		t.Error("StatusHandler code =", rw.Code, "want 200")
	}
	if rw.Body.String() != "ok" {
		t.Error("StatusHandler body =", rw.Body.String(), "want ok")
	}
}

func TestSnapshotHandler(t *testing.T) {
	a := newTestAgent(t)
	a.AddMember(exampleGroupMAC, exampleListenerIP, 2, 260)
	a.AddRouter(exampleRouterIP, 1, 260)

	s := NewStatusServer(a, "")
	rw := httptest.NewRecorder()
	s.SnapshotHandler(rw, httptest.NewRequest("GET", "/snapshot", nil))
	if rw.Code != 200 {
		t.Fatal("SnapshotHandler code =", rw.Code)
	}

	var snap Snapshot
	if err := json.Unmarshal(rw.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.GroupCount != 1 {
		t.Error("GroupCount =", snap.GroupCount, "want 1")
	}
	if len(snap.Groups) != 1 || snap.Groups[0].MAC != exampleGroupMAC.String() {
		t.Fatal("unexpected groups in snapshot:", snap.Groups)
	}
	if !snap.Groups[0].Portmap[2] {
		t.Error("snapshot group portmap missing bit 2")
	}
	if !snap.RouterPortmap[1] {
		t.Error("snapshot router portmap missing bit 1")
	}
}
