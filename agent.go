// Agent reads a YAML configuration, wires a Cache up to a real SwitchDriver
// and wall clock, and serves a debug HTTP API over its state.
package igmpsnoop

import (
	"flag"
	"log"
	"net"
)

var configFile = flag.String("igmpsnoop.config", "", "Config file to load from")

// Agent owns a Cache plus the wiring (driver, timers, debug API) around it,
// and funnels every call to the Cache through a single goroutine so the
// Cache itself never needs internal locking, matching its single threaded
// cooperative concurrency model even though timer callbacks and API
// requests arrive from different goroutines.
type Agent struct {
	cfg    *Config
	cache  *Cache
	driver SwitchDriver
	clock  *WallClock
	api    *StatusServer

	work chan func()
	stop chan struct{}
}

// LoadConfig loads the agent's configuration from the CLI flag if provided,
// otherwise the default.
func (a *Agent) LoadConfig() {
	log.Println("Loading agent config")
	if *configFile != "" {
		cfg, err := LoadConfigFromPath(*configFile)
		if err != nil {
			log.Fatal("Failed to load configuration:", err)
		}
		a.cfg = cfg
		return
	}
	log.Println("No igmpsnoop.config provided; loading default config")
	cfg, err := NewDefaultConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	a.cfg = cfg
}

// SetupCache creates the Cache and its driver/timer/clock wiring based on
// the loaded config. driver is the real hardware SwitchDriver to use;
// passing nil is only valid in tests that replace a.cache directly.
func (a *Agent) SetupCache(driver SwitchDriver) {
	log.Println("Setting up cache")
	a.clock = NewWallClock(a.cfg.Cache.TimerHz)
	wrapped := NewRateLimitedDriver(
		NewLoggingDriver(driver),
		a.cfg.RateLimit.CPS,
		a.cfg.RateLimit.Burst,
	)
	a.driver = wrapped
	timerDriver := &serializingTimerDriver{
		next:      NewWallTimerDriver(a.clock),
		serialize: a.Do,
	}
	a.cache = NewCache(a.cfg.Cache, wrapped, timerDriver, a.clock)
}

// SetupAPI creates the debug HTTP server based on the config.
func (a *Agent) SetupAPI() {
	log.Println("Setting up debug API")
	a.api = NewStatusServer(a, a.cfg.Debug.Bind)
}

// Setup is a general wrapper around all of the other Setup* functions.
func (a *Agent) Setup(driver SwitchDriver) {
	log.Println("Setting up agent")
	a.work = make(chan func())
	a.stop = make(chan struct{})
	a.LoadConfig()
	a.SetupCache(driver)
	a.SetupAPI()
	log.Println("Agent setup complete")
}

// Reload rereads the config and rebuilds the cache in place, discarding all
// existing membership state. The driver is kept.
func (a *Agent) Reload() {
	log.Println("Reloading agent")
	a.LoadConfig()
	a.Do(func() {
		a.SetupCache(a.driver)
	})
	log.Println("Agent reload complete")
}

// Run starts the agent's single event loop goroutine and the debug API.
func (a *Agent) Run() {
	log.Println("Starting agent")
	go a.loop()
	a.api.Run()
	log.Println("Agent running")
}

// loop is the single goroutine every Cache mutation is serialized through.
func (a *Agent) loop() {
	for {
		select {
		case fn := <-a.work:
			fn()
		case <-a.stop:
			return
		}
	}
}

// Stop signals the event loop and debug API to stop.
func (a *Agent) Stop() {
	log.Println("Stopping agent")
	close(a.stop)
	a.api.Stop()
	log.Println("Agent stopped")
}

// Do runs fn on the agent's event loop and blocks until it completes. All
// Cache access from outside the loop goroutine (API handlers, the CLI,
// timer callbacks) must go through Do.
func (a *Agent) Do(fn func()) {
	done := make(chan struct{})
	a.work <- func() {
		fn()
		close(done)
	}
	<-done
}

// AddMember is the Do-wrapped, concurrency safe entry point for
// Cache.AddMember.
func (a *Agent) AddMember(maddr MAC, ip net.IP, port int, timeout uint64) int64 {
	var result int64
	a.Do(func() { result = a.cache.AddMember(maddr, ip, port, timeout) })
	return result
}

// DelMember is the Do-wrapped, concurrency safe entry point for
// Cache.DelMember.
func (a *Agent) DelMember(maddr MAC, ip net.IP, port int) int64 {
	var result int64
	a.Do(func() { result = a.cache.DelMember(maddr, ip, port) })
	return result
}

// AddRouter is the Do-wrapped, concurrency safe entry point for
// Cache.AddRouter.
func (a *Agent) AddRouter(ip net.IP, port int, timeout uint64) int64 {
	var result int64
	a.Do(func() { result = a.cache.AddRouter(ip, port, timeout) })
	return result
}

// ExpireMembers is the Do-wrapped, concurrency safe entry point for
// Cache.ExpireMembers.
func (a *Agent) ExpireMembers(maddr *MAC, timeout uint64) int64 {
	var result int64
	a.Do(func() { result = a.cache.ExpireMembers(maddr, timeout) })
	return result
}

// GetPort is the Do-wrapped, concurrency safe entry point for
// Cache.GetPort.
func (a *Agent) GetPort(ea MAC) int64 {
	var result int64
	a.Do(func() { result = a.cache.GetPort(ea) })
	return result
}

// PurgeCache is the Do-wrapped, concurrency safe entry point for
// Cache.PurgeCache.
func (a *Agent) PurgeCache() {
	a.Do(func() { a.cache.PurgeCache() })
}
