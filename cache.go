package igmpsnoop

// Cache is the IGMP snooping membership cache: the host port cache, the
// multicast group directory, the member pool, and the router singleton,
// plus the two timers that drive their expiry. Every method here runs
// against a single logical thread of control; Cache holds no internal
// locking and none of its state may be mutated concurrently (see Agent for
// the real world serialization wrapper).
type Cache struct {
	cfg    CacheConfig
	driver SwitchDriver
	clock  Clock

	groups    []groupEntry
	groupHash []uint32

	members        []memberEntry
	memberFreeHead uint32

	hosts    []hostEntry
	hostHash []uint32

	routers groupEntry

	groupTimer         Timer
	groupTimerDeadline uint64
	groupTimerArmed    bool

	routerTimer         Timer
	routerTimerDeadline uint64
	routerTimerArmed    bool
}

// NewCache allocates a Cache sized per cfg, bound to driver for hardware
// mutation, timers for scheduling group/router expiry, and clock for tick
// comparisons. This is init_cache.
func NewCache(cfg CacheConfig, driver SwitchDriver, timers TimerDriver, clock Clock) *Cache {
	c := &Cache{
		cfg:            cfg,
		driver:         driver,
		clock:          clock,
		groups:         make([]groupEntry, 0, cfg.GroupPoolSize),
		groupHash:      make([]uint32, cfg.HashSize),
		members:        make([]memberEntry, 0, cfg.MemberPoolSize),
		memberFreeHead: noIndex,
		hosts:          make([]hostEntry, 0, cfg.HostPoolSize),
		hostHash:       make([]uint32, cfg.HashSize),
		routers:        newGroupEntry(cfg),
	}
	for i := range c.groupHash {
		c.groupHash[i] = noIndex
	}
	for i := range c.hostHash {
		c.hostHash[i] = noIndex
	}
	c.groupTimer = timers.NewTimer(c.groupTimerFired)
	c.routerTimer = timers.NewTimer(c.routerTimerFired)
	return c
}

// GroupCount returns the number of pooled groups currently in use
// (including empty, reclaimable ones), for the debug API and tests.
func (c *Cache) GroupCount() int {
	return len(c.groups)
}

// MemberCount returns the number of live (allocated, not-free) member
// entries across all groups and the router singleton.
func (c *Cache) MemberCount() int {
	return len(c.members) - freeListLen(c.members, c.memberFreeHead)
}

// HostCount returns the number of pooled host cache entries currently in
// use.
func (c *Cache) HostCount() int {
	return len(c.hosts)
}

// RouterPortmap returns a snapshot of the router group's portmap.
func (c *Cache) RouterPortmap() []bool {
	return bitsetSnapshot(c.routers.portmap, c.cfg.PortMax)
}

// GroupPortmap returns a snapshot of maddr's portmap, or nil if maddr is
// not a known group.
func (c *Cache) GroupPortmap(maddr MAC) []bool {
	idx, ok := c.lookupGroup(maddr)
	if !ok {
		return nil
	}
	return bitsetSnapshot(c.groups[idx].portmap, c.cfg.PortMax)
}

func freeListLen(members []memberEntry, head uint32) int {
	n := 0
	for idx := head; idx != noIndex; idx = members[idx].next {
		n++
	}
	return n
}
