package igmpsnoop

import (
	"log"
	"net"

	"github.com/willf/bitset"
)

// groupEntry is one multicast group: a MAC key, a portmap summarizing which
// ports have at least one live member, and the per-port member lists that
// portmap is derived from. The router singleton (Cache.routers) reuses this
// same shape; only groups that are hashed by MAC and pooled use hashNext.
type groupEntry struct {
	mac       MAC
	portmap   *bitset.BitSet
	expiresAt uint64
	heads     []uint32 // per-port member list heads, length PortMax+1

	hashNext uint32
}

func newGroupEntry(cfg CacheConfig) groupEntry {
	heads := make([]uint32, cfg.PortMax+1)
	for i := range heads {
		heads[i] = noIndex
	}
	return groupEntry{
		portmap:  bitset.New(uint(cfg.PortMax + 1)),
		heads:    heads,
		hashNext: noIndex,
	}
}

// resetGroupEntry restores g to its just-allocated state without
// reallocating its portmap/heads backing storage.
func resetGroupEntry(g *groupEntry, cfg CacheConfig) {
	g.mac = MAC{}
	g.portmap.ClearAll()
	for i := range g.heads {
		g.heads[i] = noIndex
	}
	g.expiresAt = 0
	g.hashNext = noIndex
}

// recomputePortmap rebuilds g.portmap from g.heads: bit i is set iff port i
// has at least one live member.
func (c *Cache) recomputePortmap(g *groupEntry) {
	g.portmap.ClearAll()
	for port, head := range g.heads {
		if head != noIndex {
			g.portmap.Set(uint(port))
		}
	}
}

// turnedOn returns the bits present in next but not prev.
func turnedOn(prev, next *bitset.BitSet) *bitset.BitSet {
	return next.Difference(prev)
}

// turnedOff returns the bits present in prev but not next.
func turnedOff(prev, next *bitset.BitSet) *bitset.BitSet {
	return prev.Difference(next)
}

// bitsetToInt64 folds the low 63 bits of b into an int64 portmap delta, the
// representation returned to callers of AddMember/DelMember/AddRouter.
func bitsetToInt64(b *bitset.BitSet) int64 {
	var v int64
	for i := uint(0); i < 63 && i < b.Len(); i++ {
		if b.Test(i) {
			v |= 1 << i
		}
	}
	return v
}

// lookupGroup finds the pooled group currently hashed under mac.
func (c *Cache) lookupGroup(mac MAC) (uint32, bool) {
	bucket := etherHash(mac, len(c.groupHash))
	idx := c.groupHash[bucket]
	for idx != noIndex {
		if c.groups[idx].mac == mac {
			return idx, true
		}
		idx = c.groups[idx].hashNext
	}
	return noIndex, false
}

func (c *Cache) insertGroupHash(idx uint32) {
	bucket := etherHash(c.groups[idx].mac, len(c.groupHash))
	c.groups[idx].hashNext = c.groupHash[bucket]
	c.groupHash[bucket] = idx
}

// unlinkGroupHash removes idx from the bucket chain for its current mac.
func (c *Cache) unlinkGroupHash(idx uint32) {
	bucket := etherHash(c.groups[idx].mac, len(c.groupHash))
	cur := c.groupHash[bucket]
	if cur == idx {
		c.groupHash[bucket] = c.groups[idx].hashNext
		return
	}
	for cur != noIndex {
		next := c.groups[cur].hashNext
		if next == idx {
			c.groups[cur].hashNext = c.groups[idx].hashNext
			return
		}
		cur = next
	}
}

// getOrAllocGroup finds the group hashed under mac, or allocates one: first
// by growing the pool while under GroupPoolSize, then by reclaiming the
// first pooled group with an empty portmap (clearing its hardware state and
// unhashing it from its old mac first). Returns ok=false if the pool is
// full and nothing is reclaimable.
func (c *Cache) getOrAllocGroup(mac MAC) (*groupEntry, bool) {
	if idx, ok := c.lookupGroup(mac); ok {
		return &c.groups[idx], true
	}

	var idx uint32
	if len(c.groups) < cap(c.groups) {
		c.groups = append(c.groups, newGroupEntry(c.cfg))
		idx = uint32(len(c.groups) - 1)
	} else {
		found := false
		for i := range c.groups {
			if c.groups[i].portmap.None() {
				idx = uint32(i)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
		old := &c.groups[idx]
		c.driver.ClrPortmap(old.mac)
		c.unlinkGroupHash(idx)
		resetGroupEntry(old, c.cfg)
	}

	c.groups[idx].mac = mac
	c.insertGroupHash(idx)
	return &c.groups[idx], true
}

// consumeGroupMembers drains every member from every port list of g back to
// the free list and clears g's portmap, leaving g itself in the pool
// (still hashed under its mac) as a reclaimable, empty entry.
func (c *Cache) consumeGroupMembers(g *groupEntry) {
	for port, head := range g.heads {
		idx := head
		for idx != noIndex {
			next := c.members[idx].next
			c.freeMember(idx)
			idx = next
		}
		g.heads[port] = noIndex
	}
	g.portmap.ClearAll()
}

// AddMember registers an IPv4 listener on maddr/port, refreshing its
// timeout if already present. Returns -1 for an invalid port, 0 if no
// hardware update resulted (including silent drops on pool exhaustion), or
// the bits that newly turned on in maddr's portmap.
func (c *Cache) AddMember(maddr MAC, ip net.IP, port int, timeout uint64) int64 {
	if port < 0 || port > c.cfg.PortMax {
		return -1
	}

	g, ok := c.getOrAllocGroup(maddr)
	if !ok {
		return 0
	}

	now := c.clock.Now()
	g.expiresAt = now + timeout

	midx, found := c.findMember(g, port, ip)
	if !found {
		midx = c.allocMember()
		if midx == noIndex {
			c.recomputePortmap(g)
			c.armGroupTimer(g.expiresAt)
			return 0
		}
		c.members[midx].ip = dupIP(ip)
		c.members[midx].port = port
		c.linkMemberFront(g, port, midx)
	}
	c.members[midx].expiresAt = g.expiresAt

	old := g.portmap.Clone()
	c.recomputePortmap(g)
	newBits := turnedOn(old, g.portmap)

	c.armGroupTimer(g.expiresAt)

	if newBits.Any() {
		push := newBits.Clone()
		push.InPlaceUnion(c.routers.portmap)
		c.driver.AddPortmap(maddr, push)
	}

	return bitsetToInt64(newBits)
}

// DelMember removes an IPv4 listener on maddr/port. Returns -1 for an
// invalid port, 0 if maddr is unknown or the member wasn't present (no
// hardware update), or the bits that turned off in maddr's portmap (after
// masking out any bits still asserted by the router group).
func (c *Cache) DelMember(maddr MAC, ip net.IP, port int) int64 {
	if port < 0 || port > c.cfg.PortMax {
		return -1
	}

	idx, ok := c.lookupGroup(maddr)
	if !ok {
		return 0
	}
	g := &c.groups[idx]

	midx, found := c.findMember(g, port, ip)
	if !found {
		return 0
	}
	c.unlinkMember(g, port, midx)
	c.freeMember(midx)

	old := g.portmap.Clone()
	c.recomputePortmap(g)
	removed := turnedOff(old, g.portmap)

	if g.portmap.None() {
		c.consumeGroupMembers(g)
	}

	removed.InPlaceDifference(c.routers.portmap)
	if removed.Any() {
		c.driver.DelPortmap(maddr, removed)
	}
	return bitsetToInt64(removed)
}

// ExpireMembers resets the expiry deadline for one group (maddr != nil) or
// every pooled group (maddr == nil) to now+timeout, and reschedules the
// group timer no later than that deadline. Returns -1 if maddr is given but
// not a known group, 0 otherwise.
func (c *Cache) ExpireMembers(maddr *MAC, timeout uint64) int64 {
	now := c.clock.Now()
	deadline := now + timeout

	if maddr != nil {
		idx, ok := c.lookupGroup(*maddr)
		if !ok {
			return -1
		}
		c.groups[idx].expiresAt = deadline
		c.armGroupTimer(deadline)
		return 0
	}

	for i := range c.groups {
		c.groups[i].expiresAt = deadline
	}
	if len(c.groups) > 0 {
		c.armGroupTimer(deadline)
	}
	return 0
}

// PurgeCache resets the entire cache to its just initialized state: both
// timers are cancelled, every group's hardware forwarding entry is cleared,
// and every pool (groups, members, hosts) is emptied.
func (c *Cache) PurgeCache() {
	id := newShortID()

	c.groupTimer.Cancel()
	c.groupTimerArmed = false
	c.routerTimer.Cancel()
	c.routerTimerArmed = false

	for i := range c.groups {
		g := &c.groups[i]
		c.consumeGroupMembers(g)
		c.driver.ClrPortmap(g.mac)
	}
	c.consumeGroupMembers(&c.routers)

	c.groups = c.groups[:0]
	for i := range c.groupHash {
		c.groupHash[i] = noIndex
	}
	c.members = c.members[:0]
	c.memberFreeHead = noIndex
	c.hosts = c.hosts[:0]
	for i := range c.hostHash {
		c.hostHash[i] = noIndex
	}
	resetGroupEntry(&c.routers, c.cfg)

	log.Printf("igmpsnoop: cache purged (id=%s)", id)
}

// bitsetSnapshot converts a portmap into a []bool of length portMax+1 for
// presentation in the debug API.
func bitsetSnapshot(b *bitset.BitSet, portMax int) []bool {
	out := make([]bool, portMax+1)
	for i := 0; i <= portMax; i++ {
		out[i] = b.Test(uint(i))
	}
	return out
}

func dupIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}
