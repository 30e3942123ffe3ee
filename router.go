package igmpsnoop

import "net"

// AddRouter registers a multicast router at ip/port, refreshing its
// timeout if already present, and fans any newly turned on router port
// bits out to every pooled group so that hardware forwarding always
// includes the router's ports regardless of whether a group currently has
// its own listener on that port. Returns -1 for an invalid port, 0 if no
// router port bit newly turned on, or the bits that newly turned on in the
// router portmap (returned even when no pooled group needed a hardware
// update).
func (c *Cache) AddRouter(ip net.IP, port int, timeout uint64) int64 {
	if port < 0 || port > c.cfg.PortMax {
		return -1
	}

	g := &c.routers
	now := c.clock.Now()
	g.expiresAt = now + timeout

	midx, found := c.findMember(g, port, ip)
	if !found {
		midx = c.allocMember()
		if midx == noIndex {
			c.armRouterTimer(g.expiresAt)
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

	c.armRouterTimer(g.expiresAt)

	if newBits.Any() {
		for i := range c.groups {
			gi := &c.groups[i]
			add := newBits.Difference(gi.portmap)
			if add.Any() {
				c.driver.AddPortmap(gi.mac, add)
			}
		}
	}

	return bitsetToInt64(newBits)
}
