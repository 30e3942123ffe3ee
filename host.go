package igmpsnoop

// hostEntry is a single memoized MAC -> port resolution, used to avoid
// calling the (potentially slow) switch driver's GetPort on every packet
// from a host already seen recently.
type hostEntry struct {
	mac       MAC
	port      int
	expiresAt uint64

	hashNext uint32
}

func (c *Cache) lookupHost(mac MAC) (uint32, bool) {
	bucket := etherHash(mac, len(c.hostHash))
	idx := c.hostHash[bucket]
	for idx != noIndex {
		if c.hosts[idx].mac == mac {
			return idx, true
		}
		idx = c.hosts[idx].hashNext
	}
	return noIndex, false
}

func (c *Cache) insertHostHash(idx uint32) {
	bucket := etherHash(c.hosts[idx].mac, len(c.hostHash))
	c.hosts[idx].hashNext = c.hostHash[bucket]
	c.hostHash[bucket] = idx
}

func (c *Cache) unlinkHostHash(idx uint32) {
	bucket := etherHash(c.hosts[idx].mac, len(c.hostHash))
	cur := c.hostHash[bucket]
	if cur == idx {
		c.hostHash[bucket] = c.hosts[idx].hashNext
		return
	}
	for cur != noIndex {
		next := c.hosts[cur].hashNext
		if next == idx {
			c.hosts[cur].hashNext = c.hosts[idx].hashNext
			return
		}
		cur = next
	}
}

// allocHostSlot grows the host pool while under HostPoolSize, or reclaims
// the slot with the smallest expires_at (LRU by expiry), unlinking it from
// its old mac's hash bucket first.
func (c *Cache) allocHostSlot() uint32 {
	if len(c.hosts) < cap(c.hosts) {
		c.hosts = append(c.hosts, hostEntry{hashNext: noIndex})
		return uint32(len(c.hosts) - 1)
	}

	var victim uint32
	for i := range c.hosts {
		if i == 0 || timeBefore(c.hosts[i].expiresAt, c.hosts[victim].expiresAt) {
			victim = uint32(i)
		}
	}
	c.unlinkHostHash(victim)
	return victim
}

// GetPort resolves the switch port for ea, returning a cached value while
// still within HostTTLTicks*TimerHz ticks of the last successful lookup and re-probing
// the switch driver (refreshing or inserting the cache entry) otherwise.
// Negative driver results are never cached.
func (c *Cache) GetPort(ea MAC) int64 {
	now := c.clock.Now()
	ttl := c.cfg.HostTTLTicks * c.cfg.TimerHz

	if idx, ok := c.lookupHost(ea); ok {
		h := &c.hosts[idx]
		if timeAfterEq(h.expiresAt, now) {
			return int64(h.port)
		}
		port := c.driver.GetPort(ea)
		if port >= 0 && port <= c.cfg.PortMax {
			h.port = port
			h.expiresAt = now + ttl
		}
		return int64(port)
	}

	port := c.driver.GetPort(ea)
	if port < 0 || port > c.cfg.PortMax {
		return int64(port)
	}

	idx := c.allocHostSlot()
	c.hosts[idx] = hostEntry{mac: ea, port: port, expiresAt: now + ttl, hashNext: noIndex}
	c.insertHostHash(idx)
	return int64(port)
}
