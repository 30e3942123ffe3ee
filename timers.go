package igmpsnoop

// armGroupTimer reschedules the group timer to deadline if it is not
// currently armed, or if deadline is sooner than what's already scheduled.
// It never pushes a deadline later, mirroring mod_timer's "only if it moves
// the wakeup earlier" discipline from the original cache.
func (c *Cache) armGroupTimer(deadline uint64) {
	if !c.groupTimerArmed || timeBefore(deadline, c.groupTimerDeadline) {
		c.groupTimerDeadline = deadline
		c.groupTimerArmed = true
		c.groupTimer.Mod(deadline)
	}
}

func (c *Cache) armRouterTimer(deadline uint64) {
	if !c.routerTimerArmed || timeBefore(deadline, c.routerTimerDeadline) {
		c.routerTimerDeadline = deadline
		c.routerTimerArmed = true
		c.routerTimer.Mod(deadline)
	}
}

// groupTimerFired reaps every pooled group whose expires_at has passed and
// still has a nonempty portmap, pushing the masked revoke delta to
// hardware, then rearms the timer at the nearest remaining deadline among
// survivors (or leaves it idle if none remain).
func (c *Cache) groupTimerFired() {
	now := c.clock.Now()

	var minDeadline uint64
	haveMin := false

	for i := range c.groups {
		g := &c.groups[i]
		if g.portmap.None() {
			continue
		}
		if timeBefore(now, g.expiresAt) {
			if !haveMin || timeBefore(g.expiresAt, minDeadline) {
				minDeadline = g.expiresAt
				haveMin = true
			}
			continue
		}

		old := g.portmap.Clone()
		c.consumeGroupMembers(g)
		del := old.Difference(c.routers.portmap)
		if del.Any() {
			c.driver.DelPortmap(g.mac, del)
		}
	}

	if haveMin {
		c.groupTimerDeadline = minDeadline
		c.groupTimerArmed = true
		c.groupTimer.Mod(minDeadline)
	} else {
		c.groupTimerArmed = false
	}
}

// routerTimerFired expires individual router members (rather than the
// whole router group at once): it walks every port list, drops members
// past their deadline, and tracks the minimum future expiry among
// survivors. Any router port bits that turned off as a result are revoked
// from every pooled group, masked by that group's own portmap so ports
// still backed by a real listener are left alone.
func (c *Cache) routerTimerFired() {
	now := c.clock.Now()
	g := &c.routers

	old := g.portmap.Clone()
	var minDeadline uint64
	haveMin := false

	for port, head := range g.heads {
		idx := head
		for idx != noIndex {
			next := c.members[idx].next
			if timeBefore(c.members[idx].expiresAt, now) {
				c.unlinkMember(g, port, idx)
				c.freeMember(idx)
			} else if !haveMin || timeBefore(c.members[idx].expiresAt, minDeadline) {
				minDeadline = c.members[idx].expiresAt
				haveMin = true
			}
			idx = next
		}
	}

	c.recomputePortmap(g)
	removed := turnedOff(old, g.portmap)

	if removed.Any() {
		for i := range c.groups {
			gi := &c.groups[i]
			revoke := removed.Difference(gi.portmap)
			if revoke.Any() {
				c.driver.DelPortmap(gi.mac, revoke)
			}
		}
	}

	if haveMin {
		c.routerTimerDeadline = minDeadline
		c.routerTimerArmed = true
		c.routerTimer.Mod(minDeadline)
	} else {
		c.routerTimerArmed = false
	}
}
