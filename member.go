package igmpsnoop

import "net"

// noIndex is the sentinel "null" value for arena index handles, standing in
// for the original cache's NULL pointers.
const noIndex = ^uint32(0)

// memberEntry is one IPv4 listener (or router) registration for a single
// port on a single group (or the router group). Entries live in a fixed
// arena (Cache.members) and are linked into their owning group's per-port
// list via prev/next indices; freed entries are linked into
// Cache.memberFreeHead instead.
type memberEntry struct {
	ip        net.IP
	port      int
	expiresAt uint64

	prev, next uint32
}

// allocMember pops a slot off the free list, or grows the arena if it has
// not yet reached MemberPoolSize. Returns noIndex if the pool is exhausted.
func (c *Cache) allocMember() uint32 {
	if c.memberFreeHead != noIndex {
		idx := c.memberFreeHead
		c.memberFreeHead = c.members[idx].next
		c.members[idx] = memberEntry{prev: noIndex, next: noIndex}
		return idx
	}
	if len(c.members) < cap(c.members) {
		c.members = append(c.members, memberEntry{prev: noIndex, next: noIndex})
		return uint32(len(c.members) - 1)
	}
	return noIndex
}

// freeMember clears idx and returns it to the free list. The caller must
// have already unlinked idx from any group's per-port list.
func (c *Cache) freeMember(idx uint32) {
	c.members[idx] = memberEntry{next: c.memberFreeHead, prev: noIndex}
	c.memberFreeHead = idx
}

// findMember scans g's per-port list for port for an entry matching ip.
func (c *Cache) findMember(g *groupEntry, port int, ip net.IP) (uint32, bool) {
	idx := g.heads[port]
	for idx != noIndex {
		if c.members[idx].ip.Equal(ip) {
			return idx, true
		}
		idx = c.members[idx].next
	}
	return noIndex, false
}

// linkMemberFront inserts idx at the head of g's per-port list for port.
func (c *Cache) linkMemberFront(g *groupEntry, port int, idx uint32) {
	head := g.heads[port]
	c.members[idx].prev = noIndex
	c.members[idx].next = head
	if head != noIndex {
		c.members[head].prev = idx
	}
	g.heads[port] = idx
}

// unlinkMember removes idx from g's per-port list for port, patching up its
// neighbors (or the list head) on either side.
func (c *Cache) unlinkMember(g *groupEntry, port int, idx uint32) {
	m := &c.members[idx]
	if m.prev != noIndex {
		c.members[m.prev].next = m.next
	} else {
		g.heads[port] = m.next
	}
	if m.next != noIndex {
		c.members[m.next].prev = m.prev
	}
}
