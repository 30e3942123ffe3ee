package igmpsnoop

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// ErrInvalidMAC is returned when a string does not parse as a 6 byte
// hardware address.
var ErrInvalidMAC = errors.New("igmpsnoop: invalid MAC address")

// MAC is a 6 byte Ethernet hardware address. It is used both as the key for
// multicast group entries and for the host port cache.
type MAC [6]byte

// String formats m as colon separated hex, e.g. "01:00:5e:01:02:03".
func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		m[0], m[1], m[2], m[3], m[4], m[5])
}

// ParseMAC parses a colon or hyphen separated MAC address string.
func ParseMAC(s string) (MAC, error) {
	var m MAC
	if len(s) != 17 {
		return m, ErrInvalidMAC
	}
	for i := 0; i < 6; i++ {
		start := i * 3
		if i < 5 && (s[start+2] != ':' && s[start+2] != '-') {
			return m, ErrInvalidMAC
		}
		b, err := hex.DecodeString(s[start : start+2])
		if err != nil {
			return m, ErrInvalidMAC
		}
		m[i] = b[0]
	}
	return m, nil
}

// etherHash hashes a MAC down into a bucket index for a table of the given
// size. size must be > 0.
func etherHash(m MAC, size int) int {
	sum := murmur3.Sum32(m[:])
	return int(sum % uint32(size))
}
