package igmpsnoop

import "testing"

func TestParseMAC(t *testing.T) {
	m, err := ParseMAC("01:00:5e:01:02:03")
	if err != nil {
		t.Fatal(err)
	}
	expected := MAC{0x01, 0x00, 0x5e, 0x01, 0x02, 0x03}
	if m != expected {
		t.Error("ParseMAC returned wrong bytes:", m)
	}

	// Hyphen separated is also accepted.
	m2, err := ParseMAC("01-00-5e-01-02-03")
	if err != nil {
		t.Fatal(err)
	}
	if m2 != expected {
		t.Error("ParseMAC (hyphen) returned wrong bytes:", m2)
	}
}

func TestParseMACInvalid(t *testing.T) {
	for _, s := range []string{"", "not-a-mac", "01:00:5e:01:02", "01:00:5e:01:02:gg"} {
		if _, err := ParseMAC(s); err != ErrInvalidMAC {
			t.Errorf("ParseMAC(%q) = _, %v; want ErrInvalidMAC", s, err)
		}
	}
}

func TestMACString(t *testing.T) {
	m := MAC{0x01, 0x00, 0x5e, 0x01, 0x02, 0x03}
	expected := "01:00:5e:01:02:03"
	if m.String() != expected {
		t.Error("MAC.String() =", m.String(), "want", expected)
	}
}

func TestEtherHashBounded(t *testing.T) {
	size := 64
	for i := 0; i < 256; i++ {
		m := MAC{0x01, 0x00, 0x5e, byte(i), byte(i * 7), byte(i * 13)}
		h := etherHash(m, size)
		if h < 0 || h >= size {
			t.Fatalf("etherHash(%s, %d) = %d, out of range", m, size, h)
		}
	}
}

func TestEtherHashStable(t *testing.T) {
	m := MAC{0x01, 0x00, 0x5e, 0x0a, 0x0b, 0x0c}
	h1 := etherHash(m, 64)
	h2 := etherHash(m, 64)
	if h1 != h2 {
		t.Error("etherHash is not deterministic for the same input")
	}
}
