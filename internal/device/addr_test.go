package device

import "testing"

func TestParseAddrNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want Addr
	}{
		{"AA:BB:CC:DD:EE:FF", "AA:BB:CC:DD:EE:FF"},
		{"aa:bb:cc:dd:ee:ff", "AA:BB:CC:DD:EE:FF"},
		{"aa-bb-cc-dd-ee-ff", "AA:BB:CC:DD:EE:FF"},
		{"aabb.ccdd.eeff", "AA:BB:CC:DD:EE:FF"},
		{"aabbccddeeff", "AA:BB:CC:DD:EE:FF"},
		{"  11:22:33:44:55:66\n", "11:22:33:44:55:66"},
	}
	for _, tt := range tests {
		got, err := ParseAddr(tt.in)
		if err != nil {
			t.Errorf("ParseAddr(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAddr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAddrInvalid(t *testing.T) {
	for _, in := range []string{"", "aa:bb:cc", "aa:bb:cc:dd:ee:ff:00", "gg:bb:cc:dd:ee:ff", "not a mac"} {
		if _, err := ParseAddr(in); err == nil {
			t.Errorf("ParseAddr(%q) = nil error, want error", in)
		}
	}
}

func TestAddrOUIPrefix(t *testing.T) {
	a := MustAddr("f4:5c:89:12:34:56")
	if got := a.OUIPrefix(); got != "F4:5C:89" {
		t.Errorf("OUIPrefix() = %q, want %q", got, "F4:5C:89")
	}
}

func TestSetDiff(t *testing.T) {
	a := NewSet("AA:BB:CC:DD:EE:FF", "11:22:33:44:55:66")
	b := NewSet("11:22:33:44:55:66", "DE:AD:BE:EF:00:01")

	joined := b.Diff(a)
	left := a.Diff(b)

	if joined.Len() != 1 || !joined.Has("DE:AD:BE:EF:00:01") {
		t.Errorf("b-a = %v, want {DE:AD:BE:EF:00:01}", joined.Sorted())
	}
	if left.Len() != 1 || !left.Has("AA:BB:CC:DD:EE:FF") {
		t.Errorf("a-b = %v, want {AA:BB:CC:DD:EE:FF}", left.Sorted())
	}

	// The two differences are disjoint.
	for addr := range joined {
		if left.Has(addr) {
			t.Errorf("address %s present in both joined and left", addr)
		}
	}
}

func TestSetSortedIsDeterministic(t *testing.T) {
	s := NewSet("DE:AD:BE:EF:00:01", "AA:BB:CC:DD:EE:FF", "11:22:33:44:55:66")
	want := []Addr{"11:22:33:44:55:66", "AA:BB:CC:DD:EE:FF", "DE:AD:BE:EF:00:01"}

	got := s.Sorted()
	if len(got) != len(want) {
		t.Fatalf("Sorted() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSetCloneIsIndependent(t *testing.T) {
	s := NewSet("AA:BB:CC:DD:EE:FF")
	c := s.Clone()
	c.Add("11:22:33:44:55:66")

	if s.Len() != 1 {
		t.Errorf("original set len = %d after clone mutation, want 1", s.Len())
	}
}
