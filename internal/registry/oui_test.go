package registry

import "testing"

func TestOUILookup(t *testing.T) {
	table := NewOUITable()

	tests := []struct {
		mac  string
		want string
	}{
		{"B8:27:EB:12:34:56", "Raspberry Pi Foundation"},
		{"b8-27-eb-aa-bb-cc", "Raspberry Pi Foundation"},
		{"b827.eb00.0000", "Raspberry Pi Foundation"},
		{"F4:5C:89:00:00:01", "Apple, Inc."},
	}
	for _, tt := range tests {
		if got := table.Lookup(tt.mac); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.mac, got, tt.want)
		}
	}
}

func TestOUILookupUnknown(t *testing.T) {
	table := NewOUITable()
	if got := table.Lookup("02:00:00:00:00:01"); got != "" {
		t.Errorf("Lookup(unassigned) = %q, want empty", got)
	}
}

func TestOUILookupMalformed(t *testing.T) {
	table := NewOUITable()
	if got := table.Lookup("xx"); got != "" {
		t.Errorf("Lookup(malformed) = %q, want empty", got)
	}
}
