// Package device defines the canonical hardware address representation shared
// by the scanner, registry, and presence tracker.
package device

import (
	"fmt"
	"sort"
	"strings"
)

// Addr is a hardware (MAC) address in canonical form: six uppercase
// colon-separated hex octets, e.g. "AA:BB:CC:DD:EE:FF". Only canonical
// values may enter a Set, so equality and set membership are reliable
// regardless of how the address was originally formatted.
type Addr string

// ParseAddr normalizes a textual MAC address into canonical form. It accepts
// the common separator conventions (colons, hyphens, dots) in any case, as
// well as bare 12-digit hex.
func ParseAddr(s string) (Addr, error) {
	hex := strings.ToUpper(strings.TrimSpace(s))
	for _, sep := range []string{":", "-", "."} {
		hex = strings.ReplaceAll(hex, sep, "")
	}
	if len(hex) != 12 {
		return "", fmt.Errorf("invalid hardware address %q", s)
	}
	for _, c := range hex {
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return "", fmt.Errorf("invalid hardware address %q", s)
		}
	}

	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(hex[i : i+2])
	}
	return Addr(b.String()), nil
}

// MustAddr is ParseAddr for known-good literals. It panics on invalid input
// and is intended for tests and static tables.
func MustAddr(s string) Addr {
	a, err := ParseAddr(s)
	if err != nil {
		panic(err)
	}
	return a
}

// OUIPrefix returns the first three octets ("AA:BB:CC"), the manufacturer
// portion of the address.
func (a Addr) OUIPrefix() string {
	if len(a) < 8 {
		return ""
	}
	return string(a[:8])
}

// Set is an unordered collection of canonical addresses.
type Set map[Addr]struct{}

// NewSet builds a Set from the given addresses.
func NewSet(addrs ...Addr) Set {
	s := make(Set, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

// Add inserts an address.
func (s Set) Add(a Addr) { s[a] = struct{}{} }

// Has reports whether the address is a member.
func (s Set) Has(a Addr) bool {
	_, ok := s[a]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for a := range s {
		out[a] = struct{}{}
	}
	return out
}

// Diff returns the members of s not present in other.
func (s Set) Diff(other Set) Set {
	out := make(Set)
	for a := range s {
		if !other.Has(a) {
			out[a] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members ordered by their canonical textual value, for
// reproducible output.
func (s Set) Sorted() []Addr {
	out := make([]Addr, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
