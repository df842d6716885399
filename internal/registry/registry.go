// Package registry holds the static device registry: labels, the ignore set,
// and per-device notification priorities. It is built once from configuration
// and read-only afterwards; edits require a restart.
package registry

import (
	"fmt"
	"strings"

	"github.com/netvigil/netvigil/internal/device"
)

// Priority is the delivery urgency tier for a notification. It affects only
// how the push is presented on the receiving device, never whether an event
// is routed or filtered.
type Priority int

const (
	// PriorityNormal is the default: no level parameter is sent, so the
	// endpoint applies its default sound.
	PriorityNormal Priority = iota
	// PrioritySilent delivers to the notification center only, no sound or
	// vibration.
	PrioritySilent
	// PriorityActive delivers with sound and vibration.
	PriorityActive
	// PriorityTimeSensitive breaks through focus modes (iOS 15+).
	PriorityTimeSensitive
)

// String returns the canonical configuration spelling.
func (p Priority) String() string {
	switch p {
	case PrioritySilent:
		return "silent"
	case PriorityActive:
		return "active"
	case PriorityTimeSensitive:
		return "timeSensitive"
	default:
		return "normal"
	}
}

// ParsePriority maps a configuration spelling onto a Priority. "vibrate" is a
// legacy alias for "active"; both deliver with sound and vibration. The empty
// string means normal.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return PriorityNormal, nil
	case "silent":
		return PrioritySilent, nil
	case "vibrate", "active":
		return PriorityActive, nil
	case "timesensitive":
		return PriorityTimeSensitive, nil
	default:
		return PriorityNormal, fmt.Errorf("unknown notification priority %q", s)
	}
}

// Registry is the immutable device registry.
type Registry struct {
	labels     map[device.Addr]string
	ignored    device.Set
	priorities map[device.Addr]Priority
	oui        *OUITable
}

// New builds a Registry from raw configuration maps. Keys are normalized on
// the way in; a malformed address or priority spelling is a configuration
// error naming the offending entry.
func New(labels map[string]string, ignore []string, priorities map[string]string) (*Registry, error) {
	r := &Registry{
		labels:     make(map[device.Addr]string, len(labels)),
		ignored:    make(device.Set, len(ignore)),
		priorities: make(map[device.Addr]Priority, len(priorities)),
		oui:        NewOUITable(),
	}

	for mac, label := range labels {
		addr, err := device.ParseAddr(mac)
		if err != nil {
			return nil, fmt.Errorf("devices: %w", err)
		}
		r.labels[addr] = label
	}
	for _, mac := range ignore {
		addr, err := device.ParseAddr(mac)
		if err != nil {
			return nil, fmt.Errorf("ignore: %w", err)
		}
		r.ignored.Add(addr)
	}
	for mac, name := range priorities {
		addr, err := device.ParseAddr(mac)
		if err != nil {
			return nil, fmt.Errorf("priorities: %w", err)
		}
		p, err := ParsePriority(name)
		if err != nil {
			return nil, fmt.Errorf("priorities[%s]: %w", addr, err)
		}
		r.priorities[addr] = p
	}

	return r, nil
}

// LabelOf returns the configured label for an address, or an auto-generated
// "Unknown device" label. It never fails.
func (r *Registry) LabelOf(addr device.Addr) string {
	if label, ok := r.labels[addr]; ok {
		return label
	}
	return fmt.Sprintf("Unknown device (%s)", addr)
}

// Known reports whether the address has a configured label.
func (r *Registry) Known(addr device.Addr) bool {
	_, ok := r.labels[addr]
	return ok
}

// PriorityOf returns the configured priority for an address, defaulting to
// normal for unconfigured devices.
func (r *Registry) PriorityOf(addr device.Addr) Priority {
	if p, ok := r.priorities[addr]; ok {
		return p
	}
	return PriorityNormal
}

// IsIgnored reports whether the address is on the ignore list. Ignored
// addresses are dropped at the scanner boundary and are invisible to the
// rest of the pipeline.
func (r *Registry) IsIgnored(addr device.Addr) bool {
	return r.ignored.Has(addr)
}

// Ignored returns the ignore set for boundary filtering.
func (r *Registry) Ignored() device.Set {
	return r.ignored
}

// VendorOf returns the manufacturer for an address from the embedded OUI
// table, or empty string when the prefix is not known.
func (r *Registry) VendorOf(addr device.Addr) string {
	return r.oui.Lookup(string(addr))
}
