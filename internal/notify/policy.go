// Package notify maps presence events onto notification payloads and
// delivers them to a Bark push endpoint.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/netvigil/netvigil/internal/registry"
	"github.com/netvigil/netvigil/internal/tracker"
)

// Payload is a concrete notification ready for delivery.
type Payload struct {
	Title    string
	Body     string
	Priority registry.Priority
}

// Policy builds notification payloads from presence events using the device
// registry for labels and per-device priorities.
type Policy struct {
	reg *registry.Registry

	// Now supplies the timestamp for startup reports. Overridable in tests.
	Now func() time.Time
}

// NewPolicy returns a Policy over the given registry.
func NewPolicy(reg *registry.Registry) *Policy {
	return &Policy{reg: reg, Now: time.Now}
}

// Build maps a presence event to a payload. Join and leave notifications use
// the device's configured priority. A startup summary is always sent at
// active priority, overriding any per-device configuration: it is an
// operational liveness signal the operator must not miss.
func (p *Policy) Build(ev tracker.Event) Payload {
	switch ev.Kind {
	case tracker.EventJoined:
		return Payload{
			Title:    "Device connected",
			Body:     fmt.Sprintf("%s (%s) joined the network", p.reg.LabelOf(ev.Addr), ev.Addr),
			Priority: p.reg.PriorityOf(ev.Addr),
		}
	case tracker.EventLeft:
		return Payload{
			Title:    "Device disconnected",
			Body:     fmt.Sprintf("%s (%s) left the network", p.reg.LabelOf(ev.Addr), ev.Addr),
			Priority: p.reg.PriorityOf(ev.Addr),
		}
	case tracker.EventStartupSummary:
		return Payload{
			Title:    "Monitor startup report",
			Body:     p.summaryBody(ev),
			Priority: registry.PriorityActive,
		}
	default:
		return Payload{}
	}
}

func (p *Policy) summaryBody(ev tracker.Event) string {
	var b strings.Builder
	b.WriteString("Presence monitor started\n\n")
	fmt.Fprintf(&b, "Online devices (%d):\n", len(ev.Addrs))
	for _, addr := range ev.Addrs {
		fmt.Fprintf(&b, "%s (%s)\n", p.reg.LabelOf(addr), addr)
	}
	fmt.Fprintf(&b, "\nScanned at: %s", p.Now().Format("2006-01-02 15:04:05"))
	return b.String()
}
