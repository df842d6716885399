package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/netvigil/netvigil/internal/device"
	"github.com/netvigil/netvigil/internal/registry"
	"github.com/netvigil/netvigil/internal/tracker"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		map[string]string{"AA:BB:CC:DD:EE:FF": "Phone"},
		nil,
		map[string]string{"AA:BB:CC:DD:EE:FF": "silent"},
	)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return reg
}

func TestBuildJoined(t *testing.T) {
	p := NewPolicy(testRegistry(t))

	got := p.Build(tracker.Joined("AA:BB:CC:DD:EE:FF"))
	if got.Title != "Device connected" {
		t.Errorf("Title = %q, want %q", got.Title, "Device connected")
	}
	if !strings.Contains(got.Body, "Phone") || !strings.Contains(got.Body, "AA:BB:CC:DD:EE:FF") {
		t.Errorf("Body = %q, want label and address mentioned", got.Body)
	}
	if got.Priority != registry.PrioritySilent {
		t.Errorf("Priority = %v, want configured PrioritySilent", got.Priority)
	}
}

func TestBuildLeft(t *testing.T) {
	p := NewPolicy(testRegistry(t))

	got := p.Build(tracker.Left("11:22:33:44:55:66"))
	if got.Title != "Device disconnected" {
		t.Errorf("Title = %q, want %q", got.Title, "Device disconnected")
	}
	if !strings.Contains(got.Body, "Unknown device (11:22:33:44:55:66)") {
		t.Errorf("Body = %q, want auto-generated label", got.Body)
	}
	if got.Priority != registry.PriorityNormal {
		t.Errorf("Priority = %v, want default PriorityNormal", got.Priority)
	}
}

func TestBuildStartupSummaryOverridesPriority(t *testing.T) {
	p := NewPolicy(testRegistry(t))
	p.Now = func() time.Time {
		return time.Date(2026, 2, 3, 12, 30, 0, 0, time.UTC)
	}

	ev := tracker.StartupSummary(device.NewSet("11:22:33:44:55:66", "AA:BB:CC:DD:EE:FF"))
	got := p.Build(ev)

	if got.Title != "Monitor startup report" {
		t.Errorf("Title = %q, want %q", got.Title, "Monitor startup report")
	}
	// The summary priority is fixed at active even though the only configured
	// device is set to silent.
	if got.Priority != registry.PriorityActive {
		t.Errorf("Priority = %v, want PriorityActive", got.Priority)
	}
	if !strings.Contains(got.Body, "Online devices (2):") {
		t.Errorf("Body = %q, want device count", got.Body)
	}
	if !strings.Contains(got.Body, "Scanned at: 2026-02-03 12:30:00") {
		t.Errorf("Body = %q, want timestamp", got.Body)
	}

	// Addresses appear in sorted order.
	i := strings.Index(got.Body, "11:22:33:44:55:66")
	j := strings.Index(got.Body, "AA:BB:CC:DD:EE:FF")
	if i < 0 || j < 0 || i > j {
		t.Errorf("Body = %q, want addresses in sorted order", got.Body)
	}
}
