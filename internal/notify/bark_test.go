package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/netvigil/netvigil/internal/registry"
)

func TestBarkClientSend(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewBarkClient(srv.URL, "testkey", zap.NewNop())
	err := c.Send(context.Background(), Payload{
		Title:    "Device connected",
		Body:     "Phone (AA:BB:CC:DD:EE:FF) joined the network",
		Priority: registry.PriorityActive,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if !strings.HasPrefix(gotPath, "/testkey/") {
		t.Errorf("request path = %q, want key as first segment", gotPath)
	}
	if !strings.Contains(gotPath, url.PathEscape("Device connected")) {
		t.Errorf("request path = %q, want escaped title segment", gotPath)
	}
	if got := gotQuery.Get("level"); got != "active" {
		t.Errorf("level = %q, want %q", got, "active")
	}
}

func TestBarkClientSendNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad device key", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewBarkClient(srv.URL, "badkey", zap.NewNop())
	err := c.Send(context.Background(), Payload{Title: "t", Body: "b"})
	if err == nil {
		t.Fatal("Send() error = nil, want non-nil for 400 response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v, want status code mentioned", err)
	}
}

func TestLevelParams(t *testing.T) {
	tests := []struct {
		priority registry.Priority
		want     string
	}{
		{registry.PriorityNormal, ""},
		{registry.PrioritySilent, "level=passive&sound=silent"},
		{registry.PriorityActive, "level=active"},
		{registry.PriorityTimeSensitive, "level=timeSensitive"},
	}
	for _, tt := range tests {
		if got := levelParams(tt.priority).Encode(); got != tt.want {
			t.Errorf("levelParams(%v) = %q, want %q", tt.priority, got, tt.want)
		}
	}
}
