package scan

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// mdnsServices lists the service types queried for hostname hints. A short
// list keeps the enrichment pass well under the scan timeout.
var mdnsServices = []string{
	"_workstation._tcp",
	"_http._tcp",
	"_ssh._tcp",
	"_smb._tcp",
	"_airplay._tcp",
	"_googlecast._tcp",
	"_homekit._tcp",
}

// mdnsHostnames queries common mDNS service types and returns an IP ->
// hostname map. Hostnames are hints for logs and the journal only; failures
// are silently ignored.
func mdnsHostnames(ctx context.Context, iface *net.Interface, timeout time.Duration) map[string]string {
	perQuery := timeout / time.Duration(len(mdnsServices))
	if perQuery < 500*time.Millisecond {
		perQuery = 500 * time.Millisecond
	}

	found := make(map[string]string)
	for _, svc := range mdnsServices {
		if ctx.Err() != nil {
			break
		}

		entries := make(chan *mdns.ServiceEntry, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for e := range entries {
				if e.AddrV4 == nil {
					continue
				}
				host := strings.TrimSuffix(e.Host, ".local.")
				host = strings.TrimSuffix(host, ".")
				if host != "" {
					found[e.AddrV4.String()] = host
				}
			}
		}()

		_ = mdns.Query(&mdns.QueryParam{
			Service:     svc,
			Timeout:     perQuery,
			Entries:     entries,
			Interface:   iface,
			DisableIPv6: true,
		})
		close(entries)
		<-done
	}
	return found
}
