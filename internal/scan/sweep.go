package scan

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/mdlayher/arp"

	"github.com/netvigil/netvigil/internal/device"
)

// maxSweepHosts bounds how many addresses a single subnet sweep will probe.
// Anything wider than a /20 is almost certainly a configuration mistake.
const maxSweepHosts = 4096

// sweepARP actively probes every address in the prefix with an ARP request
// and collects replies until the timeout. A dial failure means the strategy
// is unusable on this host (raw sockets, unsupported platform) and is
// reported as ErrSweepUnavailable; errors after dialing yield whatever was
// collected so far.
func sweepARP(ctx context.Context, iface *net.Interface, pfx netip.Prefix, timeout time.Duration) (map[device.Addr]string, error) {
	if hostCount(pfx) > maxSweepHosts {
		return nil, fmt.Errorf("subnet %s too large to sweep (max %d hosts)", pfx, maxSweepHosts)
	}

	c, err := arp.Dial(iface)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSweepUnavailable, err)
	}
	defer c.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSweepUnavailable, err)
	}

	// Fire requests concurrently with reading so replies arriving during
	// the sweep are not lost to a full socket buffer.
	go func() {
		for ip := pfx.Masked().Addr(); pfx.Contains(ip); ip = ip.Next() {
			if ctx.Err() != nil {
				return
			}
			_ = c.Request(ip)
		}
	}()

	hosts := make(map[device.Addr]string)
	for {
		pkt, _, err := c.Read()
		if err != nil {
			// Deadline reached (or the socket died): the sweep is over
			// either way and partial results still count.
			return hosts, nil
		}
		if pkt.Operation != arp.OperationReply {
			continue
		}
		addr, perr := device.ParseAddr(pkt.SenderHardwareAddr.String())
		if perr != nil {
			continue
		}
		if _, ok := hosts[addr]; !ok {
			hosts[addr] = pkt.SenderIP.String()
		}
	}
}

func hostCount(pfx netip.Prefix) int {
	bits := pfx.Addr().BitLen() - pfx.Bits()
	if bits >= 31 {
		return maxSweepHosts + 1
	}
	return 1 << bits
}
