package scan

import (
	"context"
	"net/netip"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

const warmupConcurrency = 32

// pingSweep sends a single unprivileged ICMP echo to every host in the
// prefix so that recently-quiet devices show up in the ARP cache before the
// fallback reads it. Results and errors are discarded: the ping is only a
// cache primer.
func pingSweep(ctx context.Context, pfx netip.Prefix) {
	if hostCount(pfx) > maxSweepHosts {
		return
	}

	sem := make(chan struct{}, warmupConcurrency)
	var wg sync.WaitGroup

	for ip := pfx.Masked().Addr(); pfx.Contains(ip); ip = ip.Next() {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(target string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			pinger, err := probing.NewPinger(target)
			if err != nil {
				return
			}
			pinger.Count = 1
			pinger.Timeout = time.Second
			pinger.SetPrivileged(false)
			_ = pinger.RunWithContext(ctx)
		}(ip.String())
	}

	wg.Wait()
}
