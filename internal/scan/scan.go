// Package scan discovers hardware addresses on the local network. The
// primary strategy is an active ARP sweep of each configured subnet; when
// that is unavailable the scanner falls back to the operating system's ARP
// table, optionally warmed up with an ICMP sweep. Ignored addresses are
// filtered here, before results reach the presence tracker.
package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/netvigil/netvigil/internal/config"
	"github.com/netvigil/netvigil/internal/device"
)

// ErrSweepUnavailable marks the active ARP strategy as unusable on this
// host (no raw socket privileges or unsupported platform). It triggers the
// system-table fallback rather than failing the cycle.
var ErrSweepUnavailable = errors.New("active arp sweep unavailable")

// Result is one sampling instant. Addrs is the filtered, normalized address
// set consumed by the tracker; IPs and Hostnames are enrichment for logs and
// the journal.
type Result struct {
	Addrs     device.Set
	IPs       map[device.Addr]string
	Hostnames map[device.Addr]string
}

// Source produces the set of currently observed hardware addresses.
type Source interface {
	Scan(ctx context.Context) (*Result, error)
}

// Scanner implements Source over a network interface.
type Scanner struct {
	iface   *net.Interface
	subnets []netip.Prefix
	timeout time.Duration
	useMDNS bool
	ignored device.Set
	logger  *zap.Logger

	// Strategy hooks, replaceable in tests.
	sweep     func(ctx context.Context, iface *net.Interface, pfx netip.Prefix, timeout time.Duration) (map[device.Addr]string, error)
	table     func(ctx context.Context) (map[device.Addr]string, error)
	warmup    func(ctx context.Context, pfx netip.Prefix)
	hostnames func(ctx context.Context, iface *net.Interface, timeout time.Duration) map[string]string
}

// New builds a Scanner from configuration. An empty interface name selects
// the first usable non-loopback interface; an empty subnet list defaults to
// the interface's own IPv4 prefix.
func New(cfg config.Scan, ignored device.Set, logger *zap.Logger) (*Scanner, error) {
	iface, prefix, err := resolveInterface(cfg.Interface)
	if err != nil {
		return nil, err
	}

	subnets := make([]netip.Prefix, 0, len(cfg.Subnets))
	for _, s := range cfg.Subnets {
		pfx, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("scan.subnets: %w", err)
		}
		subnets = append(subnets, pfx.Masked())
	}
	if len(subnets) == 0 {
		subnets = append(subnets, prefix)
	}

	s := &Scanner{
		iface:   iface,
		subnets: subnets,
		timeout: cfg.Timeout,
		useMDNS: cfg.MDNS,
		ignored: ignored,
		logger:  logger,

		sweep:  sweepARP,
		table:  readSystemTable,
		warmup: pingSweep,
	}
	if cfg.MDNS {
		s.hostnames = mdnsHostnames
	}
	return s, nil
}

// Scan runs one sampling cycle. Per-subnet failures are logged and that
// subnet contributes nothing; the method fails only when construction-level
// assumptions break, never on an empty network.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	found := make(map[device.Addr]string)
	primaryUsable := true

	for _, pfx := range s.subnets {
		hosts, err := s.sweep(ctx, s.iface, pfx, s.timeout)
		if err != nil {
			if errors.Is(err, ErrSweepUnavailable) {
				s.logger.Warn("active arp sweep unavailable, falling back to system arp table",
					zap.Error(err))
				primaryUsable = false
				break
			}
			s.logger.Warn("subnet sweep failed",
				zap.Stringer("subnet", pfx), zap.Error(err))
			continue
		}
		for addr, ip := range hosts {
			if _, ok := found[addr]; !ok {
				found[addr] = ip
			}
		}
	}

	if !primaryUsable || len(found) == 0 {
		if len(s.subnets) > 1 {
			s.logger.Warn("arp table fallback only covers the local segment, " +
				"remote subnets will not be observed")
		}
		if s.warmup != nil {
			s.warmup(ctx, s.subnets[0])
		}
		hosts, err := s.table(ctx)
		if err != nil {
			s.logger.Warn("system arp table read failed", zap.Error(err))
		}
		for addr, ip := range hosts {
			if _, ok := found[addr]; !ok {
				found[addr] = ip
			}
		}
	}

	res := &Result{
		Addrs: make(device.Set, len(found)),
		IPs:   make(map[device.Addr]string, len(found)),
	}
	for addr, ip := range found {
		if s.ignored.Has(addr) {
			continue
		}
		res.Addrs.Add(addr)
		res.IPs[addr] = ip
	}

	if s.hostnames != nil {
		byIP := s.hostnames(ctx, s.iface, s.timeout)
		res.Hostnames = make(map[device.Addr]string)
		for addr, ip := range res.IPs {
			if host, ok := byIP[ip]; ok {
				res.Hostnames[addr] = host
			}
		}
	}

	s.logger.Debug("scan complete",
		zap.Int("devices", res.Addrs.Len()),
		zap.Int("subnets", len(s.subnets)))
	return res, nil
}

// resolveInterface finds the named interface, or when name is empty the
// first up, non-loopback interface carrying an IPv4 address. It returns the
// interface together with its masked IPv4 prefix.
func resolveInterface(name string) (*net.Interface, netip.Prefix, error) {
	if name != "" {
		iface, err := net.InterfaceByName(name)
		if err != nil {
			return nil, netip.Prefix{}, fmt.Errorf("scan.interface %q: %w", name, err)
		}
		pfx, err := firstIPv4Prefix(iface)
		if err != nil {
			return nil, netip.Prefix{}, err
		}
		return iface, pfx, nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, netip.Prefix{}, fmt.Errorf("list interfaces: %w", err)
	}
	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if pfx, err := firstIPv4Prefix(iface); err == nil {
			return iface, pfx, nil
		}
	}
	return nil, netip.Prefix{}, errors.New("no usable network interface found")
}

func firstIPv4Prefix(iface *net.Interface) (netip.Prefix, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return netip.Prefix{}, err
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.To4() == nil {
			continue
		}
		pfx, err := netip.ParsePrefix(ipnet.String())
		if err != nil {
			continue
		}
		return pfx.Masked(), nil
	}
	return netip.Prefix{}, fmt.Errorf("interface %s has no IPv4 address", iface.Name)
}
