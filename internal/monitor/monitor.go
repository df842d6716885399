// Package monitor drives the scan-diff-notify loop: it polls the address
// source, feeds the tracker, maps the resulting events through the
// notification policy, and commits presence state once a cycle's dispatch
// is complete.
package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/netvigil/netvigil/internal/device"
	"github.com/netvigil/netvigil/internal/journal"
	"github.com/netvigil/netvigil/internal/notify"
	"github.com/netvigil/netvigil/internal/registry"
	"github.com/netvigil/netvigil/internal/scan"
	"github.com/netvigil/netvigil/internal/tracker"
)

// minCycleGap is the floor between cycle starts, preventing a tight loop
// when scanning is instantaneous or fails fast.
const minCycleGap = time.Second

// Config assembles a Monitor's collaborators. Notifier and Journal are
// optional: a nil Notifier disables delivery (payloads are still built and
// logged), a nil Journal disables the audit log.
type Config struct {
	Source   scan.Source
	Registry *registry.Registry
	Policy   *notify.Policy
	Notifier notify.Notifier
	Journal  *journal.Journal
	Interval time.Duration
	Logger   *zap.Logger
}

// Monitor owns the presence tracker and runs the polling loop. One cycle
// runs to completion before the next starts, so presence state needs no
// locking.
type Monitor struct {
	source   scan.Source
	reg      *registry.Registry
	policy   *notify.Policy
	notifier notify.Notifier
	journal  *journal.Journal
	interval time.Duration
	logger   *zap.Logger
	tracker  *tracker.Tracker

	// now supplies journal timestamps. Overridable in tests.
	now func() time.Time
}

// New builds a Monitor from cfg.
func New(cfg Config) *Monitor {
	return &Monitor{
		source:   cfg.Source,
		reg:      cfg.Registry,
		policy:   cfg.Policy,
		notifier: cfg.Notifier,
		journal:  cfg.Journal,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		tracker:  tracker.New(),
		now:      time.Now,
	}
}

// RunOnce executes one scan-diff-notify cycle. A failed scan is treated as
// an empty result; no error in the notify path ever prevents the commit, so
// a delivery failure cannot replay events on the next cycle.
func (m *Monitor) RunOnce(ctx context.Context, startupReport bool) {
	start := m.now()

	res, err := m.source.Scan(ctx)
	if err != nil {
		m.logger.Warn("scan failed, treating as empty result", zap.Error(err))
		res = &scan.Result{Addrs: device.NewSet()}
	}

	joined, left, first := m.tracker.Diff(res.Addrs)

	if first {
		m.logger.Info("baseline established",
			zap.Int("devices_online", res.Addrs.Len()))
		for _, addr := range res.Addrs.Sorted() {
			m.logger.Info("device online",
				zap.String("label", m.reg.LabelOf(addr)),
				zap.String("addr", string(addr)),
				zap.String("vendor", m.reg.VendorOf(addr)))
		}
		if startupReport {
			if res.Addrs.Len() > 0 {
				m.dispatch(ctx, tracker.StartupSummary(res.Addrs))
			} else {
				m.logger.Info("no devices online, startup report skipped")
			}
		}
	} else {
		for _, addr := range joined.Sorted() {
			m.logger.Info("device joined",
				zap.String("label", m.reg.LabelOf(addr)),
				zap.String("addr", string(addr)),
				zap.String("ip", res.IPs[addr]))
			m.dispatch(ctx, tracker.Joined(addr))
			m.recordSighting(ctx, res, addr, "joined")
		}
		for _, addr := range left.Sorted() {
			m.logger.Info("device left",
				zap.String("label", m.reg.LabelOf(addr)),
				zap.String("addr", string(addr)))
			m.dispatch(ctx, tracker.Left(addr))
			m.recordSighting(ctx, res, addr, "left")
		}
		if joined.Len() == 0 && left.Len() == 0 {
			m.logger.Debug("no presence changes")
		}
	}

	m.recordCycle(ctx, start, res, joined, left)

	// All diffing and dispatch for this cycle is done; only now does the
	// scan become the new baseline.
	m.tracker.Commit(res.Addrs)

	cyclesTotal.Inc()
	devicesOnline.Set(float64(res.Addrs.Len()))
	scanDuration.Observe(m.now().Sub(start).Seconds())

	m.logger.Info("cycle complete",
		zap.Int("online", res.Addrs.Len()),
		zap.Int("joined", joined.Len()),
		zap.Int("left", left.Len()))
}

// Run executes cycles until ctx is cancelled, pacing starts so consecutive
// cycles begin at least NextDelay apart. When startupReport is set the first
// cycle emits a startup summary. Cancellation is honored between cycles;
// the in-flight cycle always completes so presence state is never left
// partially updated.
func (m *Monitor) Run(ctx context.Context, startupReport bool) {
	m.logger.Info("presence monitor started",
		zap.Duration("interval", m.interval))

	first := true
	for {
		start := time.Now()
		m.RunOnce(ctx, first && startupReport)
		first = false

		delay := NextDelay(m.interval, time.Since(start))
		select {
		case <-ctx.Done():
			m.logger.Info("presence monitor stopped")
			return
		case <-time.After(delay):
		}
	}
}

// NextDelay returns the wait before the next cycle start given the target
// interval and how long the last cycle took, with a one second floor.
func NextDelay(interval, elapsed time.Duration) time.Duration {
	d := interval - elapsed
	if d < minCycleGap {
		return minCycleGap
	}
	return d
}

// dispatch builds the payload for an event and hands it to the notifier.
// With no notifier configured the payload is still built and logged, and
// the skip is a no-op.
func (m *Monitor) dispatch(ctx context.Context, ev tracker.Event) {
	p := m.policy.Build(ev)

	if m.notifier == nil {
		m.logger.Debug("delivery disabled, notification skipped",
			zap.String("title", p.Title))
		return
	}

	if err := m.notifier.Send(ctx, p); err != nil {
		notificationFailures.Inc()
		m.logger.Warn("notification delivery failed",
			zap.String("title", p.Title), zap.Error(err))
		return
	}
	notificationsSent.Inc()
}

func (m *Monitor) recordSighting(ctx context.Context, res *scan.Result, addr device.Addr, event string) {
	if m.journal == nil {
		return
	}
	s := &journal.Sighting{
		Addr:       addr,
		Label:      m.reg.LabelOf(addr),
		Hostname:   res.Hostnames[addr],
		IP:         res.IPs[addr],
		Event:      event,
		ObservedAt: m.now(),
	}
	if err := m.journal.RecordSighting(ctx, s); err != nil {
		m.logger.Warn("journal sighting write failed", zap.Error(err))
	}
}

func (m *Monitor) recordCycle(ctx context.Context, start time.Time, res *scan.Result, joined, left device.Set) {
	if m.journal == nil {
		return
	}
	c := &journal.Cycle{
		StartedAt: start,
		Duration:  m.now().Sub(start),
		Online:    res.Addrs.Len(),
		Joined:    joined.Len(),
		Departed:  left.Len(),
	}
	if err := m.journal.RecordCycle(ctx, c); err != nil {
		m.logger.Warn("journal cycle write failed", zap.Error(err))
	}
}
