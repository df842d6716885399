package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "netvigil",
		Name:      "scan_cycles_total",
		Help:      "Completed scan cycles.",
	})
	devicesOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "netvigil",
		Name:      "devices_online",
		Help:      "Devices observed in the most recent scan.",
	})
	notificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "netvigil",
		Name:      "notifications_sent_total",
		Help:      "Notifications delivered to the push endpoint.",
	})
	notificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "netvigil",
		Name:      "notification_failures_total",
		Help:      "Notification deliveries that failed.",
	})
	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "netvigil",
		Name:      "scan_duration_seconds",
		Help:      "Wall time per scan cycle.",
		Buckets:   prometheus.DefBuckets,
	})
)
