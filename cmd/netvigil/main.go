// netvigil watches a LAN segment via periodic ARP scans and pushes a Bark
// notification when a device joins or leaves.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/netvigil/netvigil/internal/config"
	"github.com/netvigil/netvigil/internal/journal"
	"github.com/netvigil/netvigil/internal/monitor"
	"github.com/netvigil/netvigil/internal/notify"
	"github.com/netvigil/netvigil/internal/registry"
	"github.com/netvigil/netvigil/internal/scan"
	"github.com/netvigil/netvigil/internal/version"
)

const defaultTemplatePath = "netvigil.yaml"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	once := flag.Bool("once", false, "run a single scan cycle and exit")
	initReport := flag.Bool("init-report", false, "run a single cycle that sends a startup report, then exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, *once, *initReport, logger); err != nil {
		logger.Fatal("netvigil exiting", zap.Error(err))
	}
}

func run(configPath string, once, initReport bool, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if errors.Is(err, config.ErrMissing) {
		path := configPath
		if path == "" {
			path = defaultTemplatePath
		}
		if werr := config.WriteTemplate(path); werr != nil {
			return fmt.Errorf("write config template: %w", werr)
		}
		fmt.Fprintf(os.Stderr, "No configuration found. A template was written to %s;\n", path)
		fmt.Fprintln(os.Stderr, "edit it and start netvigil again.")
		os.Exit(2)
	}
	if err != nil {
		return err
	}

	reg, err := registry.New(cfg.Devices, cfg.Ignore, cfg.Priorities)
	if err != nil {
		return fmt.Errorf("device registry: %w", err)
	}

	source, err := scan.New(cfg.Scan, reg.Ignored(), logger)
	if err != nil {
		return err
	}

	var notifier notify.Notifier
	if cfg.Bark.Key != "" {
		notifier = notify.NewBarkClient(cfg.Bark.BaseURL, cfg.Bark.Key, logger)
	} else {
		logger.Warn("no bark key configured, push delivery disabled")
	}

	var jrnl *journal.Journal
	if cfg.Journal.Path != "" {
		jrnl, err = journal.Open(cfg.Journal.Path, logger)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer jrnl.Close()
	}

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen, logger)
	}

	m := monitor.New(monitor.Config{
		Source:   source,
		Registry: reg,
		Policy:   notify.NewPolicy(reg),
		Notifier: notifier,
		Journal:  jrnl,
		Interval: cfg.Scan.Interval,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case once:
		m.RunOnce(ctx, false)
	case initReport:
		m.RunOnce(ctx, true)
	default:
		// Continuous mode: announce the baseline, then keep watching.
		m.Run(ctx, true)
	}
	return nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listener started", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener failed", zap.Error(err))
	}
}
