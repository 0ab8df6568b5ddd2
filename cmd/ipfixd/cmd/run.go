package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowexport/ipfixd/pkg/config"
	"github.com/flowexport/ipfixd/pkg/dataplane"
	"github.com/flowexport/ipfixd/pkg/exporter"
	"github.com/flowexport/ipfixd/pkg/flowtable"
	"github.com/flowexport/ipfixd/pkg/ipfix"
	"github.com/flowexport/ipfixd/pkg/logging"
	"github.com/flowexport/ipfixd/pkg/metrics"
)

// run wires the Flow Table, Accounter, Scanner and Exporter together and
// drives them from a single goroutine (DESIGN.md's single-worker decision):
// the fast path consumes packets from the configured PacketSource, the slow
// path fires on a ticker, and both run cooperatively via select so no
// cross-task synchronization beyond the Flow Table's own mutex is needed.
func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.FromContext(ctx)

	ctx, stop := signalContext()
	defer stop()

	table := flowtable.New(cfg.FlowTable.Capacity)
	acc := exporter.NewAccounter(table)
	scanner := exporter.NewScanner(table, cfg.Timeouts.IdleMs, cfg.Timeouts.ActiveMs)

	exporterIP := net.ParseIP(cfg.Exporter.IP)
	collectorIP := net.ParseIP(cfg.Collector.IP)
	builder := ipfix.NewBuilder(exporterIP, collectorIP, cfg.Exporter.Port, cfg.Collector.Port, cfg.Exporter.ObservationDomainID, config.DefaultDatagramPoolSize)

	transmitter, err := dataplane.NewRawTransmitter(collectorIP)
	if err != nil {
		return fmt.Errorf("failed to open collector transmitter: %w", err)
	}
	defer transmitter.Close()

	clock := dataplane.SystemClock{}
	exp := exporter.NewExporter(builder, transmitter, clock, config.DefaultMaxTransmitRetries)
	exp.Table = table

	source, closeSource, err := openPacketSource()
	if err != nil {
		return fmt.Errorf("failed to open packet source: %w", err)
	}
	if closeSource != nil {
		defer closeSource()
	}

	if cfg.Metrics.Addr != "" {
		srv := startMetricsServer(logger, cfg.Metrics.Addr, exp)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	stopDebugDump := startDebugSignalHandler(logger, exp)
	defer stopDebugDump()

	logger.With("exporter", cfg.Exporter.IP, "collector", fmt.Sprintf("%s:%d", cfg.Collector.IP, cfg.Collector.Port)).Info("started ipfixd")

	ticker := time.NewTicker(time.Duration(cfg.Timeouts.ScanPeriodMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down gracefully")
			expired := scanner.Tick(clock.WallMillis())
			exp.ExportExpired(expired)
			return nil

		case now := <-ticker.C:
			nowMs := now.UnixMilli()
			start := time.Now()
			expired := scanner.Tick(nowMs)
			scanDuration := time.Since(start)
			metrics.ScanDuration.Observe(scanDuration.Seconds())
			exp.RecordScanDuration(scanDuration)
			if len(expired) > 0 {
				sent := exp.ExportExpired(expired)
				logger.With("expired", len(expired), "sent", sent).Debug("exported expired flows")
			}

		default:
			hdr, _, ok := source.Next()
			if !ok {
				// replay file exhausted: idle until the next tick or shutdown
				// rather than spinning on repeated EOF reads.
				time.Sleep(10 * time.Millisecond)
				continue
			}
			if err := acc.Observe(hdr, clock.WallMillis()); err != nil {
				logger.With("error", err).Debug("dropped packet from accounting")
			}
		}
	}
}

// openPacketSource returns the configured PacketSource. Today that is
// always a replay file: live AF_PACKET/PF_RING capture is outside this
// module's scope (spec §1 treats packet ingestion as a collaborator, not a
// capability this binary implements), so --replay is required to run.
func openPacketSource() (dataplane.PacketSource, func(), error) {
	path := replayFilePath()
	if path == "" {
		return nil, nil, errors.New("no packet source configured: pass --replay <file> (live capture is out of scope for this module)")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open replay file: %w", err)
	}
	return dataplane.NewReplaySource(f), func() { _ = f.Close() }, nil
}

func startMetricsServer(logger *logging.L, addr string, exp *exporter.Exporter) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := dataplane.WriteJSON(w, exp.DebugSnapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.With("addr", addr).Info("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.With("error", err).Error("metrics server stopped unexpectedly")
		}
	}()
	return srv
}

// startDebugSignalHandler logs exp's DebugSnapshot as structured fields on
// SIGUSR1, the operational escape hatch alongside the /debug HTTP route. The
// returned func stops the handler and must be called on shutdown.
func startDebugSignalHandler(logger *logging.L, exp *exporter.Exporter) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigCh:
				snap := exp.DebugSnapshot()
				logger.With(
					"flow_table_occupancy", snap.FlowTableOccupancy,
					"flow_table_capacity", snap.FlowTableCapacity,
					"export_sequence", snap.ExportSequence,
					"pending_datagrams", snap.PendingDatagrams,
					"last_scan_duration_ms", snap.LastScanDurationMs,
				).Info("debug snapshot")
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
