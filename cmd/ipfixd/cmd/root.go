// Package cmd contains the ipfixd command line interface implementation.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowexport/ipfixd/pkg/config"
	"github.com/flowexport/ipfixd/pkg/logging"
)

const shutdownGracePeriod = 10 * time.Second

// Execute builds and runs the ipfixd root command.
func Execute() error {
	rootCmd, err := newRootCmd(run)
	if err != nil {
		return err
	}
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd.Execute()
}

// runFunc is the type of the function invoked once the root command's flags
// and configuration are parsed. Defined separately so tests can substitute
// a stub without going through cobra.
type runFunc func(ctx context.Context, cfg *config.Config) error

func newRootCmd(run runFunc) (*cobra.Command, error) {
	cfg := config.New()

	rootCmd := &cobra.Command{
		Use:   "ipfixd",
		Short: "ipfixd accounts IPv4 flows and exports them as IPFIX",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfg); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return initLogging(cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	if err := registerFlags(rootCmd, cfg); err != nil {
		return nil, fmt.Errorf("failed to register flags: %w", err)
	}
	return rootCmd, nil
}

const (
	flagConfigFile = "config"

	exporterKey       = "exporter"
	flagExporterIP    = exporterKey + ".ip"
	flagExporterPort  = exporterKey + ".port"
	flagObservationID = exporterKey + ".observation_domain_id"

	collectorKey  = "collector"
	flagCollector = collectorKey + ".ip"
	flagCollPort  = collectorKey + ".port"

	timeoutsKey     = "timeouts"
	flagIdleMs      = timeoutsKey + ".idle_ms"
	flagActiveMs    = timeoutsKey + ".active_ms"
	flagScanMs      = timeoutsKey + ".scan_period_ms"
	flagTableKey    = "flow_table"
	flagCapacity    = flagTableKey + ".capacity"
	loggingKey      = "logging"
	flagLogLevel    = loggingKey + ".level"
	flagLogEncoding = loggingKey + ".encoding"
	metricsKey      = "metrics"
	flagMetricsAddr = metricsKey + ".addr"

	flagReplayFile = "replay"
)

func registerFlags(cmd *cobra.Command, cfg *config.Config) error {
	pflags := cmd.PersistentFlags()

	pflags.String(flagConfigFile, "", "path to a YAML configuration file")

	pflags.StringVar(&cfg.Exporter.IP, flagExporterIP, cfg.Exporter.IP, "IPv4 address this exporter sources datagrams from")
	pflags.Uint16Var(&cfg.Exporter.Port, flagExporterPort, cfg.Exporter.Port, "UDP source port for exported datagrams")
	pflags.Uint32Var(&cfg.Exporter.ObservationDomainID, flagObservationID, cfg.Exporter.ObservationDomainID, "IPFIX observation domain ID")

	pflags.StringVar(&cfg.Collector.IP, flagCollector, cfg.Collector.IP, "collector IPv4 address")
	pflags.Uint16Var(&cfg.Collector.Port, flagCollPort, cfg.Collector.Port, "collector UDP port")

	pflags.Int64Var(&cfg.Timeouts.IdleMs, flagIdleMs, cfg.Timeouts.IdleMs, "idle expiry threshold in milliseconds")
	pflags.Int64Var(&cfg.Timeouts.ActiveMs, flagActiveMs, cfg.Timeouts.ActiveMs, "active rotation threshold in milliseconds")
	pflags.Int64Var(&cfg.Timeouts.ScanPeriodMs, flagScanMs, cfg.Timeouts.ScanPeriodMs, "expiration scan period in milliseconds")

	pflags.IntVar(&cfg.FlowTable.Capacity, flagCapacity, cfg.FlowTable.Capacity, "fixed flow table capacity")

	pflags.StringVar(&cfg.Logging.Level, flagLogLevel, cfg.Logging.Level, "log level (debug, info, warn, error)")
	pflags.StringVar(&cfg.Logging.Encoding, flagLogEncoding, cfg.Logging.Encoding, "log encoding (logfmt, json, plain)")

	pflags.StringVar(&cfg.Metrics.Addr, flagMetricsAddr, cfg.Metrics.Addr, "address to serve Prometheus metrics on, empty disables it")

	pflags.String(flagReplayFile, "", "path to a framed packet-replay file to ingest instead of live capture")

	return viper.BindPFlags(pflags)
}

// initConfig loads, in increasing precedence order: defaults already baked
// into cfg, a config file (if --config or IPFIXD_CONFIG is set), environment
// variables (IPFIXD_ prefix, dots/dashes mapped to underscores), and flags.
func initConfig(cfg *config.Config) error {
	viper.SetEnvPrefix("ipfixd")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	path := viper.GetString(flagConfigFile)
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	// Config fields carry yaml tags (shared with pkg/config's direct
	// yaml.v3 file parsing), so the mapstructure decoder is told to read
	// those instead of falling back to bare field-name matching.
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	return nil
}

func initLogging(cfg *config.Config) error {
	return logging.Init(
		logging.LevelFromString(cfg.Logging.Level),
		logging.Encoding(cfg.Logging.Encoding),
		logging.WithVersion(versionShort()),
	)
}

func replayFilePath() string {
	return viper.GetString(flagReplayFile)
}

// signalContext derives a context cancelled on SIGINT/SIGTERM, mirroring the
// teacher's run(ctx, cfg) shutdown handshake.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
}
