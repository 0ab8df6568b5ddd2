package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowexport/ipfixd/pkg/config"
)

func TestNewRootCmd(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		configContent string
		expectError   bool
		check         func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "all flags set",
			args: []string{
				"--exporter.ip=10.0.0.1",
				"--exporter.port=9999",
				"--exporter.observation_domain_id=7",
				"--collector.ip=10.0.0.2",
				"--collector.port=4739",
				"--timeouts.idle_ms=5000",
				"--timeouts.active_ms=20000",
				"--timeouts.scan_period_ms=2000",
				"--flow_table.capacity=1024",
				"--logging.level=debug",
				"--logging.encoding=json",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "10.0.0.1", cfg.Exporter.IP)
				assert.EqualValues(t, 9999, cfg.Exporter.Port)
				assert.EqualValues(t, 7, cfg.Exporter.ObservationDomainID)
				assert.Equal(t, "10.0.0.2", cfg.Collector.IP)
				assert.EqualValues(t, 4739, cfg.Collector.Port)
				assert.EqualValues(t, 5000, cfg.Timeouts.IdleMs)
				assert.EqualValues(t, 20000, cfg.Timeouts.ActiveMs)
				assert.EqualValues(t, 1024, cfg.FlowTable.Capacity)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Encoding)
			},
		},
		{
			name: "defaults apply when unset",
			args: []string{
				"--exporter.ip=10.0.0.1",
				"--collector.ip=10.0.0.2",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.EqualValues(t, config.DefaultCollectorPort, cfg.Collector.Port)
				assert.EqualValues(t, config.DefaultIdleTimeoutMs, cfg.Timeouts.IdleMs)
				assert.EqualValues(t, config.DefaultFlowTableCapacity, cfg.FlowTable.Capacity)
			},
		},
		{
			name: "invalid configuration rejected",
			args: []string{
				"--exporter.ip=not-an-ip",
				"--collector.ip=10.0.0.2",
			},
			expectError: true,
		},
		{
			name: "config file is honored",
			configContent: `
exporter:
  ip: 10.1.1.1
  port: 100
collector:
  ip: 10.1.1.2
  port: 4739
`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "10.1.1.1", cfg.Exporter.IP)
				assert.Equal(t, "10.1.1.2", cfg.Collector.IP)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()

			args := append([]string{}, tt.args...)
			if tt.configContent != "" {
				dir := t.TempDir()
				path := filepath.Join(dir, "ipfixd.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.configContent), 0644))
				args = append([]string{"--config=" + path}, args...)
			}

			var captured *config.Config
			called := false
			testRun := func(ctx context.Context, cfg *config.Config) error {
				called = true
				captured = cfg
				return nil
			}

			rootCmd, err := newRootCmd(testRun)
			require.NoError(t, err)

			rootCmd.SetArgs(args)
			err = rootCmd.Execute()

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, called, "runFunc should have been invoked")
			require.NotNil(t, captured)
			if tt.check != nil {
				tt.check(t, captured)
			}
		})
	}
}
