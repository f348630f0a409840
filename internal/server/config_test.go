package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/config"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServerConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, constants.DefaultServerAddress, cfg.Address)
		assert.Equal(t, constants.DefaultMaxUploadSizeBytes, cfg.UploadSizeBytes())
		assert.Equal(t, constants.DefaultShutdownTimeout, cfg.ShutdownTimeoutDuration())
		assert.Equal(t, DefaultLimits(), cfg.Limits)
		assert.Equal(t, config.LoggingConfig{}, cfg.Logging)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeServerConfig(t, `address: 127.0.0.1:9000
maxUploadSize: 2M
shutdownTimeout: 30s
limits:
  maxSweepCount: 250
  maxChits: 5
logging:
  level: debug
  format: console
  outputFile: /tmp/chit-server.log
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Address)
	assert.Equal(t, int64(2*1024*1024), cfg.UploadSizeBytes())
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeoutDuration())
	assert.Equal(t, Limits{MaxSweepCount: 250, MaxChits: 5}, cfg.Limits)
	assert.Equal(t, config.LoggingConfig{Level: "debug", Format: "console", OutputFile: "/tmp/chit-server.log"}, cfg.Logging)
}

func TestLoadConfigPartialLimits(t *testing.T) {
	cfg, err := LoadConfig(writeServerConfig(t, "limits:\n  maxChits: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Limits.MaxChits)
	assert.Equal(t, constants.DefaultMaxSweepCount, cfg.Limits.MaxSweepCount)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{"bad upload size", "maxUploadSize: invalid", "invalid size"},
		{"unknown size unit", "maxUploadSize: 1TB", "unsupported size unit"},
		{"unparseable shutdown timeout", "shutdownTimeout: soon", "invalid shutdownTimeout"},
		{"negative shutdown timeout", "shutdownTimeout: -5s", "must be positive"},
		{"negative sweep limit", "limits:\n  maxSweepCount: -1", "maxSweepCount"},
		{"negative chit limit", "limits:\n  maxChits: -2", "maxChits"},
		{"malformed yaml", "address: [unterminated", "failed to parse server config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeServerConfig(t, tt.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetUploadSizeBytes(0)
	assert.Equal(t, constants.DefaultMaxUploadSizeBytes, cfg.UploadSizeBytes())

	cfg.SetUploadSizeBytes(4096)
	assert.Equal(t, int64(4096), cfg.UploadSizeBytes())
	assert.Equal(t, "4096", cfg.MaxUploadSize)
}

func TestLimitsCheckConfiguration(t *testing.T) {
	sweepOf := func(count int) *config.Sweep {
		return &config.Sweep{MinBid: decimal.NewFromInt(1000), MaxBid: decimal.NewFromInt(5000), Count: count}
	}
	limits := Limits{MaxSweepCount: 20, MaxChits: 2}

	tests := []struct {
		name    string
		chits   []config.Chit
		wantErr string
	}{
		{"within limits", []config.Chit{{Name: "A", Sweep: sweepOf(20)}, {Name: "B"}}, ""},
		{"default sweep count", []config.Chit{{Name: "A", Sweep: sweepOf(0)}}, ""},
		{"too many chits", []config.Chit{{Name: "A"}, {Name: "B"}, {Name: "C"}}, "3 chits, limit is 2"},
		{"oversized sweep", []config.Chit{{Name: "A"}, {Name: "B", Sweep: sweepOf(21)}}, "chit B sweeps 21 bids"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.checkConfiguration(&config.Configuration{Chits: tt.chits})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		require.NoErrorf(t, err, "ParseSize(%q)", input)
		assert.Equalf(t, expected, got, "ParseSize(%q)", input)
	}

	_, err := ParseSize("1TB")
	assert.Error(t, err)
	_, err = ParseSize("abc")
	assert.Error(t, err)
}
