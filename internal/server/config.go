package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/config"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the chit analysis API server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	ShutdownTimeout string               `yaml:"shutdownTimeout"`
	Limits          Limits               `yaml:"limits"`
	Logging         config.LoggingConfig `yaml:"logging"`
	uploadSizeBytes int64
	shutdownTimeout time.Duration
}

// Limits bound the work a single request may ask of the engine.
type Limits struct {
	// MaxSweepCount caps the bids in one sweep, whether requested on
	// /api/sweep or configured for a chit in an uploaded file.
	MaxSweepCount int `yaml:"maxSweepCount"`

	// MaxChits caps the chits in one uploaded configuration.
	MaxChits int `yaml:"maxChits"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSweepCount: constants.DefaultMaxSweepCount,
		MaxChits:      constants.DefaultMaxUploadChits,
	}
}

// DefaultConfig returns the server configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		ShutdownTimeout: constants.DefaultShutdownTimeout.String(),
		Limits:          DefaultLimits(),
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
		shutdownTimeout: constants.DefaultShutdownTimeout,
	}
}

// LoadConfig reads the server configuration from YAML. A missing file yields
// the defaults without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the request body limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// ShutdownTimeoutDuration returns how long in-flight requests may run after
// a shutdown signal.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return c.shutdownTimeout
}

// SetUploadSizeBytes overrides the request body limit.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	timeout, err := parseShutdownTimeout(c.ShutdownTimeout)
	if err != nil {
		return err
	}
	c.shutdownTimeout = timeout
	c.ShutdownTimeout = timeout.String()

	if err := c.Limits.normalize(); err != nil {
		return err
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)
	return nil
}

func parseShutdownTimeout(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultShutdownTimeout, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout %q: %w", trimmed, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("shutdownTimeout must be positive, got %s", trimmed)
	}
	return d, nil
}

// normalize fills unset limits with defaults and rejects negative ones.
func (l *Limits) normalize() error {
	if l.MaxSweepCount < 0 {
		return fmt.Errorf("limits.maxSweepCount must not be negative, got %d", l.MaxSweepCount)
	}
	if l.MaxChits < 0 {
		return fmt.Errorf("limits.maxChits must not be negative, got %d", l.MaxChits)
	}
	if l.MaxSweepCount == 0 {
		l.MaxSweepCount = constants.DefaultMaxSweepCount
	}
	if l.MaxChits == 0 {
		l.MaxChits = constants.DefaultMaxUploadChits
	}
	return nil
}

// checkConfiguration reports the first way an uploaded configuration asks
// for more than the limits allow.
func (l Limits) checkConfiguration(conf *config.Configuration) error {
	if len(conf.Chits) > l.MaxChits {
		return fmt.Errorf("configuration has %d chits, limit is %d", len(conf.Chits), l.MaxChits)
	}
	for _, c := range conf.Chits {
		if c.Sweep != nil && c.Sweep.Count > l.MaxSweepCount {
			return fmt.Errorf("chit %s sweeps %d bids, limit is %d", c.Name, c.Sweep.Count, l.MaxSweepCount)
		}
	}
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
