// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/history"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CHIT_OUTPUT_FORMAT.
const EnvPrefix = "CHIT"

// Configuration holds all configuration for chit-fund-analyzer.
type Configuration struct {
	Mode    string        `yaml:"mode,omitempty"`
	Chits   []Chit        `yaml:"chits"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Chit is one chit fund record. Either PreviousInstallments or History
// supplies the installments paid before the win under analysis.
type Chit struct {
	Name                     string
	Active                   bool
	TotalInstallments        int
	CurrentInstallmentNumber int
	FullChitValue            decimal.Decimal
	ChitFrequencyPerYear     int
	PreviousInstallments     []decimal.Decimal
	BidAmount                decimal.Decimal
	WinnerInstallmentAmount  *decimal.Decimal
	History                  []history.Record
	Sweep                    *Sweep
	Comparison               *Comparison
	// CompareFrequencies re-runs the analysis at each listed frequency.
	CompareFrequencies []int
}

// Sweep is an inclusive bid range analyzed at Count evenly spaced points.
type Sweep struct {
	MinBid decimal.Decimal
	MaxBid decimal.Decimal
	Count  int
}

// Comparison holds the assumptions for the three-way strategy comparison.
// WinInstallment and WinBidAmount default to the chit's own current
// installment and bid.
type Comparison struct {
	WinInstallment     int
	WinBidAmount       decimal.Decimal
	LumpSumRate        float64
	LateMinInstallment decimal.Decimal
	LateMaxInstallment decimal.Decimal
	SIPRate            float64
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s, %s", path, err)
	}
	return nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with CHIT_ override
// scalar settings (CHIT_MODE, CHIT_OUTPUT_FORMAT, CHIT_LOGGING_LEVEL).
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r,
// with the same defaults and environment overrides as LoadConfiguration.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yml")

	v.SetDefault("mode", constants.ModeAll)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		DecimalHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.fillHistoryNames()
	return &configuration, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// DecimalHookFunc decodes YAML numbers and numeric strings into
// decimal.Decimal. Strings keep their exact digits.
func DecimalHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(v, ",", "")))
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case int32:
			return decimal.NewFromInt32(v), nil
		case nil:
			return decimal.Zero, nil
		}
		return data, nil
	}
}

// fillHistoryNames defaults each history record's chit name to its chit.
func (conf *Configuration) fillHistoryNames() {
	for i := range conf.Chits {
		for j := range conf.Chits[i].History {
			if conf.Chits[i].History[j].ChitName == "" {
				conf.Chits[i].History[j].ChitName = conf.Chits[i].Name
			}
		}
	}
}

// ActiveChits returns the chits marked active, in file order.
func (conf *Configuration) ActiveChits() []Chit {
	var active []Chit
	for _, c := range conf.Chits {
		if c.Active {
			active = append(active, c)
		}
	}
	return active
}
