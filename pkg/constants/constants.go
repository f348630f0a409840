// Package constants provides shared constants for the chit-fund-analyzer application.
package constants

import "time"

// Chit frequencies, expressed as installment periods per year.
const (
	// MonthlyFrequency is twelve installments a year
	MonthlyFrequency = 12

	// QuarterlyFrequency is four installments a year
	QuarterlyFrequency = 4

	// HalfYearlyFrequency is two installments a year
	HalfYearlyFrequency = 2

	// AnnualFrequency is one installment a year
	AnnualFrequency = 1

	// MinFrequencyPerYear is the lowest accepted chit frequency
	MinFrequencyPerYear = 1

	// MaxFrequencyPerYear is the highest accepted chit frequency
	MaxFrequencyPerYear = 12

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Chit rules
const (
	// WinnerInstallmentCeilingFactor bounds an explicit winner installment to
	// this multiple of the naive per-period share.
	WinnerInstallmentCeilingFactor = 2

	// LateWinMinimalBid is the near-zero discount assumed when the pool is
	// taken at the last installment.
	LateWinMinimalBid = 1000

	// DefaultSweepCount is the number of bids generated when a sweep range
	// omits a count.
	DefaultSweepCount = 10
)

// IRR solver parameters
const (
	// IRRInitialGuess is the periodic rate the root search is centred on
	IRRInitialGuess = 0.1

	// IRRLowerBound keeps the discount factor 1/(1+r) finite
	IRRLowerBound = -0.99

	// IRRUpperBound is the widest rate the bracket search will reach
	IRRUpperBound = 1e6

	// IRRInitialHalfWidth is the half-width of the first search window
	IRRInitialHalfWidth = 0.1

	// IRRScanSegments is the number of grid cells scanned per window
	IRRScanSegments = 256

	// IRRMaxIterations caps the refinement of a single bracket
	IRRMaxIterations = 200

	// IRRTolerance is the convergence tolerance on the rate
	IRRTolerance = 1e-12
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Run modes
const (
	ModeAnalyze = "analyze"
	ModeSweep   = "sweep"
	ModeCompare = "compare"
	ModeAll     = "all"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultEnvFile is loaded, when present, before the environment is read
	DefaultEnvFile = ".env"
)

// Server configuration defaults
const (
	// DefaultShutdownTimeout bounds graceful shutdown of the API server
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultMaxSweepCount caps the bids one API request may sweep
	DefaultMaxSweepCount = 1000

	// DefaultMaxUploadChits caps the chits in one uploaded configuration
	DefaultMaxUploadChits = 50
)

// Money constants
const (
	// DecimalPlaces is the number of places currency is rounded to for display
	DecimalPlaces = 2

	// CurrencySymbol prefixes formatted amounts
	CurrencySymbol = "₹"

	// NetPaymentTolerance is the slack allowed when reconciling a history
	// record's net payment against installment minus dividend.
	NetPaymentTolerance = 1.0
)
