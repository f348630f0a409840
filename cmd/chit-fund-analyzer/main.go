package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/analysis"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/config"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/logging"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/output"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	envFile := flag.String("env-file", constants.DefaultEnvFile, "optional file of CHIT_* environment overrides")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	modeFlag := flag.String("mode", "", "analysis override: analyze, sweep, compare, all")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file %s\", \"error\": \"%v\"}\n", *envFile, err)
		os.Exit(1)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI overrides take precedence over the configuration file
	if *modeFlag != "" {
		conf.Mode = *modeFlag
	}
	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	reports, err := analysis.Run(logger, *conf)
	if err != nil {
		logger.Fatal("failed to analyze chits",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch conf.Output.Format {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, reports)
	case constants.OutputFormatCSV:
		if err := output.CsvFormat(os.Stdout, reports); err != nil {
			logger.Fatal("failed to write csv output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
