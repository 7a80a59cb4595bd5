// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/rosetta/pkg/config"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/logging"
)

var (
	// Global flags
	configFile string
	logLevel   string
	logFile    string
	presetsCSV string
)

var rootCmd = &cobra.Command{
	Use:   "rosetta",
	Short: "Rosetta - ROSINA mass spectrum cleaning tool",
	Long: `Rosetta reads PDS3 .tab files from the ROSINA RTOF and DFMS detectors,
extracts the numeric payload that follows the label, removes the baseline
and outliers, and bins the result for presentation.

Results can be printed, exported to SQLite, plotted to PNG, written as a PDF
report, or served over HTTP for the upload front end.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(headerCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also append logs to this file")
	rootCmd.PersistentFlags().StringVar(&presetsCSV, "presets-csv", "", "Path to CSV file with extra filter presets")
}

// loadConfig reads the config file if one was given, then the environment,
// then the global flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if presetsCSV != "" {
		cfg.Filter.PresetsFile = presetsCSV
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.NewWriter(os.Stderr, cfg.Log.Level, cfg.Log.File)
}

// loadPresets returns the built-in presets plus those in path, if set.
func loadPresets(path string) (*filter.PresetDatabase, error) {
	db := filter.DefaultPresets()
	if path == "" {
		return db, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets file: %w", err)
	}
	defer f.Close()

	if err := db.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load presets from %s: %w", path, err)
	}
	return db, nil
}
