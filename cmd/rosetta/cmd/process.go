package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/rosetta/pkg/conclusion"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/pipeline"
	"github.com/ChrisMcGann/rosetta/pkg/report"
	"github.com/ChrisMcGann/rosetta/pkg/summary"
	"github.com/ChrisMcGann/rosetta/pkg/writer/sqlite"
)

var (
	// Flags for process command
	inputFile   string
	outputFile  string
	plotFile    string
	pdfFile     string
	filterLevel string
	presetName  string
	headDrop    int
	madRTOF     float64
	cpsRTOF     float64
	madDFMS     float64
	cpsDFMS     float64
	conclude    bool
	printBins   bool
)

func init() {
	processCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input .tab file (required)")
	processCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Append the run to this SQLite database")
	processCmd.Flags().StringVar(&plotFile, "plot", "", "Write a PNG plot of the spectrum")
	processCmd.Flags().StringVar(&pdfFile, "pdf", "", "Write a PDF report")
	processCmd.Flags().StringVarP(&filterLevel, "level", "l", "", "Filter level: high or low (default from config, else high)")
	processCmd.Flags().StringVarP(&presetName, "preset", "p", "", "Named filter preset (see 'rosetta presets')")
	processCmd.Flags().IntVar(&headDrop, "head-drop", 0, "Leading samples to discard (default 10 RTOF, 5 DFMS)")
	processCmd.Flags().Float64Var(&madRTOF, "mad-rtof", 0, "MAD multiplier for RTOF")
	processCmd.Flags().Float64Var(&cpsRTOF, "cps-rtof", 0, "Absolute cps threshold for RTOF")
	processCmd.Flags().Float64Var(&madDFMS, "mad-dfms", 0, "MAD multiplier for DFMS")
	processCmd.Flags().Float64Var(&cpsDFMS, "cps-dfms", 0, "Absolute cps threshold for DFMS")
	processCmd.Flags().BoolVar(&conclude, "conclude", false, "Ask the configured language model for a conclusion")
	processCmd.Flags().BoolVar(&printBins, "bins", false, "Print the binned spectrum")

	processCmd.MarkFlagRequired("in")
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Clean and summarize a .tab spectrum",
	Long: `Run the full pipeline over one .tab file: parse the label, pick the
detector, extract the numeric block, remove baseline and outliers, and bin
the result into 100 buckets.

Examples:
  # Print a summary with the strict defaults
  rosetta process --in rtof.tab

  # Permissive profile, export to SQLite and render a PDF report
  rosetta process --in dfms.tab --level low --out runs.db --pdf dfms.pdf

  # Use a preset but keep every sample
  rosetta process --in rtof.tab --preset moderate --head-drop 0`,
	RunE: runProcess,
}

// flagOverrides returns the overrides whose flags were set explicitly.
func flagOverrides(cmd *cobra.Command) filter.Overrides {
	var o filter.Overrides
	flags := cmd.Flags()
	if flags.Changed("head-drop") {
		o.HeadDrop = &headDrop
	}
	if flags.Changed("mad-rtof") {
		o.MADMultiplierRTOF = &madRTOF
	}
	if flags.Changed("cps-rtof") {
		o.CPSThresholdRTOF = &cpsRTOF
	}
	if flags.Changed("mad-dfms") {
		o.MADMultiplierDFMS = &madDFMS
	}
	if flags.Changed("cps-dfms") {
		o.CPSThresholdDFMS = &cpsDFMS
	}
	return o
}

func runProcess(cmd *cobra.Command, args []string) error {
	// Validate input file exists
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	presets, err := loadPresets(cfg.Filter.PresetsFile)
	if err != nil {
		return err
	}

	overrides := flagOverrides(cmd)
	if presetName == "" {
		presetName = cfg.Filter.Preset
	}
	if presetName != "" {
		p, ok := presets.Get(presetName)
		if !ok {
			return fmt.Errorf("unknown preset '%s'", presetName)
		}
		overrides = overrides.Merge(p.Overrides())
	}

	level := filterLevel
	if level == "" {
		level = cfg.Filter.Level
	}

	inFile, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	header, det, err := pipeline.ReadHeader(inFile)
	if err != nil {
		return err
	}
	log.Debug("label parsed", "detector", det, "detector_id", header.DetectorID, "instrument", header.InstrumentID)

	spec, err := pipeline.Process(inFile, pipeline.Options{
		FilterLevel: level,
		Overrides:   overrides,
		SourceFile:  filepath.Base(inputFile),
	})
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", inputFile, err)
	}

	sum, err := summary.Build(spec)
	if err != nil {
		return fmt.Errorf("failed to summarize %s: %w", inputFile, err)
	}

	fc := &filter.Config{Detector: det, Level: filter.ParseLevel(level), Overrides: overrides}
	params := fc.Params()

	fmt.Printf("File: %s\n", inputFile)
	fmt.Printf("Detector: %s\n", det)
	fmt.Printf("Filter level: %s\n", spec.FilterLevel)
	fmt.Printf("Head drop: %d, MAD multiplier: %g, cps threshold: %g\n", params.HeadDrop, params.MADMultiplier, params.CPSThreshold)
	fmt.Printf("Cleaned points: %d\n", sum.TotalPoints)
	fmt.Printf("m/z range: %.3f - %.3f\n", sum.XRange.Min, sum.XRange.Max)
	fmt.Printf("cps range: %.3f - %.3f\n", sum.CPSRange.Min, sum.CPSRange.Max)
	fmt.Printf("Bins: %d\n", len(sum.Bins))

	if printBins {
		for _, b := range sum.Bins {
			fmt.Printf("%12.4f %14.4f\n", b.X, b.CPS)
		}
	}

	var text string
	if conclude {
		client := conclusion.New(cfg.Conclusion)
		text, err = client.Conclude(context.Background(), det, sum.Bins)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: conclusion failed: %v\n", err)
		} else {
			fmt.Printf("\nConclusion:\n%s\n", text)
		}
	}

	var png []byte
	if plotFile != "" || pdfFile != "" {
		png, err = report.SpectrumPlot(spec, sum.Bins)
		if err != nil {
			return fmt.Errorf("failed to plot spectrum: %w", err)
		}
	}
	if plotFile != "" {
		if err := os.WriteFile(plotFile, png, 0644); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
		fmt.Printf("Plot: %s\n", plotFile)
	}
	if pdfFile != "" {
		err := report.WritePDFFile(pdfFile, &report.Report{
			Spectrum:   spec,
			Header:     header,
			Params:     params,
			Summary:    sum,
			Plot:       png,
			Conclusion: text,
		})
		if err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		fmt.Printf("Report: %s\n", pdfFile)
	}

	if outputFile != "" {
		writer, err := sqlite.NewWriter(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output database: %w", err)
		}
		defer writer.Close()

		id, err := writer.WriteRun(&sqlite.Run{
			Spectrum:   spec,
			Header:     header,
			Params:     params,
			Summary:    sum,
			Conclusion: text,
		})
		if err != nil {
			return fmt.Errorf("failed to write run: %w", err)
		}
		if err := writer.Finalize(); err != nil {
			return fmt.Errorf("failed to finalize database: %w", err)
		}
		log.Info("run stored", "db", outputFile, "run_id", id)
		fmt.Printf("Output: %s (run %d)\n", outputFile, id)
	}

	return nil
}
