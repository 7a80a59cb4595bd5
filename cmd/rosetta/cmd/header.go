package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/rosetta/pkg/pipeline"
	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
	"github.com/ChrisMcGann/rosetta/pkg/reader/tab"
)

var headerCmd = &cobra.Command{
	Use:   "header [file]",
	Short: "Print the label fields and detector of a .tab file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		h, det, err := pipeline.ReadHeader(f)
		if err != nil {
			return err
		}

		fmt.Printf("Detector: %s\n", det)
		printField("DETECTOR_ID", h.DetectorID)
		printField("INSTRUMENT_ID", h.InstrumentID)
		printField("INSTRUMENT_MODE_ID", h.InstrumentModeID)
		printField("PRODUCT_ID", h.ProductID)
		printField("START_TIME", h.StartTime)
		printField("STOP_TIME", h.StopTime)
		printField("DATA_QUALITY_ID", h.DataQualityID)
		printInt("RECORD_BYTES", h.RecordBytes)
		printInt("LABEL_RECORDS", h.LabelRecords)
		printInt("ROWS", h.Rows)
		printInt("COLUMNS", h.Columns)
		printInt("ROW_BYTES", h.RowBytes)
		printField("^STRUCTURE", h.StructureFile)
		return nil
	},
}

var blocksCmd = &cobra.Command{
	Use:   "blocks [file]",
	Short: "List the candidate numeric blocks after the END line",
	Long: `List every run of numeric lines found after the label, with the number of
samples each yields for the detected detector. The block with the most
samples is the one 'process' uses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		content, err := label.ReadContent(f)
		if err != nil {
			return err
		}
		det := label.Parse(content).Detector()
		xCol, yCol := det.Columns()

		reader := tab.NewReader(content, det)
		fmt.Printf("Detector: %s (columns %d, %d)\n", det, xCol, yCol)
		fmt.Printf("Candidate blocks: %d\n", reader.Len())

		best, bestCount := -1, 0
		for i := 0; reader.Next(); i++ {
			block := reader.Block()
			n := len(reader.Samples())
			fmt.Printf("  block %d: %d lines, %d samples, first line %q\n", i+1, len(block), n, truncate(block[0], 60))
			if n > bestCount {
				best, bestCount = i, n
			}
		}
		if best >= 0 {
			fmt.Printf("Selected: block %d\n", best+1)
		}
		return nil
	},
}

func printField(key, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Printf("%-20s %s\n", key, value)
}

func printInt(key string, v *int) {
	if v == nil {
		printField(key, "")
		return
	}
	printField(key, fmt.Sprintf("%d", *v))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
