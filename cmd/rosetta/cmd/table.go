package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
	"github.com/ChrisMcGann/rosetta/pkg/reader/table"
)

var tableRows int

func init() {
	tableCmd.Flags().IntVarP(&tableRows, "rows", "n", 10, "Rows to print (0 = all rows declared by ROWS)")
}

var tableCmd = &cobra.Command{
	Use:   "table [file]",
	Short: "Read the fixed-width table declared in the label",
	Long: `Resolve the column schema from the label (COLUMN blocks, or COLUMNS and
ROW_BYTES), read the records following the label and print the first rows
together with the inferred mass and signal columns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		h, err := label.Read(f)
		if err != nil {
			return err
		}

		schema := table.ResolveSchema(h)
		if len(schema) == 0 {
			return fmt.Errorf("label declares no columns; fixed-width reading is not possible")
		}
		recordBytes := label.Int(h.RecordBytes, label.Int(h.RowBytes, 0))
		if recordBytes <= 0 {
			return fmt.Errorf("label declares no RECORD_BYTES")
		}
		startRecord := label.Int(h.LabelRecords, 0) + 1

		maxRows := tableRows
		if rows := label.Int(h.Rows, 0); rows > 0 && (maxRows == 0 || maxRows > rows) {
			maxRows = rows
		}

		t, err := table.Read(f, schema, recordBytes, startRecord, maxRows)
		if err != nil {
			return err
		}

		fmt.Printf("Columns: %s\n", strings.Join(t.Columns, ", "))
		if x, y, err := table.PickXYColumns(t.Columns); err == nil {
			fmt.Printf("Mass column: %s, signal column: %s, numeric samples: %d\n", x, y, len(table.Samples(t, x, y)))
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		fmt.Printf("Rows read: %d\n", len(t.Rows))

		for _, row := range t.Rows {
			values := make([]string, len(t.Columns))
			for i, c := range t.Columns {
				values[i] = row[c]
			}
			fmt.Println(strings.Join(values, "\t"))
		}
		return nil
	},
}
