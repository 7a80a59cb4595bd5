package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available filter presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := loadPresets(cfg.Filter.PresetsFile)
		if err != nil {
			return err
		}

		fmt.Printf("%-14s %9s %9s %9s %9s %9s\n", "NAME", "HEAD", "MAD_RTOF", "CPS_RTOF", "MAD_DFMS", "CPS_DFMS")
		for _, name := range db.Names() {
			p, _ := db.Get(name)
			fmt.Printf("%-14s %9d %9g %9g %9g %9g\n",
				p.Name, p.HeadDrop, p.MADMultiplierRTOF, p.CPSThresholdRTOF, p.MADMultiplierDFMS, p.CPSThresholdDFMS)
		}
		return nil
	},
}
