package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/rosetta/pkg/conclusion"
	"github.com/ChrisMcGann/rosetta/pkg/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config and ROSETTA_ADDR)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload API over HTTP",
	Long: `Start the HTTP API used by the upload front end.

Routes:
  GET  /          service status
  GET  /health    liveness probe
  GET  /presets   filter presets
  POST /process   multipart upload of a .tab file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
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

		client := conclusion.New(cfg.Conclusion)
		if !client.Configured() {
			log.Warn("OPENAI_API_KEY is not set; conclusions are disabled")
		} else {
			log.Info("conclusions enabled", "prompt_id", cfg.Conclusion.PromptID)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(cfg, presets, client, log).ListenAndServe(ctx)
	},
}
