package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-enhancer/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing POST /enhance, POST /enhance/stream, POST /classify,
POST /decompose and GET /health. Rate limits come from RATE_LIMIT_* variables.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(configPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	a, err := newApp(cmd.Context(), cfg, logger, appOptions{persistent: true})
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Config{
		Port:    cfg.Port,
		Service: a.service,
		Logger:  logger.Named("server"),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
