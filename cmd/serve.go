/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/josephgoksu/muse/internal/config"
	"github.com/josephgoksu/muse/internal/server"
	"github.com/josephgoksu/muse/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the personas over HTTP",
	Long: `Start the HTTP server. Every persona is available at

  GET  /agents/<persona>?chatQuery=...
  POST /agents/<persona>?chatQuery=...

and answers with an HTML page. The provider API key is read from the
server configuration, never from the request.

Examples:
  muse serve                 # Listen on the configured port (default 5001)
  muse serve --port 8080     # Use custom port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "HTTP server port")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	tel, err := telemetry.New(telemetry.ClientConfig{
		APIKey:   a.cfg.Telemetry.APIKey,
		Endpoint: a.cfg.Telemetry.Endpoint,
		Version:  GetVersion(),
	})
	if err != nil {
		slog.Warn("telemetry disabled", "error", err)
		tel = telemetry.NewNoopClient()
	}

	srv := server.New(server.Config{
		Port:    a.cfg.Server.Port,
		Origins: a.cfg.Server.Origins,
		Version: GetVersion(),
	}, a.agents, server.SecretFunc(a.credential),
		server.WithTelemetry(tel),
		server.WithLogger(slog.Default()),
	)

	fmt.Printf("Muse %s listening on http://localhost:%d\n", GetVersion(), a.cfg.Server.Port)
	for _, id := range a.agents.IDs() {
		fmt.Printf("  /agents/%s\n", id)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		fmt.Printf("\nReceived %v, shutting down...\n", sig)
	case runErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownSec*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}

	wg.Wait()
	return runErr
}
