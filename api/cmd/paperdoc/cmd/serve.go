package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paper-docx/api/internal/config"
	"paper-docx/api/internal/handle"
	"paper-docx/api/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Long:  `Serve /upload, /download/{name}, /v1/convert, /v1/modes, /v1/conversions and /healthz.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "5000", "listen port")
	mustBindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := handle.Options{
		Timeout:        a.cfg.RequestTimeout,
		MaxUploadBytes: a.cfg.MaxUploadMB << 20,
		Logger:         a.log,
	}
	var pinger httpserver.Pinger
	if a.repo != nil {
		opts.History = a.repo
		pinger = a.db
	}

	mux := http.NewServeMux()
	handle.New(a.orch, a.outputs, opts).Register(mux)
	mux.Handle("/healthz", httpserver.Healthz(pinger))

	return httpserver.Run(ctx, a.cfg.Addr(), mux, a.cfg.RequestTimeout, a.log)
}
