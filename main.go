package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"welltracker/pkg/api"
	"welltracker/pkg/config"
	"welltracker/pkg/journal"
	"welltracker/pkg/schema"
	"welltracker/pkg/sheets"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath    string
	verbose       bool
	listenAddress string
	cfg           *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "welltracker",
	Short:        "Serve the well workbook over HTTP",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		if verbose {
			cfg.Log.Level = "debug"
		}
		return config.InitLogger(cfg.Log)
	},
	RunE: serve,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./welltracker.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.Flags().StringVar(&listenAddress, "addr", "", "listen address (default from config)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, args []string) error {
	s, err := schema.Load(cfg.Workbook.Schema)
	if err != nil {
		return err
	}

	opts := []sheets.Option{sheets.WithLockTimeout(cfg.Workbook.LockTimeout)}
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		if err := j.Migrate(cmd.Context()); err != nil {
			return err
		}
		opts = append(opts, sheets.WithRecorder(j))
		log.WithField("path", cfg.Journal.Path).Info("Journalling mutations")
	}
	client := sheets.NewClient(cfg.Workbook.Path, s, opts...)

	router := api.GetRouter(client, api.Options{
		DeletedSheet:  s.DeletedSheet,
		ResolvedSheet: s.ResolvedSheet,
		RateLimit:     cfg.Server.RateLimit,
		RateBurst:     cfg.Server.RateBurst,
		CORSOrigins:   cfg.Server.CORSOrigins,
	})

	addr := listenAddress
	if addr == "" {
		addr = cfg.Server.Addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go startServer(server, serverErr)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-signalChan:
		log.Info("Signalled, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return eris.Wrap(server.Shutdown(ctx), "server shutdown")
}

func startServer(server *http.Server, errs chan<- error) {
	log.WithField("workbook", cfg.Workbook.Path).Infof("Listening for HTTP on: %s", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		errs <- eris.Wrap(err, "server listen")
	}
}
