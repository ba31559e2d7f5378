package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/generate"
	"github.com/sells-group/ops-cockpit/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scored tables and scenarios over HTTP",
	Long:  "Starts a JSON/CSV data API. Each session owns its tables and scenario library; a first session is opened over the input tables at startup.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tables, source, err := loadTables(ctx)
		if err != nil {
			return err
		}
		genOpts, err := generatorOptions()
		if err != nil {
			return err
		}

		mgr := session.NewManager(session.ManagerConfig{
			DSN:         cfg.Session.DSN,
			MaxSessions: cfg.Session.MaxSessions,
			Options:     pipelineOptions(),
		})
		defer mgr.Close() //nolint:errcheck

		first, err := mgr.Create(ctx, tables, source)
		if err != nil {
			return err
		}

		api := &server{
			mgr:        mgr,
			locale:     cfg.Export.Locale,
			csv:        csvOptions(),
			base:       tables,
			baseSource: source,
			generateFn: generate.All,
			genOpts:    genOpts,
			maxDays:    cfg.Data.MaxDays,
			now:        time.Now,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.routes(cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.String("session_id", first.ID))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
