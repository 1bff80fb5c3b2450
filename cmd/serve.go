package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baltlens/registry-cli/internal/server"
	"github.com/baltlens/registry-cli/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sessions := session.NewManager(cfg.Session.SessionTTL())

		// Periodic cleanup of idle sessions and expired cache rows.
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := sessions.Sweep(); n > 0 {
						zap.L().Info("swept idle sessions", zap.Int("count", n))
					}
					if n, err := st.DeleteExpiredCache(ctx); err == nil && n > 0 {
						zap.L().Info("purged expired cache rows", zap.Int("count", n))
					}
				}
			}
		}()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(server.Options{
			Port:           port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Register:       initRegister(),
			Store:          st,
			Sessions:       sessions,
			ProfileTTL:     cfg.Cache.ProfileTTL(),
			ScenarioTTL:    cfg.Cache.ScenarioTTL(),
		})
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
