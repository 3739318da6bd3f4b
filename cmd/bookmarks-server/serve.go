package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/auth"
	"github.com/mikepea/bookmarks/pkg/bookmarks/database"
	"github.com/mikepea/bookmarks/pkg/bookmarks/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			defer func() { _ = database.Close(db) }()

			if cfg.UsesDevSecret() {
				log.Warn("JWT_SECRET is not set, using the development secret")
			}

			gin.SetMode(cfg.Server.GinMode)
			router := server.NewRouter(server.Options{
				DB:              db,
				Logger:          log,
				Tokens:          auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
				BaseURL:         cfg.Server.BaseURL,
				ShortCodeLength: cfg.App.ShortCodeLength,
				Swagger:         true,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(":"+cfg.Server.Port, router, log,
				cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout)
			log.Info("serving",
				zap.String("port", cfg.Server.Port),
				zap.String("base_url", cfg.Server.BaseURL),
			)
			return srv.Run(ctx)
		},
	}
}

