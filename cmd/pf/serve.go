package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"planforge/internal/app"
	"planforge/internal/logging"
	"planforge/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			a, err := app.Open(cmd.Context(), app.Options{
				Workspace:  viper.GetString("workspace"),
				Config:     cfg,
				Logger:     log,
				Registerer: reg,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			handler, err := server.New(server.Config{
				Gateways: a.Gateways,
				Store:    a.Store,
				BasePath: cfg.Server.BasePath,
				Auth:     server.AuthConfig{JWTSecret: cfg.Server.JWTSecret},
				Limit:    server.LimitConfig{Rate: cfg.Server.RateLimit, Burst: cfg.Server.RateBurst},
				Logger:   log,
				Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			})
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			if cfg.Server.JWTSecret == "" {
				log.Warn("bearer auth disabled; set server.jwt_secret or PLANFORGE_SERVER_JWT_SECRET")
			}
			log.Info("serving planforge API",
				zap.String("addr", cfg.Server.Addr),
				zap.String("base_path", cfg.Server.BasePath),
				zap.String("docs", cfg.Server.BasePath+"/docs"),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides config)")
	cmd.Flags().String("base-path", "", "API base path (overrides config)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.base_path", cmd.Flags().Lookup("base-path"))
	return cmd
}
