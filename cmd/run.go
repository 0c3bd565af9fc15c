package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/storeit-dev/storeit/api"
	"github.com/storeit-dev/storeit/internal/blobstore"
	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/internal/config"
	"github.com/storeit-dev/storeit/internal/database"
	"github.com/storeit-dev/storeit/internal/logging"
	"github.com/storeit-dev/storeit/pkg/controller"
	"github.com/storeit-dev/storeit/pkg/services"
	"go.uber.org/zap/zapcore"
)

func NewRun() *cobra.Command {
	var cfg config.ServerCmdConfig
	loader := config.NewConfigLoader()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the StoreIt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplication(cmd.Context(), &cfg)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.InitializeConfig(cmd); err != nil {
				return err
			}
			if err := loader.Load(&cfg); err != nil {
				return err
			}
			return cfg.Validate()
		},
	}

	flags := cmd.Flags()
	config.AddCommonFlags(flags, &cfg)
	flags.IntVarP(&cfg.Server.Port, "port", "p", 8080, "Server port")
	flags.DurationVar(&cfg.Server.GracefulShutdown, "graceful-shutdown", 15*time.Second, "Shutdown grace period")
	flags.DurationVar(&cfg.Server.ReadTimeout, "read-timeout", time.Minute, "Server read timeout")
	flags.DurationVar(&cfg.Server.WriteTimeout, "write-timeout", time.Minute, "Server write timeout")
	return cmd
}

func runApplication(ctx context.Context, conf *config.ServerCmdConfig) error {
	lvl, err := zapcore.ParseLevel(conf.Log.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	logging.SetConfig(&logging.Config{
		Level:    lvl,
		FilePath: conf.Log.File,
	})

	logger := logging.DefaultLogger()
	lg := logger.Sugar()
	defer lg.Sync()

	cacher := cache.NewCache(ctx, &conf.Cache)

	db, err := database.NewDatabase(&conf.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.MigrateDB(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	blobs, err := blobstore.NewMinioStore(ctx, &conf.Blob)
	if err != nil {
		return fmt.Errorf("failed to connect blob store: %w", err)
	}

	refresher := services.NewViewRefresher(cacher)
	authService := services.NewAuthService(db, cacher, &conf.JWT)
	fileService := services.NewFileService(db, blobs, cacher, refresher)
	c := controller.NewController(conf, authService, fileService)

	gin.SetMode(gin.ReleaseMode)
	router := api.InitRouter(logger, conf, db, cacher, c)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Server.Port),
		Handler:           router,
		ReadTimeout:       conf.Server.ReadTimeout,
		WriteTimeout:      conf.Server.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		lg.Infof("Server started at http://localhost:%d", conf.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Errorw("failed to start server", "err", err)
		}
	}()

	<-ctx.Done()

	lg.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.Server.GracefulShutdown)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Errorw("server shutdown failed", "err", err)
	}

	lg.Info("Server stopped")
	return nil
}
