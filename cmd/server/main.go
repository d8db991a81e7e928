package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant_map/internal/cache"
	"restaurant_map/internal/config"
	"restaurant_map/internal/controllers"
	"restaurant_map/internal/logger"
	"restaurant_map/internal/middleware"
	"restaurant_map/internal/routes"
	"restaurant_map/internal/service"
	"restaurant_map/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	// Initialize structured logging to file
	accessLog := logger.Setup(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level, Stdout: cfg.Log.Stdout})
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the store
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := store.Open(openCtx, cfg)
	cancel()
	if err != nil {
		logrus.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open store")
	}
	defer st.Close()

	hub := controllers.NewChangeHub()
	defer hub.Close()

	svc := service.New(st, cache.New(cfg.Redis), hub, service.WithSnapshotMaxAge(cfg.DatasetMaxAge))
	auth := middleware.NewAuth(cfg.Auth)
	if !auth.Enabled() {
		logrus.Warn("JWT_SECRET not set, record editing is open to everyone")
	}

	r := routes.SetupRouter(routes.Deps{
		Service:        svc,
		Hub:            hub,
		Auth:           auth,
		AccessLog:      accessLog,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":   cfg.HTTPAddr,
			"driver": cfg.StoreDriver,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
