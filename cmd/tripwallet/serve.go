package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tripwallet/internal/cache"
	"tripwallet/internal/httpapi"
	"tripwallet/internal/log"
	"tripwallet/internal/storage"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.repo.SeedCountries(ctx, storage.DefaultCountries); err != nil {
				return err
			}

			caches := cache.NewManager()
			for _, c := range a.svc.Caches() {
				caches.Register(c)
			}
			caches.Register(a.resolver.Cache())
			caches.StartCleanup(time.Minute)
			defer caches.Stop()

			srv := &http.Server{
				Addr:           ":" + a.cfg.Port,
				Handler:        httpapi.NewRouter(a.svc, a.logger),
				ReadTimeout:    10 * time.Second,
				WriteTimeout:   10 * time.Second,
				IdleTimeout:    60 * time.Second,
				MaxHeaderBytes: 1 << 16,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Server starting", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				a.logger.Info("Shutdown signal received", "signal", sig.String())
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Server shutdown error", log.FieldError, err)
				return err
			}
			a.logger.Info("Server stopped")
			return nil
		},
	}
}
