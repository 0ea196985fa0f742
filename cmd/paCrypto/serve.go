// Copyright (C) 2025 wultra
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wultra/powerauth-crypto-core/health"
	"github.com/wultra/powerauth-crypto-core/internal/logger"
	"github.com/wultra/powerauth-crypto-core/internal/metrics"
	"github.com/wultra/powerauth-crypto-core/primitives"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Mount the /metrics and /health endpoints the loaded config describes",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides config.metrics.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	checker := health.NewHealthChecker(5 * time.Second)
	checker.RegisterCheck("rng", health.RNGHealthCheck(func() ([]byte, error) {
		return primitives.RandomBytes(16)
	}))
	checker.RegisterCheck("counter-store", health.CounterStoreHealthCheck(func(ctx context.Context) error {
		// The counter/activation persistence backend is the surrounding
		// collaborator's responsibility (§2 Out of scope); this checker
		// has nothing of its own to ping and reports healthy so the
		// aggregate status reflects only what this process can observe.
		return nil
	}))

	metricsPath := "/metrics"
	healthPath := "/health"
	addr := serveAddr
	if loadedConfig != nil {
		if loadedConfig.Metrics != nil && loadedConfig.Metrics.Path != "" {
			metricsPath = loadedConfig.Metrics.Path
		}
		if loadedConfig.Health != nil && loadedConfig.Health.Path != "" {
			healthPath = loadedConfig.Health.Path
		}
		if addr == "" && loadedConfig.Metrics != nil && loadedConfig.Metrics.Port != 0 {
			addr = fmt.Sprintf(":%d", loadedConfig.Metrics.Port)
		}
	}
	if addr == "" {
		addr = ":8080"
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, metrics.Handler())
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		sys := checker.GetSystemHealth(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if sys.Status != health.StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(sys)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("serving metrics and health endpoints", logger.String("addr", addr),
		logger.String("metrics_path", metricsPath), logger.String("health_path", healthPath))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
