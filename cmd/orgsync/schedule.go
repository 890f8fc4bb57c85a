// Copyright 2025 Orgsync Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/go-orgsync/orgsync/internal/engine/service"
	"github.com/go-orgsync/orgsync/pkg/cron"
	"github.com/go-orgsync/orgsync/pkg/log"
	"github.com/go-orgsync/orgsync/pkg/metrics"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "run reconciliation on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if app.cfg.Sync.Cron == "" {
			return fmt.Errorf("sync.cron is required for scheduled mode")
		}
		return app.schedule(cmd.Context())
	},
}

func (a *app) schedule(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	if addr := a.cfg.Sync.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("metrics server stopped", "addr", addr, "error", err)
			}
		}()
		defer srv.Close()
		log.Infow("metrics exposed", "addr", addr)
	}

	sched := cron.New()
	err := sched.AddJob(a.cfg.Sync.Cron, "sync:"+a.cfg.Sync.TenantId, func() error {
		_, err := a.runOnce(ctx, service.RunParams{
			TenantID:     a.cfg.Sync.TenantId,
			PageSize:     a.cfg.Sync.PageSize,
			UserIDs:      a.cfg.Sync.UserIds,
			SampleUserID: a.cfg.Sync.SampleUserId,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}

	sched.Start()
	log.Infow("scheduler started", "cron", a.cfg.Sync.Cron, "tenantId", a.cfg.Sync.TenantId)

	<-ctx.Done()
	log.Infow("shutting down scheduler")
	sched.Stop()
	return nil
}
