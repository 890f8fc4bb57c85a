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
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/go-orgsync/orgsync/internal/engine/conf"
	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/internal/engine/repo"
	"github.com/go-orgsync/orgsync/internal/engine/service"
	"github.com/go-orgsync/orgsync/pkg/cache"
	"github.com/go-orgsync/orgsync/pkg/database"
	"github.com/go-orgsync/orgsync/pkg/log"
	"github.com/go-orgsync/orgsync/pkg/runner"
	"github.com/go-orgsync/orgsync/pkg/version"
)

var (
	configFile string

	maxUsers     int
	debugRecords int
)

const defaultLockTTL = 30 * time.Minute

var rootCmd = &cobra.Command{
	Use:   "orgsync",
	Short: "orgsync mirrors an identity provider's directory into a relational store",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "execute one reconciliation run",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		res, err := app.runOnce(cmd.Context(), service.RunParams{
			TenantID:     app.cfg.Sync.TenantId,
			PageSize:     app.cfg.Sync.PageSize,
			MaxUsers:     maxUsers,
			UserIDs:      app.cfg.Sync.UserIds,
			SampleUserID: app.cfg.Sync.SampleUserId,
			DebugRecords: debugRecords,
		})
		if res != nil {
			printJSON(res)
		}
		return err
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample <userId>",
	Short: "fetch and mirror a single user, for connectivity and shape checks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		// one bounded record, no tombstoning
		res, err := app.runOnce(cmd.Context(), service.RunParams{
			TenantID:     app.cfg.Sync.TenantId,
			MaxUsers:     1,
			SampleUserID: args[0],
			DebugRecords: 1,
		})
		if res != nil {
			printJSON(res)
		}
		return err
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "verify the mirror tables exist and report tenant row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		statuses, err := app.store.CheckStore(cmd.Context(), app.cfg.Sync.TenantId)
		if err != nil {
			return err
		}
		printJSON(statuses)
		for _, st := range statuses {
			if !st.Present {
				return fmt.Errorf("table %s is missing", st.Table)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "config file path")
	runCmd.Flags().IntVar(&maxUsers, "max-users", 0, "cap the fetched population (diagnostic, skips tombstoning)")
	runCmd.Flags().IntVar(&debugRecords, "debug-records", 0, "dump the first N raw records at debug level")
	rootCmd.AddCommand(runCmd, sampleCmd, checkCmd, scheduleCmd, version.VersionCmd)
}

type app struct {
	cfg   *conf.AppConfig
	redis *redis.Client
	svc   *service.SyncService
	store repo.IStoreRepository
	lock  service.RunLock
}

func newApp() (*app, error) {
	cfg, err := conf.NewConf(configFile)
	if err != nil {
		return nil, err
	}
	log.MustInit(&cfg.Log)

	gdb, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db := database.NewGormDB(gdb)

	a := &app{
		cfg:   cfg,
		svc:   service.NewSyncService(identity.NewClient(cfg.Source), repo.NewSyncUserRepo(db), repo.NewSyncOrganizationRepo(db), repo.NewOrgUserRelationRepo(db)),
		store: repo.NewStoreRepo(db),
		lock:  service.NewLocalRunLock(),
	}

	if cfg.Redis.Address != "" {
		rdb, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = rdb
		a.lock = service.NewRedisRunLock(rdb)
	}
	return a, nil
}

func (a *app) lockTTL() time.Duration {
	if m := a.cfg.Sync.LockTTLMinutes; m > 0 {
		return time.Duration(m) * time.Minute
	}
	return defaultLockTTL
}

// runOnce wraps one reconciliation run in the per-tenant run lock.
func (a *app) runOnce(ctx context.Context, params service.RunParams) (*service.Result, error) {
	ok, err := a.lock.TryAcquire(ctx, params.TenantID, a.lockTTL())
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another run is in progress for tenant %s", params.TenantID)
	}
	defer func() {
		if err := a.lock.Release(context.WithoutCancel(ctx), params.TenantID); err != nil {
			log.Errorw("failed to release run lock", "tenantId", params.TenantID, "error", err)
		}
	}()

	return a.svc.Run(ctx, params)
}

func printJSON(v interface{}) {
	out, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(out))
}

func main() {
	fmt.Println("runner.pwd:", runner.Pwd)
	fmt.Println("runner.hostname:", runner.Hostname)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
