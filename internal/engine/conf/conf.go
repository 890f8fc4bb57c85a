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

package conf

import (
	"fmt"

	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/pkg/cache"
	"github.com/go-orgsync/orgsync/pkg/conf"
	"github.com/go-orgsync/orgsync/pkg/database"
	"github.com/go-orgsync/orgsync/pkg/log"
)

// SyncConfig holds the reconciliation runtime settings.
type SyncConfig struct {
	TenantId     string   `mapstructure:"tenantId"`
	PageSize     int      `mapstructure:"pageSize"`
	UserIds      []string `mapstructure:"userIds"`
	SampleUserId string   `mapstructure:"sampleUserId"`
	// Cron enables scheduled mode when non-empty, e.g. "0 2 * * *".
	Cron string `mapstructure:"cron"`
	// LockTTLMinutes bounds how long a crashed run can hold the
	// distributed run lock. Zero means 30 minutes.
	LockTTLMinutes int `mapstructure:"lockTtlMinutes"`
	// MetricsAddr exposes /metrics in scheduled mode, e.g. ":9109".
	MetricsAddr string `mapstructure:"metricsAddr"`
}

type AppConfig struct {
	Log      log.LogConfig     `mapstructure:"log"`
	Database database.Database `mapstructure:"database"`
	Redis    cache.Redis       `mapstructure:"redis"`
	Source   identity.Source   `mapstructure:"source"`
	Sync     SyncConfig        `mapstructure:"sync"`
}

// NewConf loads and validates the application configuration from
// confFile.
func NewConf(confFile string) (*AppConfig, error) {
	var cfg AppConfig
	if err := conf.LoadConfigFile(confFile, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", confFile, err)
	}
	if cfg.Sync.TenantId == "" {
		return nil, fmt.Errorf("config %s: sync.tenantId is required", confFile)
	}
	if cfg.Source.BaseURL == "" {
		return nil, fmt.Errorf("config %s: source.baseUrl is required", confFile)
	}
	return &cfg, nil
}
