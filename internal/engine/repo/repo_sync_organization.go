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

package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/go-orgsync/orgsync/internal/engine/extract"
	"github.com/go-orgsync/orgsync/internal/engine/model"
	"github.com/go-orgsync/orgsync/pkg/database"
	"github.com/go-orgsync/orgsync/pkg/log"
)

type ISyncOrganizationRepository interface {
	UpsertOrganizations(ctx context.Context, tenantId string, orgs []extract.Organization) (synced, skipped int, err error)
	TombstoneOrganizations(ctx context.Context, tenantId string, activeCodes []string) (int64, error)
}

type SyncOrganizationRepo struct {
	db database.IDatabase
}

func NewSyncOrganizationRepo(db database.IDatabase) ISyncOrganizationRepository {
	return &SyncOrganizationRepo{db: db}
}

// UpsertOrganizations writes orgs into the organization mirror in one
// transaction. Conflict target is (tenant_id, org_code); rows that fail
// are skipped and counted.
func (or *SyncOrganizationRepo) UpsertOrganizations(ctx context.Context, tenantId string, orgs []extract.Organization) (int, int, error) {
	synced, skipped := 0, 0
	now := time.Now()

	tx := or.db.Database().WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, 0, tx.Error
	}

	for _, o := range orgs {
		row := model.SyncOrganization{
			Id:          o.Id,
			Name:        o.Name,
			OrgCode:     o.Code,
			TenantId:    tenantId,
			Pid:         o.Pid,
			IsDeleted:   0,
			UpdatedTime: now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "org_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "pid", "is_deleted", "updated_time",
			}),
		}).Create(&row).Error
		if err != nil {
			skipped++
			log.Warnw("failed to upsert organization", "tenantId", tenantId, "orgCode", o.Code, "error", err)
			continue
		}
		synced++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, 0, err
	}
	return synced, skipped, nil
}

// TombstoneOrganizations soft deletes every live organization of
// tenantId whose code is not in activeCodes. An empty activeCodes set is
// a no-op, same safety rule as for users.
func (or *SyncOrganizationRepo) TombstoneOrganizations(ctx context.Context, tenantId string, activeCodes []string) (int64, error) {
	if len(activeCodes) == 0 {
		log.Warnw("empty active organization set, skipping organization tombstoning", "tenantId", tenantId)
		return 0, nil
	}
	res := or.db.Database().WithContext(ctx).
		Model(&model.SyncOrganization{}).
		Where("tenant_id = ? AND is_deleted = 0 AND org_code NOT IN ?", tenantId, activeCodes).
		Updates(map[string]interface{}{
			"is_deleted":   1,
			"updated_time": time.Now(),
		})
	return res.RowsAffected, res.Error
}
