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
	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/internal/engine/model"
	"github.com/go-orgsync/orgsync/pkg/database"
	"github.com/go-orgsync/orgsync/pkg/log"
)

type ISyncUserRepository interface {
	UpsertUsers(ctx context.Context, tenantId string, records []identity.Record) (synced, skipped int, err error)
	TombstoneUsers(ctx context.Context, tenantId string, activeIds []string) (int64, error)
}

type SyncUserRepo struct {
	db database.IDatabase
}

func NewSyncUserRepo(db database.IDatabase) ISyncUserRepository {
	return &SyncUserRepo{db: db}
}

// UpsertUsers writes records into the user mirror in one transaction.
// Conflict target is (tenant_id, user_name): an existing row gets its
// profile fields, status and timestamp refreshed and its tombstone
// cleared. Unparseable or conflicting rows are skipped and counted, not
// fatal.
func (ur *SyncUserRepo) UpsertUsers(ctx context.Context, tenantId string, records []identity.Record) (int, int, error) {
	synced, skipped := 0, 0
	now := time.Now()

	tx := ur.db.Database().WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, 0, tx.Error
	}

	for _, rec := range records {
		u, err := extract.ParseUser(rec)
		if err != nil {
			skipped++
			log.Warnw("skipping user record", "tenantId", tenantId, "error", err)
			continue
		}

		row := model.SyncUser{
			Id:          u.Id,
			UserName:    u.UserName,
			DisplayName: u.DisplayName,
			Description: u.Description,
			Email:       u.Email,
			Mobile:      u.Mobile,
			TenantId:    tenantId,
			Source:      model.UserSource,
			Status:      u.Status,
			IsDeleted:   0,
			UpdatedTime: now,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "user_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "description", "email", "mobile",
				"status", "is_deleted", "updated_time",
			}),
		}).Create(&row).Error
		if err != nil {
			skipped++
			log.Warnw("failed to upsert user", "tenantId", tenantId, "userId", u.Id, "error", err)
			continue
		}
		synced++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, 0, err
	}
	return synced, skipped, nil
}

// TombstoneUsers soft deletes every live user of tenantId whose id is not
// in activeIds, and returns the number of rows flipped. An empty
// activeIds set is a no-op: it means retrieval produced nothing usable
// and mass tombstoning would wipe the whole tenant.
func (ur *SyncUserRepo) TombstoneUsers(ctx context.Context, tenantId string, activeIds []string) (int64, error) {
	if len(activeIds) == 0 {
		log.Warnw("empty active user set, skipping user tombstoning", "tenantId", tenantId)
		return 0, nil
	}
	res := ur.db.Database().WithContext(ctx).
		Model(&model.SyncUser{}).
		Where("tenant_id = ? AND is_deleted = 0 AND id NOT IN ?", tenantId, activeIds).
		Updates(map[string]interface{}{
			"is_deleted":   1,
			"updated_time": time.Now(),
		})
	return res.RowsAffected, res.Error
}
