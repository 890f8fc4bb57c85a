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

	"gorm.io/gorm/clause"

	"github.com/go-orgsync/orgsync/internal/engine/extract"
	"github.com/go-orgsync/orgsync/internal/engine/model"
	"github.com/go-orgsync/orgsync/pkg/database"
	"github.com/go-orgsync/orgsync/pkg/id"
	"github.com/go-orgsync/orgsync/pkg/log"
)

type IOrgUserRelationRepository interface {
	ReplaceRelations(ctx context.Context, tenantId string, edges []extract.Edge) (int64, error)
}

type OrgUserRelationRepo struct {
	db database.IDatabase
}

func NewOrgUserRelationRepo(db database.IDatabase) IOrgUserRelationRepository {
	return &OrgUserRelationRepo{db: db}
}

// ReplaceRelations swaps the tenant's whole membership edge set inside
// one transaction: delete everything, then insert edges with fresh
// synthetic ids. Duplicate edges hit the unique key and are dropped
// silently. An edge whose insert fails is logged and skipped, the same
// row-level policy as the upserts; only a failing delete or commit
// aborts the phase. Returns the number of rows actually inserted.
func (rr *OrgUserRelationRepo) ReplaceRelations(ctx context.Context, tenantId string, edges []extract.Edge) (int64, error) {
	tx := rr.db.Database().WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}

	if err := tx.Where("tenant_id = ?", tenantId).Delete(&model.OrgUserRelation{}).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	var inserted int64
	skipped := 0
	for _, e := range edges {
		row := model.OrgUserRelation{
			Id:       id.GetUUID(),
			OrgId:    e.OrgCode,
			UserId:   e.UserID,
			TenantId: tenantId,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			skipped++
			log.Warnw("failed to insert org-user relation",
				"tenantId", tenantId, "orgId", e.OrgCode, "userId", e.UserID, "error", res.Error)
			continue
		}
		inserted += res.RowsAffected
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	log.Debugw("replaced org-user relations", "tenantId", tenantId, "inserted", inserted, "skipped", skipped)
	return inserted, nil
}
