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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-orgsync/orgsync/internal/engine/extract"
	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/internal/engine/model"
	"github.com/go-orgsync/orgsync/pkg/database"
)

func newTestDB(t *testing.T) database.IDatabase {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/test.sqlite"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.SyncUser{}, &model.SyncOrganization{}, &model.OrgUserRelation{},
	))
	return database.NewGormDB(db)
}

func TestUpsertUsersIdempotentAndSkipsInvalid(t *testing.T) {
	db := newTestDB(t)
	ur := NewSyncUserRepo(db)
	records := []identity.Record{
		{"sourceUserId": "u-1", "name": "Alice", "status": float64(1)},
		{"userId": "u-2", "name": "Bob", "status": float64(4)},
		{"name": "nobody"}, // no resolvable id
	}

	synced, skipped, err := ur.UpsertUsers(context.Background(), "t-1", records)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, 1, skipped)

	// unchanged population, second pass writes the same rows
	synced, skipped, err = ur.UpsertUsers(context.Background(), "t-1", records)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, 1, skipped)

	var count int64
	require.NoError(t, db.Database().Model(&model.SyncUser{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var bob model.SyncUser
	require.NoError(t, db.Database().Where("tenant_id = ? AND user_name = ?", "t-1", "u-2").First(&bob).Error)
	assert.Equal(t, model.UserStatusDisabled, bob.Status)
	assert.Equal(t, model.UserSource, bob.Source)
}

func TestUpsertOrganizationsLatestWriteWins(t *testing.T) {
	db := newTestDB(t)
	or := NewSyncOrganizationRepo(db)

	_, _, err := or.UpsertOrganizations(context.Background(), "t-1",
		[]extract.Organization{{Id: "A", Name: "Alpha", Code: "A"}})
	require.NoError(t, err)
	_, _, err = or.UpsertOrganizations(context.Background(), "t-1",
		[]extract.Organization{{Id: "A", Name: "Renamed", Code: "A"}})
	require.NoError(t, err)

	var orgs []model.SyncOrganization
	require.NoError(t, db.Database().Where("tenant_id = ?", "t-1").Find(&orgs).Error)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Renamed", orgs[0].Name)
}

func TestTombstoneUsersSoftDeletesStaleRows(t *testing.T) {
	db := newTestDB(t)
	ur := NewSyncUserRepo(db)
	records := []identity.Record{
		{"sourceUserId": "u-1", "status": float64(1)},
		{"sourceUserId": "u-2", "status": float64(1)},
	}
	_, _, err := ur.UpsertUsers(context.Background(), "t-1", records)
	require.NoError(t, err)

	n, err := ur.TombstoneUsers(context.Background(), "t-1", []string{"u-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// the stale row is flagged, not removed
	var stale model.SyncUser
	require.NoError(t, db.Database().Where("tenant_id = ? AND id = ?", "t-1", "u-2").First(&stale).Error)
	assert.Equal(t, 1, stale.IsDeleted)

	var live model.SyncUser
	require.NoError(t, db.Database().Where("tenant_id = ? AND id = ?", "t-1", "u-1").First(&live).Error)
	assert.Equal(t, 0, live.IsDeleted)

	// already tombstoned rows do not re-count
	n, err = ur.TombstoneUsers(context.Background(), "t-1", []string{"u-1"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplaceRelationsFullyReplaces(t *testing.T) {
	db := newTestDB(t)
	rr := NewOrgUserRelationRepo(db)

	_, err := rr.ReplaceRelations(context.Background(), "t-1", []extract.Edge{
		{UserID: "u-1", OrgCode: "A"},
		{UserID: "u-1", OrgCode: "B"},
	})
	require.NoError(t, err)

	inserted, err := rr.ReplaceRelations(context.Background(), "t-1", []extract.Edge{
		{UserID: "u-1", OrgCode: "A"},
		{UserID: "u-2", OrgCode: "A"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	var rows []model.OrgUserRelation
	require.NoError(t, db.Database().Where("tenant_id = ?", "t-1").Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotEqual(t, "B", row.OrgId) // edge from the prior run is gone
	}
}

func TestReplaceRelationsSkipsFailedEdges(t *testing.T) {
	db := newTestDB(t)
	err := db.Database().Callback().Create().Before("gorm:create").
		Register("fail_marked_relation", func(tx *gorm.DB) {
			if row, ok := tx.Statement.Dest.(*model.OrgUserRelation); ok && row.UserId == "u-bad" {
				tx.AddError(errors.New("insert refused"))
			}
		})
	require.NoError(t, err)

	rr := NewOrgUserRelationRepo(db)
	inserted, err := rr.ReplaceRelations(context.Background(), "t-1", []extract.Edge{
		{UserID: "u-1", OrgCode: "A"},
		{UserID: "u-bad", OrgCode: "A"},
		{UserID: "u-2", OrgCode: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	var count int64
	require.NoError(t, db.Database().Model(&model.OrgUserRelation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
