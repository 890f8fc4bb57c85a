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

	"github.com/go-orgsync/orgsync/internal/engine/model"
	"github.com/go-orgsync/orgsync/pkg/database"
)

// TableStatus is one mirror table's presence and live row count for a
// tenant.
type TableStatus struct {
	Table   string `json:"table"`
	Present bool   `json:"present"`
	Rows    int64  `json:"rows"`
}

type IStoreRepository interface {
	CheckStore(ctx context.Context, tenantId string) ([]TableStatus, error)
}

type StoreRepo struct {
	db database.IDatabase
}

func NewStoreRepo(db database.IDatabase) IStoreRepository {
	return &StoreRepo{db: db}
}

// CheckStore reports whether the three mirror tables exist and how many
// rows each holds for tenantId. Missing tables report zero rows instead
// of failing, so the check is usable against a fresh schema.
func (sr *StoreRepo) CheckStore(ctx context.Context, tenantId string) ([]TableStatus, error) {
	db := sr.db.Database().WithContext(ctx)
	targets := []interface{}{
		&model.SyncUser{},
		&model.SyncOrganization{},
		&model.OrgUserRelation{},
	}

	var out []TableStatus
	for _, m := range targets {
		name := m.(interface{ TableName() string }).TableName()
		st := TableStatus{Table: name}
		if db.Migrator().HasTable(m) {
			st.Present = true
			if err := db.Model(m).Where("tenant_id = ?", tenantId).Count(&st.Rows).Error; err != nil {
				return nil, err
			}
		}
		out = append(out, st)
	}
	return out, nil
}
