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

package model

import "time"

// SyncUser 用户镜像表
// Natural key: (tenant_id, user_name). Soft-deleted rows stay in place
// with is_deleted = 1.
type SyncUser struct {
	Id          string    `gorm:"column:id;primaryKey" json:"id"` // canonical source user id
	UserName    string    `gorm:"column:user_name;uniqueIndex:uk_tenant_user_name,priority:2" json:"userName"`
	DisplayName string    `gorm:"column:display_name" json:"displayName"`
	Description string    `gorm:"column:description" json:"description"`
	Email       string    `gorm:"column:email" json:"email"`
	Mobile      string    `gorm:"column:mobile" json:"mobile"`
	TenantId    string    `gorm:"column:tenant_id;uniqueIndex:uk_tenant_user_name,priority:1" json:"tenantId"`
	Source      string    `gorm:"column:source" json:"source"`
	Status      int       `gorm:"column:status" json:"status"` // 1: active, 0: disabled
	IsDeleted   int       `gorm:"column:is_deleted" json:"isDeleted"`
	UpdatedTime time.Time `gorm:"column:updated_time" json:"updatedTime"`
}

func (SyncUser) TableName() string {
	return "t_sync_user"
}

// UserSource tags rows written by this mirror.
const UserSource = "CAS"

// UserStatus values persisted in the mirror.
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// SourceStatusActive is the only upstream lifecycle code mapped to an
// active mirror row. Codes 2..6 (source deleted, center deleted,
// disabled, expired, recycled) all map to disabled.
const SourceStatusActive = 1
