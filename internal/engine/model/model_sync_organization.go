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

// SyncOrganization 组织镜像表
// Natural key: (tenant_id, org_code). Pid is always empty: the source
// nests organizations inside user records and exposes no real hierarchy.
type SyncOrganization struct {
	Id          string    `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name" json:"name"`
	OrgCode     string    `gorm:"column:org_code;uniqueIndex:uk_tenant_org_code,priority:2" json:"orgCode"`
	TenantId    string    `gorm:"column:tenant_id;uniqueIndex:uk_tenant_org_code,priority:1" json:"tenantId"`
	Pid         string    `gorm:"column:pid" json:"pid"`
	IsDeleted   int       `gorm:"column:is_deleted" json:"isDeleted"`
	UpdatedTime time.Time `gorm:"column:updated_time" json:"updatedTime"`
}

func (SyncOrganization) TableName() string {
	return "t_sync_organization"
}
