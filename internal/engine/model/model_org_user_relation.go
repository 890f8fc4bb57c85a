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

// OrgUserRelation 用户-组织关系表
// No soft delete: rows for a tenant are fully replaced on every
// successful run.
type OrgUserRelation struct {
	Id       string `gorm:"column:id;primaryKey" json:"id"` // synthetic uuid
	OrgId    string `gorm:"column:org_id;uniqueIndex:uk_tenant_org_user,priority:2" json:"orgId"`
	UserId   string `gorm:"column:user_id;uniqueIndex:uk_tenant_org_user,priority:3" json:"userId"`
	TenantId string `gorm:"column:tenant_id;uniqueIndex:uk_tenant_org_user,priority:1" json:"tenantId"`
}

func (OrgUserRelation) TableName() string {
	return "t_sync_org_user_relation"
}
