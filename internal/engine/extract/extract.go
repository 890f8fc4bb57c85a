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

// Package extract derives the normalized organization set and the
// user-organization membership graph from denormalized identity records.
package extract

import (
	"errors"
	"reflect"

	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/internal/engine/model"
	"github.com/go-orgsync/orgsync/pkg/attr"
)

// ErrInvalidRecord marks a user record with no resolvable canonical id.
// Recoverable: the record is skipped and counted.
var ErrInvalidRecord = errors.New("invalid record: no resolvable user id")

// User is a parsed, validated user record ready for upsert.
type User struct {
	Id          string
	UserName    string
	DisplayName string
	Description string
	Email       string
	Mobile      string
	Status      int // 1: active, 0: disabled
}

// Organization is a derived organization entity. Pid stays empty: the
// source data exposes no real hierarchy, and inventing one here would
// hide that limitation instead of surfacing it.
type Organization struct {
	Id   string
	Name string
	Code string
	Pid  string
}

// Edge is one user-organization membership, scoped by the caller's
// tenant.
type Edge struct {
	UserID  string
	OrgCode string
}

// ParseUser resolves the aliased user fields of rec. The natural-key
// user name prefers sourceUserId, then the explicit name aliases, and
// finally falls back to the canonical id. Records without a canonical id
// return ErrInvalidRecord.
func ParseUser(rec identity.Record) (*User, error) {
	uid := rec.UserID()
	if uid == "" {
		return nil, ErrInvalidRecord
	}
	userName := attr.String(rec, "sourceUserId", "userName", "username", "user_name")
	if userName == "" {
		userName = uid
	}

	displayName := attr.String(rec, "name", "displayName", "display_name")
	if displayName == "" {
		displayName = userName
	}

	status := model.UserStatusDisabled
	if attr.Int(rec, model.SourceStatusActive, "status") == model.SourceStatusActive {
		status = model.UserStatusActive
	}

	return &User{
		Id:          uid,
		UserName:    userName,
		DisplayName: displayName,
		Description: attr.String(rec, "description", "remark"),
		Email:       attr.String(rec, "email", "mail"),
		Mobile:      attr.String(rec, "mobile", "phone", "telephone"),
		Status:      status,
	}, nil
}

// Organizations walks records in order and returns the deduplicated
// organization list plus the count of discarded references (those with no
// resolvable code). The first occurrence of a code fixes the recorded
// name; later occurrences never overwrite it within one extraction pass.
// Output order is first-occurrence order, mainOrg before orgList within a
// user.
func Organizations(records []identity.Record) ([]Organization, int) {
	var orgs []Organization
	seen := make(map[string]bool)
	skipped := 0

	for _, rec := range records {
		for _, ref := range orgRefs(rec) {
			code := orgCode(ref)
			if code == "" {
				skipped++
				continue
			}
			if seen[code] {
				continue
			}
			seen[code] = true

			name := attr.String(ref, "orgName", "name")
			if name == "" {
				name = code
			}
			orgs = append(orgs, Organization{
				Id:   code,
				Name: name,
				Code: code,
				Pid:  "", // not derivable from per-user data
			})
		}
	}

	return orgs, skipped
}

// Edges returns the deduplicated membership edges of records: for each
// user, the mainOrg plus every orgList entry, one edge per distinct
// (user, org) pair.
func Edges(records []identity.Record) []Edge {
	var edges []Edge
	seen := make(map[Edge]bool)

	for _, rec := range records {
		uid := rec.UserID()
		if uid == "" {
			continue
		}
		for _, ref := range orgRefs(rec) {
			code := orgCode(ref)
			if code == "" {
				continue
			}
			e := Edge{UserID: uid, OrgCode: code}
			if seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}

	return edges
}

// ActiveUserIDs returns the deduplicated canonical ids of records, in
// observation order. This is the tombstoning active-id set for users.
func ActiveUserIDs(records []identity.Record) []string {
	var ids []string
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		uid := rec.UserID()
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		ids = append(ids, uid)
	}
	return ids
}

// ActiveOrgCodes returns the code set of orgs, the tombstoning active-id
// set for organizations.
func ActiveOrgCodes(orgs []Organization) []string {
	codes := make([]string, 0, len(orgs))
	for _, o := range orgs {
		codes = append(codes, o.Code)
	}
	return codes
}

// orgRefs returns the organization references of one user record:
// mainOrg first, then every orgList entry.
func orgRefs(rec identity.Record) []any {
	var refs []any
	if main := attr.Get(rec, nil, "mainOrg"); main != nil {
		refs = append(refs, main)
	}
	list := attr.Get(rec, nil, "orgList")
	if list == nil {
		return refs
	}
	if entries, ok := list.([]any); ok {
		return append(refs, entries...)
	}
	rv := reflect.ValueOf(list)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			refs = append(refs, rv.Index(i).Interface())
		}
	}
	return refs
}

// orgCode computes the identity key of one organization reference: the
// first non-empty of its code-like aliases.
func orgCode(ref any) string {
	return attr.String(ref, "orgId", "sourceOrgId", "orgCode", "org_code")
}
