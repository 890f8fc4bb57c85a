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

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/internal/engine/model"
)

func record(kv map[string]any) identity.Record {
	return identity.Record(kv)
}

func TestParseUserAliases(t *testing.T) {
	u, err := ParseUser(record(map[string]any{
		"userId": "u-1",
		"name":   "Alice",
		"mail":   "alice@example.com",
		"phone":  "13800000000",
		"status": float64(1),
	}))
	assert.NoError(t, err)
	assert.Equal(t, "u-1", u.Id)
	assert.Equal(t, "u-1", u.UserName)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "13800000000", u.Mobile)
	assert.Equal(t, 1, u.Status)
}

func TestParseUserDisplayNameDefaultsToUserName(t *testing.T) {
	u, err := ParseUser(record(map[string]any{"sourceUserId": "bob"}))
	assert.NoError(t, err)
	assert.Equal(t, "bob", u.DisplayName)
	assert.Equal(t, 1, u.Status)
}

func TestParseUserNaturalKeyPrecedence(t *testing.T) {
	// sourceUserId is the natural key even when a name alias is present
	u, err := ParseUser(record(map[string]any{
		"sourceUserId": "s-1",
		"userName":     "alias",
	}))
	assert.NoError(t, err)
	assert.Equal(t, "s-1", u.UserName)

	// without sourceUserId the explicit name alias wins over userId
	u, err = ParseUser(record(map[string]any{
		"userId":   "u-2",
		"userName": "alias",
	}))
	assert.NoError(t, err)
	assert.Equal(t, "u-2", u.Id)
	assert.Equal(t, "alias", u.UserName)
}

func TestParseUserNonActiveStatus(t *testing.T) {
	for _, code := range []int{2, 3, 4, 5, 6, 0} {
		u, err := ParseUser(record(map[string]any{"userId": "u-2", "status": code}))
		assert.NoError(t, err)
		assert.Equal(t, model.UserStatusDisabled, u.Status, "status code %d", code)
	}

	u, err := ParseUser(record(map[string]any{"userId": "u-2", "status": model.SourceStatusActive}))
	assert.NoError(t, err)
	assert.Equal(t, model.UserStatusActive, u.Status)
}

func TestParseUserMissingIdentity(t *testing.T) {
	_, err := ParseUser(record(map[string]any{"name": "nobody"}))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestOrganizationsFirstWriteWins(t *testing.T) {
	records := []identity.Record{
		record(map[string]any{
			"userId":  "u-1",
			"mainOrg": map[string]any{"orgId": "A", "orgName": "Alpha"},
			"orgList": []any{
				map[string]any{"orgId": "B", "orgName": "Beta"},
			},
		}),
		record(map[string]any{
			"userId":  "u-2",
			"mainOrg": map[string]any{"orgId": "A", "orgName": "Renamed"},
			"orgList": []any{
				map[string]any{"orgId": "C"},
			},
		}),
	}

	orgs, skipped := Organizations(records)
	assert.Equal(t, 0, skipped)
	assert.Len(t, orgs, 3)
	assert.Equal(t, []string{"A", "B", "C"}, ActiveOrgCodes(orgs))
	assert.Equal(t, "Alpha", orgs[0].Name)
	assert.Equal(t, "Beta", orgs[1].Name)
	assert.Equal(t, "C", orgs[2].Name) // name defaults to code
	for _, o := range orgs {
		assert.Empty(t, o.Pid)
	}
}

func TestOrganizationsSkipsRefsWithoutCode(t *testing.T) {
	records := []identity.Record{
		record(map[string]any{
			"userId":  "u-1",
			"mainOrg": map[string]any{"orgName": "No Code Here"},
			"orgList": []any{
				map[string]any{"orgName": "Also No Code"},
				map[string]any{"sourceOrgId": "D"},
			},
		}),
	}

	orgs, skipped := Organizations(records)
	assert.Equal(t, 2, skipped)
	assert.Len(t, orgs, 1)
	assert.Equal(t, "D", orgs[0].Code)
}

func TestEdgesDeduplicated(t *testing.T) {
	records := []identity.Record{
		record(map[string]any{
			"userId":  "u-1",
			"mainOrg": map[string]any{"orgId": "A"},
			"orgList": []any{
				map[string]any{"orgId": "A"}, // mainOrg repeated in orgList
				map[string]any{"orgId": "B"},
			},
		}),
		record(map[string]any{
			"userId":  "u-2",
			"orgList": []any{map[string]any{"orgId": "B"}},
		}),
	}

	edges := Edges(records)
	assert.Equal(t, []Edge{
		{UserID: "u-1", OrgCode: "A"},
		{UserID: "u-1", OrgCode: "B"},
		{UserID: "u-2", OrgCode: "B"},
	}, edges)
}

func TestEdgesSkipAnonymousAndCodeless(t *testing.T) {
	records := []identity.Record{
		record(map[string]any{
			"mainOrg": map[string]any{"orgId": "A"}, // no user id
		}),
		record(map[string]any{
			"userId":  "u-1",
			"orgList": []any{map[string]any{"orgName": "codeless"}},
		}),
	}
	assert.Empty(t, Edges(records))
}

func TestActiveUserIDsCanonicalAndDeduplicated(t *testing.T) {
	records := []identity.Record{
		record(map[string]any{"sourceUserId": "u-1", "id": "row-9"}),
		record(map[string]any{"userId": "u-2"}),
		record(map[string]any{"sourceUserId": "u-1"}), // duplicate
		record(map[string]any{"name": "anonymous"}),   // no id at all
	}
	assert.Equal(t, []string{"u-1", "u-2"}, ActiveUserIDs(records))
}
