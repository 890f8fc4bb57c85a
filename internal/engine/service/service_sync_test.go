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

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-orgsync/orgsync/internal/engine/extract"
	"github.com/go-orgsync/orgsync/internal/engine/fetch"
	"github.com/go-orgsync/orgsync/internal/engine/identity"
)

type fakeQuerier struct {
	pages []identity.PageData
	calls int
}

func (f *fakeQuerier) IdentityPage(_ context.Context, _ identity.PageRequest) (*identity.PageData, error) {
	if f.calls >= len(f.pages) {
		return &identity.PageData{}, nil
	}
	p := f.pages[f.calls]
	f.calls++
	return &p, nil
}

type fakeUserRepo struct {
	upsertErr    error
	tombstoneErr error
	tombstoneN   int64

	upserted       []identity.Record
	tombstonedWith []string
	tombstoneCalls int
}

func (f *fakeUserRepo) UpsertUsers(_ context.Context, _ string, records []identity.Record) (int, int, error) {
	if f.upsertErr != nil {
		return 0, 0, f.upsertErr
	}
	f.upserted = records
	return len(records), 0, nil
}

func (f *fakeUserRepo) TombstoneUsers(_ context.Context, _ string, activeIds []string) (int64, error) {
	if f.tombstoneErr != nil {
		return 0, f.tombstoneErr
	}
	f.tombstoneCalls++
	f.tombstonedWith = activeIds
	return f.tombstoneN, nil
}

type fakeOrgRepo struct {
	upsertErr  error
	tombstoneN int64

	upserted       []extract.Organization
	tombstonedWith []string
	tombstoneCalls int
}

func (f *fakeOrgRepo) UpsertOrganizations(_ context.Context, _ string, orgs []extract.Organization) (int, int, error) {
	if f.upsertErr != nil {
		return 0, 0, f.upsertErr
	}
	f.upserted = orgs
	return len(orgs), 0, nil
}

func (f *fakeOrgRepo) TombstoneOrganizations(_ context.Context, _ string, activeCodes []string) (int64, error) {
	f.tombstoneCalls++
	f.tombstonedWith = activeCodes
	return f.tombstoneN, nil
}

type fakeRelRepo struct {
	replaceErr error
	replaced   []extract.Edge
	calls      int
}

func (f *fakeRelRepo) ReplaceRelations(_ context.Context, _ string, edges []extract.Edge) (int64, error) {
	if f.replaceErr != nil {
		return 0, f.replaceErr
	}
	f.calls++
	f.replaced = edges
	return int64(len(edges)), nil
}

func onePage(records ...identity.Record) []identity.PageData {
	return []identity.PageData{{
		Page:    identity.PageInfo{Total: int64(len(records))},
		Content: records,
	}}
}

func twoUsers() []identity.PageData {
	return onePage(
		identity.Record{
			"sourceUserId": "u-1",
			"name":         "Alice",
			"status":       float64(1),
			"mainOrg":      map[string]any{"orgId": "A", "orgName": "Alpha"},
			"orgList": []any{
				map[string]any{"orgId": "B", "orgName": "Beta"},
			},
		},
		identity.Record{
			"userId":  "u-2",
			"name":    "Bob",
			"status":  float64(4),
			"mainOrg": map[string]any{"orgId": "A", "orgName": "Renamed"},
		},
	)
}

func TestRunHappyPath(t *testing.T) {
	ur, or, rr := &fakeUserRepo{tombstoneN: 3}, &fakeOrgRepo{tombstoneN: 1}, &fakeRelRepo{}
	svc := NewSyncService(&fakeQuerier{pages: twoUsers()}, ur, or, rr)

	res, err := svc.Run(context.Background(), RunParams{TenantID: "t-1"})
	require.NoError(t, err)

	assert.Equal(t, StageDone, res.State)
	assert.Equal(t, 2, res.UsersFetched)
	assert.Equal(t, 2, res.UsersSynced)
	assert.Equal(t, 2, res.OrgsSynced)
	assert.Equal(t, int64(3), res.RelationsInserted)
	assert.Equal(t, int64(3), res.UsersTombstoned)
	assert.Equal(t, int64(1), res.OrgsTombstoned)

	// first occurrence fixes the org name
	assert.Equal(t, "Alpha", or.upserted[0].Name)

	// tombstone sweeps use the canonical active sets
	assert.Equal(t, []string{"u-1", "u-2"}, ur.tombstonedWith)
	assert.Equal(t, []string{"A", "B"}, or.tombstonedWith)

	assert.Equal(t, []extract.Edge{
		{UserID: "u-1", OrgCode: "A"},
		{UserID: "u-1", OrgCode: "B"},
		{UserID: "u-2", OrgCode: "A"},
	}, rr.replaced)
}

func TestRunRequiresTenant(t *testing.T) {
	svc := NewSyncService(&fakeQuerier{}, &fakeUserRepo{}, &fakeOrgRepo{}, &fakeRelRepo{})
	_, err := svc.Run(context.Background(), RunParams{})
	assert.Error(t, err)
}

func TestRunFailsWhenRetrievalExhausted(t *testing.T) {
	ur, or, rr := &fakeUserRepo{}, &fakeOrgRepo{}, &fakeRelRepo{}
	svc := NewSyncService(&fakeQuerier{}, ur, or, rr)

	res, err := svc.Run(context.Background(), RunParams{TenantID: "t-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrRetrievalExhausted)
	assert.Equal(t, StageFailed, res.State)
	assert.Empty(t, ur.upserted)
	assert.Zero(t, rr.calls)
}

func TestRunStopsAtFailedStage(t *testing.T) {
	ur := &fakeUserRepo{}
	or := &fakeOrgRepo{upsertErr: errors.New("db gone")}
	rr := &fakeRelRepo{}
	svc := NewSyncService(&fakeQuerier{pages: twoUsers()}, ur, or, rr)

	res, err := svc.Run(context.Background(), RunParams{TenantID: "t-1"})
	require.Error(t, err)
	assert.Equal(t, StageFailed, res.State)
	assert.Equal(t, 2, res.UsersSynced) // users phase already committed
	assert.Zero(t, rr.calls)            // later phases never run
	assert.Zero(t, ur.tombstoneCalls)
}

func TestRunBoundedSkipsTombstoning(t *testing.T) {
	ur, or, rr := &fakeUserRepo{}, &fakeOrgRepo{}, &fakeRelRepo{}
	svc := NewSyncService(&fakeQuerier{pages: twoUsers()}, ur, or, rr)

	res, err := svc.Run(context.Background(), RunParams{TenantID: "t-1", MaxUsers: 2})
	require.NoError(t, err)

	assert.Equal(t, StageDone, res.State)
	assert.Zero(t, ur.tombstoneCalls)
	assert.Zero(t, or.tombstoneCalls)
	assert.Zero(t, res.UsersTombstoned)
}

func TestRunIdempotentOnUnchangedPopulation(t *testing.T) {
	// nothing is stale when the population has not changed
	ur, or, rr := &fakeUserRepo{}, &fakeOrgRepo{}, &fakeRelRepo{}

	first, err := NewSyncService(&fakeQuerier{pages: twoUsers()}, ur, or, rr).
		Run(context.Background(), RunParams{TenantID: "t-1"})
	require.NoError(t, err)

	upserted := ur.upserted
	orgs := or.upserted
	edges := rr.replaced
	activeUsers := ur.tombstonedWith
	activeOrgs := or.tombstonedWith

	second, err := NewSyncService(&fakeQuerier{pages: twoUsers()}, ur, or, rr).
		Run(context.Background(), RunParams{TenantID: "t-1"})
	require.NoError(t, err)

	// the second run writes exactly the same rows, edges and active sets
	assert.Equal(t, upserted, ur.upserted)
	assert.Equal(t, orgs, or.upserted)
	assert.Equal(t, edges, rr.replaced)
	assert.Equal(t, activeUsers, ur.tombstonedWith)
	assert.Equal(t, activeOrgs, or.tombstonedWith)

	assert.Equal(t, StageDone, second.State)
	assert.Equal(t, first.UsersFetched, second.UsersFetched)
	assert.Equal(t, first.UsersSynced, second.UsersSynced)
	assert.Equal(t, first.OrgsSynced, second.OrgsSynced)
	assert.Equal(t, first.RelationsInserted, second.RelationsInserted)
	assert.Zero(t, second.UsersTombstoned)
	assert.Zero(t, second.OrgsTombstoned)
}

func TestRunUserTombstoneFailure(t *testing.T) {
	ur := &fakeUserRepo{tombstoneErr: errors.New("timeout")}
	or, rr := &fakeOrgRepo{}, &fakeRelRepo{}
	svc := NewSyncService(&fakeQuerier{pages: twoUsers()}, ur, or, rr)

	res, err := svc.Run(context.Background(), RunParams{TenantID: "t-1"})
	require.Error(t, err)
	assert.Equal(t, StageFailed, res.State)
	assert.Zero(t, or.tombstoneCalls) // org sweep not attempted after user sweep fails
	assert.Equal(t, int64(len(rr.replaced)), res.RelationsInserted)
}
