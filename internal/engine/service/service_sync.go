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
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/go-orgsync/orgsync/internal/engine/extract"
	"github.com/go-orgsync/orgsync/internal/engine/fetch"
	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/internal/engine/repo"
	"github.com/go-orgsync/orgsync/pkg/log"
	"github.com/go-orgsync/orgsync/pkg/metrics"
)

// RunParams parameterize one reconciliation run.
type RunParams struct {
	TenantID string
	PageSize int
	// MaxUsers bounds the fetched population for diagnostic runs. A
	// bounded run never tombstones: its active set is knowingly partial.
	MaxUsers     int
	UserIDs      []string
	SampleUserID string
	// DebugRecords dumps the first N raw records at debug level.
	DebugRecords int
}

// Result is the outcome report of one run.
type Result struct {
	TenantID          string        `json:"tenantId"`
	State             string        `json:"state"`
	UsersFetched      int           `json:"usersFetched"`
	UsersSynced       int           `json:"usersSynced"`
	UsersSkipped      int           `json:"usersSkipped"`
	OrgsSynced        int           `json:"orgsSynced"`
	OrgsSkipped       int           `json:"orgsSkipped"`
	OrgRefsDiscarded  int           `json:"orgRefsDiscarded"`
	RelationsInserted int64         `json:"relationsInserted"`
	UsersTombstoned   int64         `json:"usersTombstoned"`
	OrgsTombstoned    int64         `json:"orgsTombstoned"`
	Elapsed           time.Duration `json:"elapsed"`
}

// SyncService drives a full reconciliation run: fetch users, mirror
// users, derive and mirror organizations, replace memberships, tombstone
// the leavers. Each phase commits independently; a phase failure leaves
// earlier phases applied and marks the run failed.
type SyncService struct {
	querier  identity.Querier
	userRepo repo.ISyncUserRepository
	orgRepo  repo.ISyncOrganizationRepository
	relRepo  repo.IOrgUserRelationRepository
}

func NewSyncService(
	querier identity.Querier,
	userRepo repo.ISyncUserRepository,
	orgRepo repo.ISyncOrganizationRepository,
	relRepo repo.IOrgUserRelationRepository,
) *SyncService {
	return &SyncService{
		querier:  querier,
		userRepo: userRepo,
		orgRepo:  orgRepo,
		relRepo:  relRepo,
	}
}

// Run executes one reconciliation run for params.TenantID.
// The returned Result is populated as far as the run got, including on
// failure.
func (s *SyncService) Run(ctx context.Context, params RunParams) (*Result, error) {
	if params.TenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	start := time.Now()
	sm := newRunStateMachine()
	res := &Result{TenantID: params.TenantID, State: StageFetching}

	fail := func(err error) (*Result, error) {
		_ = sm.TransitTo(StageFailed)
		res.State = StageFailed
		res.Elapsed = time.Since(start)
		metrics.ObserveRun(params.TenantID, "failed", res.Elapsed)
		return res, err
	}

	log.Infow("starting sync run", "tenantId", params.TenantID,
		"pageSize", params.PageSize, "maxUsers", params.MaxUsers,
		"userIds", len(params.UserIDs), "sampleUserId", params.SampleUserID)

	records, err := fetch.FetchAll(ctx, s.querier, fetch.Options{
		PageSize:     params.PageSize,
		MaxUsers:     params.MaxUsers,
		UserIDs:      params.UserIDs,
		SampleUserID: params.SampleUserID,
	})
	if err != nil {
		return fail(fmt.Errorf("fetch users: %w", err))
	}
	res.UsersFetched = len(records)
	s.dumpRecords(records, params.DebugRecords)

	res.UsersSynced, res.UsersSkipped, err = s.userRepo.UpsertUsers(ctx, params.TenantID, records)
	if err != nil {
		return fail(fmt.Errorf("upsert users: %w", err))
	}
	metrics.AddEntities(params.TenantID, "user", "upsert", res.UsersSynced)
	if err := sm.TransitTo(StageUsersSynced); err != nil {
		return fail(err)
	}

	orgs, discarded := extract.Organizations(records)
	res.OrgRefsDiscarded = discarded
	if discarded > 0 {
		log.Warnw("discarded organization references without a code",
			"tenantId", params.TenantID, "count", discarded)
	}
	if err := sm.TransitTo(StageOrganizationsFetched); err != nil {
		return fail(err)
	}

	res.OrgsSynced, res.OrgsSkipped, err = s.orgRepo.UpsertOrganizations(ctx, params.TenantID, orgs)
	if err != nil {
		return fail(fmt.Errorf("upsert organizations: %w", err))
	}
	metrics.AddEntities(params.TenantID, "organization", "upsert", res.OrgsSynced)
	if err := sm.TransitTo(StageOrganizationsSynced); err != nil {
		return fail(err)
	}

	edges := extract.Edges(records)
	res.RelationsInserted, err = s.relRepo.ReplaceRelations(ctx, params.TenantID, edges)
	if err != nil {
		return fail(fmt.Errorf("replace relations: %w", err))
	}
	metrics.AddEntities(params.TenantID, "relation", "replace", int(res.RelationsInserted))
	if err := sm.TransitTo(StageMembershipsSynced); err != nil {
		return fail(err)
	}

	if params.MaxUsers > 0 {
		log.Warnw("bounded run, skipping tombstoning", "tenantId", params.TenantID, "maxUsers", params.MaxUsers)
	} else {
		res.UsersTombstoned, err = s.userRepo.TombstoneUsers(ctx, params.TenantID, extract.ActiveUserIDs(records))
		if err != nil {
			return fail(fmt.Errorf("tombstone users: %w", err))
		}
		res.OrgsTombstoned, err = s.orgRepo.TombstoneOrganizations(ctx, params.TenantID, extract.ActiveOrgCodes(orgs))
		if err != nil {
			return fail(fmt.Errorf("tombstone organizations: %w", err))
		}
		metrics.AddEntities(params.TenantID, "user", "tombstone", int(res.UsersTombstoned))
		metrics.AddEntities(params.TenantID, "organization", "tombstone", int(res.OrgsTombstoned))
	}
	if err := sm.TransitTo(StageTombstonesApplied); err != nil {
		return fail(err)
	}

	if err := sm.TransitTo(StageDone); err != nil {
		return fail(err)
	}
	res.State = StageDone
	res.Elapsed = time.Since(start)
	metrics.ObserveRun(params.TenantID, "succeeded", res.Elapsed)

	log.Infow("sync run finished", "tenantId", params.TenantID,
		"usersFetched", res.UsersFetched, "usersSynced", res.UsersSynced,
		"usersSkipped", res.UsersSkipped, "orgsSynced", res.OrgsSynced,
		"relationsInserted", res.RelationsInserted,
		"usersTombstoned", res.UsersTombstoned, "orgsTombstoned", res.OrgsTombstoned,
		"elapsed", res.Elapsed)
	return res, nil
}

func (s *SyncService) dumpRecords(records []identity.Record, n int) {
	if n <= 0 {
		return
	}
	if n > len(records) {
		n = len(records)
	}
	for i := 0; i < n; i++ {
		raw, err := sonic.MarshalString(records[i])
		if err != nil {
			continue
		}
		log.Debugw("raw identity record", "index", i, "record", raw)
	}
}
