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

import "github.com/go-orgsync/orgsync/pkg/statemachine"

// Run stages. A run moves forward only; any stage may fall to
// StageFailed, which is terminal along with StageDone.
const (
	StageFetching             = "fetching"
	StageUsersSynced          = "users_synced"
	StageOrganizationsFetched = "organizations_fetched"
	StageOrganizationsSynced  = "organizations_synced"
	StageMembershipsSynced    = "memberships_synced"
	StageTombstonesApplied    = "tombstones_applied"
	StageDone                 = "done"
	StageFailed               = "failed"
)

func newRunStateMachine() *statemachine.StateMachine[string] {
	sm := statemachine.NewWithState(StageFetching)
	sm.Allow(StageFetching, StageUsersSynced, StageFailed)
	sm.Allow(StageUsersSynced, StageOrganizationsFetched, StageFailed)
	sm.Allow(StageOrganizationsFetched, StageOrganizationsSynced, StageFailed)
	sm.Allow(StageOrganizationsSynced, StageMembershipsSynced, StageFailed)
	sm.Allow(StageMembershipsSynced, StageTombstonesApplied, StageFailed)
	sm.Allow(StageTombstonesApplied, StageDone, StageFailed)
	return sm
}
