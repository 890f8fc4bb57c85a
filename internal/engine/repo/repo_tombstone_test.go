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
	"testing"

	"github.com/stretchr/testify/assert"
)

// The empty-set guard must short-circuit before any database access:
// both repos are built with a nil handle here, so a regression that
// reaches the database panics the test.

func TestTombstoneUsersEmptyActiveSetIsNoop(t *testing.T) {
	ur := NewSyncUserRepo(nil)
	n, err := ur.TombstoneUsers(context.Background(), "t-1", nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestTombstoneOrganizationsEmptyActiveSetIsNoop(t *testing.T) {
	or := NewSyncOrganizationRepo(nil)
	n, err := or.TombstoneOrganizations(context.Background(), "t-1", []string{})
	assert.NoError(t, err)
	assert.Zero(t, n)
}
