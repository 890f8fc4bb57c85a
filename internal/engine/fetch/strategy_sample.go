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

package fetch

import (
	"context"

	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/pkg/log"
)

// sampleStrategy issues one single-record query for the configured
// sample id. It exists for connectivity and record-shape verification
// only; its result is never representative of the population.
type sampleStrategy struct {
	q        identity.Querier
	sampleID string
}

func (s *sampleStrategy) Name() string { return "sample" }

func (s *sampleStrategy) Fetch(ctx context.Context) ([]identity.Record, error) {
	page, err := s.q.IdentityPage(ctx, identity.PageRequest{Current: 0, Size: 1, SourceUserID: s.sampleID})
	if err != nil {
		return nil, err
	}

	if len(page.Content) > 0 {
		log.Warnw("sample strategy returned a single user; result is NOT the full population",
			"sampleUserId", s.sampleID)
		return page.Content[:1], nil
	}
	return nil, nil
}
