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

// pagedStrategy requests fixed-size pages with no user filter until the
// source signals the end of the population: an empty page, a short page,
// or a running total reaching the server-reported total count.
//
// With maxUsers > 0 pages are still requested in full but only the
// remaining quota is appended, and the loop stops once the quota is met.
type pagedStrategy struct {
	q        identity.Querier
	pageSize int
	maxUsers int
}

func (s *pagedStrategy) Name() string { return "paged" }

func (s *pagedStrategy) Fetch(ctx context.Context) ([]identity.Record, error) {
	var records []identity.Record
	current := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := s.q.IdentityPage(ctx, identity.PageRequest{Current: current, Size: s.pageSize})
		if err != nil {
			// A mid-pagination failure must not surface a partial,
			// unflagged population.
			return nil, err
		}

		content := page.Content
		if len(content) == 0 {
			break
		}

		if s.maxUsers > 0 {
			remaining := s.maxUsers - len(records)
			if remaining <= 0 {
				break
			}
			if len(content) > remaining {
				content = content[:remaining]
			}
		}
		records = append(records, content...)

		total := page.Page.Total
		log.Infow("fetched identity page",
			"page", current+1, "pageUsers", len(page.Content), "users", len(records), "total", total)

		if s.maxUsers > 0 && len(records) >= s.maxUsers {
			break
		}
		// a short page signals the last page
		if len(page.Content) < s.pageSize {
			break
		}
		if total > 0 && int64(len(records)) >= total {
			break
		}

		current++
	}

	return records, nil
}
