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
	"time"

	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/pkg/log"
	"github.com/go-orgsync/orgsync/pkg/retry"
)

// idListStrategy queries each configured identifier individually. Results
// are deduplicated by canonical user id, so an identifier queried more
// than once cannot produce duplicate records. Per-id failures are logged
// and skipped.
type idListStrategy struct {
	q       identity.Querier
	userIDs []string
}

func (s *idListStrategy) Name() string { return "id-list" }

func (s *idListStrategy) Fetch(ctx context.Context) ([]identity.Record, error) {
	var records []identity.Record
	seen := make(map[string]bool, len(s.userIDs))

	log.Infow("querying configured user id list", "ids", len(s.userIDs))

	for _, userID := range s.userIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var page *identity.PageData
		err := retry.Do(ctx, func(ctx context.Context) error {
			var qErr error
			page, qErr = s.q.IdentityPage(ctx, identity.PageRequest{Current: 0, Size: 1, SourceUserID: userID})
			return qErr
		}, retry.WithMaxAttempts(3), retry.WithBackoff(retry.Fixed(500*time.Millisecond)))
		if err != nil {
			log.Warnw("user id query failed, skipping", "userId", userID, "error", err)
			continue
		}

		for _, rec := range page.Content {
			uid := rec.UserID()
			if uid == "" || seen[uid] {
				continue
			}
			seen[uid] = true
			records = append(records, rec)
		}
	}

	return records, nil
}
