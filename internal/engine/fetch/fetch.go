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

// Package fetch obtains the full user population from an identity source
// whose pagination contract is not guaranteed. Strategies are tried in
// fixed priority order; the first one that yields records wins.
package fetch

import (
	"context"
	"errors"

	"github.com/go-orgsync/orgsync/internal/engine/identity"
	"github.com/go-orgsync/orgsync/pkg/log"
)

// ErrRetrievalExhausted is returned when no strategy produced any
// records. It is fatal to the run: nothing may be persisted on top of an
// empty retrieval.
var ErrRetrievalExhausted = errors.New("retrieval exhausted: no strategy returned any user records")

const defaultPageSize = 100

// Options select and parameterize the retrieval strategies.
type Options struct {
	PageSize int
	// MaxUsers caps the fetched population. Diagnostic runs only; 0 means
	// unlimited.
	MaxUsers int
	// UserIDs enables the explicit id-list strategy.
	UserIDs []string
	// SampleUserID enables the single-sample strategy (connectivity and
	// shape verification only).
	SampleUserID string
}

func (o Options) pageSize() int {
	if o.PageSize > 0 {
		return o.PageSize
	}
	return defaultPageSize
}

// Strategy is one way of obtaining the user population.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context) ([]identity.Record, error)
}

// Strategies returns the strategy chain for q in priority order:
// unscoped pagination, explicit id list (when configured), single sample
// id (when configured).
func Strategies(q identity.Querier, opts Options) []Strategy {
	chain := []Strategy{
		&pagedStrategy{q: q, pageSize: opts.pageSize(), maxUsers: opts.MaxUsers},
	}
	if len(opts.UserIDs) > 0 {
		chain = append(chain, &idListStrategy{q: q, userIDs: opts.UserIDs})
	}
	if opts.SampleUserID != "" {
		chain = append(chain, &sampleStrategy{q: q, sampleID: opts.SampleUserID})
	}
	return chain
}

// FetchAll walks the strategy chain and returns the first non-empty
// population. A strategy error is logged and advances the chain, the
// same as an empty result; only total exhaustion is fatal.
func FetchAll(ctx context.Context, q identity.Querier, opts Options) ([]identity.Record, error) {
	for _, s := range Strategies(q, opts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := s.Fetch(ctx)
		if err != nil {
			log.Warnw("retrieval strategy failed, trying next", "strategy", s.Name(), "error", err)
			continue
		}
		if len(records) == 0 {
			log.Warnw("retrieval strategy returned no records, trying next", "strategy", s.Name())
			continue
		}

		log.Infow("retrieval strategy succeeded", "strategy", s.Name(), "users", len(records))
		return records, nil
	}

	return nil, ErrRetrievalExhausted
}
