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

package identity

import (
	"context"

	"github.com/go-orgsync/orgsync/pkg/attr"
)

// Record is one raw user record as returned by the identity center. The
// upstream contract is loose: fields may live under several aliases and
// nested sub-objects may be missing, so all access goes through pkg/attr.
type Record map[string]any

// UserID returns the canonical identifier for the record: the first
// non-empty of sourceUserId, userId, id. Every stage (upsert, membership,
// tombstoning) keys on this one value.
func (r Record) UserID() string {
	return attr.String(r, "sourceUserId", "userId", "id")
}

// PageRequest is a paged identity query. A zero SourceUserID asks for the
// unscoped population; a set one asks for a single user.
type PageRequest struct {
	Current      int    `json:"current"`
	Size         int    `json:"size"`
	SourceUserID string `json:"sourceUserId,omitempty"`
}

// PageInfo carries the server-reported pagination state. Total may be 0
// when the server does not know the population size.
type PageInfo struct {
	Total int64 `json:"total"`
}

// PageData is one page of the identity population.
type PageData struct {
	Page    PageInfo `json:"page"`
	Content []Record `json:"content"`
}

// Querier is the paged-query capability of the identity source. Retrieval
// strategies depend on this interface only, never on the transport.
type Querier interface {
	IdentityPage(ctx context.Context, req PageRequest) (*PageData, error)
}
