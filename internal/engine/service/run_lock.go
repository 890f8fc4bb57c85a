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
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/go-orgsync/orgsync/pkg/runner"
)

const runLockPrefix = "orgsync:run_lock:"

// RunLock serializes runs per tenant. Concurrent runs against the same
// tenant race on the relation replacement and the tombstone sweep.
type RunLock interface {
	TryAcquire(ctx context.Context, tenantId string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, tenantId string) error
}

// RedisRunLock coordinates runs across processes through a Redis SETNX
// key. The ttl guards against a crashed holder pinning the lock forever.
type RedisRunLock struct {
	client *redis.Client
}

func NewRedisRunLock(client *redis.Client) *RedisRunLock {
	return &RedisRunLock{client: client}
}

func (rl *RedisRunLock) TryAcquire(ctx context.Context, tenantId string, ttl time.Duration) (bool, error) {
	return rl.client.SetNX(ctx, runLockPrefix+tenantId, runner.Hostname, ttl).Result()
}

func (rl *RedisRunLock) Release(ctx context.Context, tenantId string) error {
	return rl.client.Del(ctx, runLockPrefix+tenantId).Err()
}

// LocalRunLock is the in-process fallback when no Redis is configured.
type LocalRunLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalRunLock() *LocalRunLock {
	return &LocalRunLock{held: make(map[string]bool)}
}

func (ll *LocalRunLock) TryAcquire(_ context.Context, tenantId string, _ time.Duration) (bool, error) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	if ll.held[tenantId] {
		return false, nil
	}
	ll.held[tenantId] = true
	return true, nil
}

func (ll *LocalRunLock) Release(_ context.Context, tenantId string) error {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	delete(ll.held, tenantId)
	return nil
}
