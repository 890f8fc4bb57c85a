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

package cron

import (
	"sync"
	"time"

	"github.com/go-orgsync/orgsync/pkg/log"
	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and serializes each named job: a tick that
// fires while the previous execution of the same job is still running is
// skipped, not queued.
type Scheduler struct {
	c  *cron.Cron
	mu sync.Mutex
	// job name -> running flag
	running map[string]bool
}

// New creates a Scheduler using the standard 5-field cron spec.
func New() *Scheduler {
	return &Scheduler{
		c:       cron.New(),
		running: make(map[string]bool),
	}
}

// AddJob schedules fn under name. Errors returned by fn are logged.
func (s *Scheduler) AddJob(spec, name string, fn func() error) error {
	_, err := s.c.AddFunc(spec, func() {
		if !s.tryAcquire(name) {
			log.Warnw("previous run still in progress, skipping tick", "job", name)
			return
		}
		defer s.release(name)

		start := time.Now()
		if err := fn(); err != nil {
			log.Errorw("scheduled job failed", "job", name, "elapsed", time.Since(start), "error", err)
			return
		}
		log.Infow("scheduled job finished", "job", name, "elapsed", time.Since(start))
	})
	return err
}

// Start begins scheduling in a new goroutine.
func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

func (s *Scheduler) tryAcquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, name)
}
