// Copyright 2024 The Solaris Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/petermattis/goid"
	"github.com/solarisdb/promissory/golibs/errors"
	"github.com/solarisdb/promissory/golibs/logging"
)

// Serial is the Executor which runs functions one by one, in the order they were
// submitted. At most one goroutine serves the queue at any moment, it is started
// when there is something to run and exits when the queue is empty.
type Serial struct {
	name     string
	logger   logging.Logger
	lock     sync.Mutex
	tasks    *queue.Queue
	running  bool
	closed   bool
	workerID atomic.Int64
}

var _ Executor = (*Serial)(nil)

// NewSerial creates the new Serial executor
func NewSerial(name string) *Serial {
	return &Serial{
		name:   name,
		logger: logging.NewLogger("dispatch.Serial." + name),
		tasks:  queue.New(),
	}
}

// Execute implements Executor. The function is dropped if the queue is closed.
func (s *Serial) Execute(f func()) {
	if err := s.Submit(f); err != nil {
		s.logger.Warnf("the function is dropped: %v", err)
	}
}

// Submit adds f to the end of the queue. It returns an error if the queue is closed.
func (s *Serial) Submit(f func()) error {
	if f == nil {
		return fmt.Errorf("nil function submitted to %s: %w", s.name, errors.ErrInvalid)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return fmt.Errorf("the serial queue %s is closed: %w", s.name, errors.ErrClosed)
	}
	s.tasks.Add(f)
	if !s.running {
		s.running = true
		go s.run()
	}
	return nil
}

// IsCurrent returns true if it is called from a function run by the queue
func (s *Serial) IsCurrent() bool {
	id := s.workerID.Load()
	return id != 0 && id == goid.Get()
}

// Len returns the number of functions waiting in the queue
func (s *Serial) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.tasks.Length()
}

// Close stops accepting new functions. The functions submitted before will be run.
func (s *Serial) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.closed = true
}

// String implements fmt.Stringer
func (s *Serial) String() string {
	return s.name
}

func (s *Serial) run() {
	s.workerID.Store(goid.Get())
	for {
		s.lock.Lock()
		if s.tasks.Length() == 0 {
			s.running = false
			s.workerID.Store(0)
			s.lock.Unlock()
			return
		}
		f := s.tasks.Remove().(func())
		s.lock.Unlock()
		runSafe(s.logger, f)
	}
}

// runSafe runs f and reports its panic, so one broken callback doesn't stop the worker
func runSafe(logger logging.Logger, f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic in the executed function: %v", r)
		}
	}()
	f()
}
