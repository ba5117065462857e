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
	"time"

	"github.com/eapache/queue"
	"github.com/solarisdb/promissory/golibs/errors"
	"github.com/solarisdb/promissory/golibs/logging"
)

// Pool is the Executor which runs functions on a bounded set of goroutines. The
// functions are taken in the submission order, but may run in parallel. The workers
// are started on demand and exit after being idle for the idle timeout.
type Pool struct {
	name        string
	logger      logging.Logger
	lock        sync.Mutex
	tasks       *queue.Queue
	wakeCh      chan struct{}
	workers     int
	idle        int
	maxWorkers  int
	idleTimeout time.Duration
	closed      bool
}

var _ Executor = (*Pool)(nil)

// NewPool creates the new Pool with up to maxWorkers goroutines
func NewPool(name string, maxWorkers int, idleTimeout time.Duration) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = runtimeWorkers()
	}
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	return &Pool{
		name:        name,
		logger:      logging.NewLogger("dispatch.Pool." + name),
		tasks:       queue.New(),
		wakeCh:      make(chan struct{}, maxWorkers),
		maxWorkers:  maxWorkers,
		idleTimeout: idleTimeout,
	}
}

// Execute implements Executor. The function is dropped if the pool is closed.
func (p *Pool) Execute(f func()) {
	if err := p.Submit(f); err != nil {
		p.logger.Warnf("the function is dropped: %v", err)
	}
}

// Submit adds f to the pool queue. It returns an error if the pool is closed.
func (p *Pool) Submit(f func()) error {
	if f == nil {
		return fmt.Errorf("nil function submitted to %s: %w", p.name, errors.ErrInvalid)
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return fmt.Errorf("the pool %s is closed: %w", p.name, errors.ErrClosed)
	}
	p.tasks.Add(f)
	if p.idle > 0 {
		p.notify()
	} else if p.workers < p.maxWorkers {
		p.workers++
		go p.worker()
	}
	return nil
}

// Workers returns the number of running workers
func (p *Pool) Workers() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.workers
}

// Close stops accepting new functions. The submitted functions will be run, and the
// workers exit right after the queue becomes empty.
func (p *Pool) Close() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for i := 0; i < p.idle; i++ {
		p.notify()
	}
}

// String implements fmt.Stringer
func (p *Pool) String() string {
	return p.name
}

func (p *Pool) notify() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

func (p *Pool) worker() {
	for {
		p.lock.Lock()
		if p.tasks.Length() > 0 {
			f := p.tasks.Remove().(func())
			p.lock.Unlock()
			runSafe(p.logger, f)
			continue
		}
		if p.closed {
			p.workers--
			p.lock.Unlock()
			return
		}
		p.idle++
		p.lock.Unlock()

		timedOut := false
		tmr := time.NewTimer(p.idleTimeout)
		select {
		case <-p.wakeCh:
			tmr.Stop()
		case <-tmr.C:
			timedOut = true
		}

		p.lock.Lock()
		p.idle--
		if timedOut && p.tasks.Length() == 0 {
			p.workers--
			p.lock.Unlock()
			return
		}
		p.lock.Unlock()
	}
}
