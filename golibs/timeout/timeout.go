// Copyright 2023 The acquirecloud Authors
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
package timeout

import (
	"container/heap"
	"fmt"
	"sync"
	"time"
)

type (
	// Timer allows to cancel a function call requested by Call()
	Timer interface {
		// Cancel cancels the scheduled call. It returns true if the function will never
		// be called because of the cancellation, and false if the function is already
		// called (or it is being called right now), or if the Timer was canceled before.
		Cancel() bool
	}

	// Scheduler keeps the scheduled calls and runs them when their time comes.
	Scheduler struct {
		lock        sync.Mutex
		wakeCh      chan bool
		timers      *timers
		watchers    int
		idleTimeout time.Duration
		maxWorkers  int
		closed      bool
	}

	timer struct {
		s     *Scheduler
		f     func()
		fireT time.Time
		idx   int
	}

	timers []*timer

	voidTimer struct{}
)

const (
	// DefaultMaxWorkers is the number of watchers used when NewScheduler gets a non-positive one
	DefaultMaxWorkers = 10
	// DefaultIdleTimeout is how long an idle watcher stays alive
	DefaultIdleTimeout = 30 * time.Second
)

// VoidTimer maybe used to initialize a Timer variable, without checking whether it is nil or not
var VoidTimer Timer = voidTimer{}

// NewScheduler creates the new Scheduler. maxWorkers limits the number of goroutines
// that may run the fired functions in parallel, idleTimeout specifies how long a
// goroutine waits for a new job before exiting.
func NewScheduler(maxWorkers int, idleTimeout time.Duration) *Scheduler {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	s := new(Scheduler)
	s.timers = &timers{}
	s.maxWorkers = maxWorkers
	s.wakeCh = make(chan bool, maxWorkers)
	s.idleTimeout = idleTimeout
	heap.Init(s.timers)
	return s
}

// Call schedules the execution of the function f in timeout. Non-positive timeout means
// the function should be called as soon as possible. The function returns the Timer,
// which may be used for cancelling the call. A nil f, or a call made after Shutdown(),
// is never executed.
func (s *Scheduler) Call(f func(), timeout time.Duration) Timer {
	t := new(timer)
	t.f = f
	t.fireT = time.Now().Add(timeout)
	t.idx = -1
	t.s = s
	if f != nil {
		s.add(t)
	}
	return t
}

// Len returns the number of calls waiting for their time
func (s *Scheduler) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.timers.Len()
}

// Shutdown drops all the scheduled calls, which are not started yet, and lets the
// watchers go. The Scheduler doesn't accept new calls after that.
func (s *Scheduler) Shutdown() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, t := range *s.timers {
		t.idx = -1
		t.f = nil
	}
	*s.timers = (*s.timers)[:0]
	for i := 0; i < s.watchers; i++ {
		s.notifyWatcher()
	}
}

// Cancel implements Timer
func (t *timer) Cancel() bool {
	return t.s.cancel(t)
}

// String implements fmt.Stringify
func (t *timer) String() string {
	return t.s.timerAsString(t)
}

func (s *Scheduler) add(t *timer) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return
	}
	heap.Push(s.timers, t)
	if s.watchers == 0 {
		s.watchers++
		go s.watcher()
	} else {
		s.notifyWatcher()
	}
}

func (s *Scheduler) timerAsString(t *timer) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fmt.Sprintf("{fireT: %v, scheduled: %t}", t.fireT, t.idx >= 0)
}

func (s *Scheduler) cancel(t *timer) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if t.idx < 0 {
		return false
	}
	t.f = nil
	heap.Remove(s.timers, t.idx)
	if s.watchers > 0 {
		s.notifyWatcher()
	}
	return true
}

func (s *Scheduler) notifyWatcher() {
	select {
	case s.wakeCh <- true:
	default:
	}
}

func (s *Scheduler) watcher() {
	misCount := 0
	var f func()
	for {
		if f != nil {
			f()
			f = nil
			misCount = 0
		} else {
			misCount++
		}

		var tmt time.Duration
		s.lock.Lock()
		if s.closed {
			s.watchers--
			s.lock.Unlock()
			return
		}
		if s.timers.Len() == 0 {
			if misCount > 1 {
				s.watchers--
				s.lock.Unlock()
				return
			}
			tmt = s.idleTimeout
		} else {
			fireT := (*s.timers)[0].fireT
			now := time.Now()
			if !now.Before(fireT) {
				t := heap.Pop(s.timers).(*timer)
				f = t.f
				if s.timers.Len() > 0 {
					fireT = (*s.timers)[0].fireT
					if !now.Before(fireT) && s.watchers < s.maxWorkers {
						// more calls are due, let another watcher help
						s.watchers++
						go s.watcher()
					}
				}
				s.lock.Unlock()
				continue
			}

			tmt = fireT.Sub(now)
			if s.watchers > 1 {
				if misCount > 1 {
					s.watchers--
					s.lock.Unlock()
					return
				}
				if tmt > s.idleTimeout {
					tmt = s.idleTimeout
				}
			}
		}
		s.lock.Unlock()

		tmr := time.NewTimer(tmt)
		select {
		case <-tmr.C:
		case <-s.wakeCh:
			if !tmr.Stop() {
				select {
				case <-tmr.C:
				default:
				}
			}
			misCount = 0
		}
	}
}

func (ts *timers) Len() int {
	return len(*ts)
}

func (ts *timers) Less(i, j int) bool {
	return (*ts)[i].fireT.Before((*ts)[j].fireT)
}

func (ts *timers) Swap(i, j int) {
	(*ts)[i], (*ts)[j] = (*ts)[j], (*ts)[i]
	(*ts)[i].idx, (*ts)[j].idx = i, j
}

func (ts *timers) Push(x any) {
	t := x.(*timer)
	t.idx = ts.Len()
	*ts = append(*ts, t)
}

func (ts *timers) Pop() any {
	last := ts.Len() - 1
	res := (*ts)[last]
	(*ts)[last] = nil
	*ts = (*ts)[:last]
	res.idx = -1
	return res
}

func (v voidTimer) Cancel() bool {
	return false
}
