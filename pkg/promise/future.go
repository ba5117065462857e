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

package promise

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/solarisdb/promissory/golibs/ulidutils"
	"github.com/solarisdb/promissory/pkg/dispatch"
)

type (
	// Future holds a Result which becomes available some time later. The Future
	// is settled once, by its Resolver, and never changes after that.
	Future[T any] struct {
		id        string
		state     atomic.Int32
		lock      sync.Mutex
		res       Result[T]
		observers []observer[T]
		done      chan struct{}
	}

	// Resolver is the only way to settle its Future. All the methods may be called
	// concurrently, only the first call settles the Future.
	Resolver[T any] struct {
		f *Future[T]
	}

	observer[T any] struct {
		target dispatch.Executor
		cb     func(Result[T])
	}
)

const (
	statePending int32 = iota
	stateSettling
	stateSettled
)

// NewPending returns the new not settled Future and its Resolver
func NewPending[T any]() (*Future[T], *Resolver[T]) {
	f := &Future[T]{id: ulidutils.NewID(), done: make(chan struct{})}
	return f, &Resolver[T]{f: f}
}

// NewFulfilled returns the Future settled with the value v
func NewFulfilled[T any](v T) *Future[T] {
	f, r := NewPending[T]()
	r.Fulfill(v)
	return f
}

// NewRejected returns the Future settled with the error err
func NewRejected[T any](err error) *Future[T] {
	f, r := NewPending[T]()
	r.Reject(err)
	return f
}

// ID returns the Future identifier, unique for the process
func (f *Future[T]) ID() string {
	return f.id
}

// OnSettle registers the callback cb, which is called once with the Future Result.
// The Context c is resolved at the moment of the call, and cb runs on the resolved
// Executor. If the Future is settled already, cb is passed to the Executor right away.
func (f *Future[T]) OnSettle(c dispatch.Context, cb func(Result[T])) {
	if cb == nil {
		panic("OnSettle() is called with nil callback")
	}
	target := c.Target()
	f.lock.Lock()
	if f.state.Load() != stateSettled {
		f.observers = append(f.observers, observer[T]{target: target, cb: cb})
		f.lock.Unlock()
		return
	}
	res := f.res
	f.lock.Unlock()
	target.Execute(func() { cb(res) })
}

// IsSettled returns true if the Future has its Result
func (f *Future[T]) IsSettled() bool {
	return f.state.Load() == stateSettled
}

// Result returns the Future Result and true if the Future is settled. It returns
// false if the Future is pending.
func (f *Future[T]) Result() (Result[T], bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.state.Load() != stateSettled {
		return Result[T]{}, false
	}
	return f.res, true
}

// Done returns the channel, which is closed when the Future is settled
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks the caller until the Future is settled or ctx is closed. It returns
// the Future value and error, or ctx.Err() if the context is closed first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	r, _ := f.Result()
	return r.Get()
}

// String implements fmt.Stringer
func (f *Future[T]) String() string {
	if r, ok := f.Result(); ok {
		return fmt.Sprintf("Future{id: %s, %s}", f.id, r)
	}
	return fmt.Sprintf("Future{id: %s, pending}", f.id)
}

// settle moves the Future from pending to settled. The compare-and-set on the
// state lets only one caller through, all others get false.
func (f *Future[T]) settle(r Result[T]) bool {
	if !f.state.CompareAndSwap(statePending, stateSettling) {
		return false
	}
	f.lock.Lock()
	f.res = r
	f.state.Store(stateSettled)
	obs := f.observers
	f.observers = nil
	close(f.done)
	f.lock.Unlock()

	for _, o := range obs {
		o := o
		o.target.Execute(func() { o.cb(r) })
	}
	return true
}

// Future returns the Future the Resolver settles
func (r *Resolver[T]) Future() *Future[T] {
	return r.f
}

// Fulfill settles the Future with the value v. It returns false if the Future
// was settled before, the value is discarded then.
func (r *Resolver[T]) Fulfill(v T) bool {
	return r.f.settle(Fulfilled(v))
}

// Reject settles the Future with the error err, which must not be nil. It returns
// false if the Future was settled before, the error is discarded then.
func (r *Resolver[T]) Reject(err error) bool {
	return r.f.settle(Rejected[T](err))
}

// Resolve settles the Future with the Result res. It returns false if the Future
// was settled before.
func (r *Resolver[T]) Resolve(res Result[T]) bool {
	return r.f.settle(res)
}
