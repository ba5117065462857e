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
	"time"

	"github.com/solarisdb/promissory/golibs/logging"
	"github.com/solarisdb/promissory/pkg/dispatch"
)

var logger = logging.NewLogger("promise")

// Timeout returns the new Future, which is rejected with ErrTimedOut if f is not
// settled within d. It is TimeoutOn(dispatch.Automatic, d).
func (f *Future[T]) Timeout(d time.Duration) *Future[T] {
	return f.TimeoutOn(dispatch.Automatic, d)
}

// TimeoutOn returns the new Future, which adopts the value of f if f is fulfilled
// within d. If f is rejected within d the new Future is rejected with the
// TimeoutError returned by NewRejectedError(). If the time is over first, the new
// Future is rejected with ErrTimedOut and the later result of f is discarded. The
// errors of the returned Future are always TimeoutError.
//
// Both the callback observing f and the timer run on the Executor c resolves to at
// the moment of the call, dispatch.Immediate is treated as dispatch.Automatic.
//
// If d is not positive, the Future times out at once, unless f is settled already
// at the moment of the call: its result is adopted then.
func (f *Future[T]) TimeoutOn(c dispatch.Context, d time.Duration) *Future[T] {
	target := c.NoImmediate().Target()
	out, res := NewPending[T]()

	if d <= 0 {
		r, settled := f.Result()
		target.Execute(func() {
			if settled {
				res.Resolve(adopt(r))
				return
			}
			res.Reject(ErrTimedOut)
			logger.Tracef("%s timed out at once", f.id)
		})
		return out
	}

	tmr := dispatch.ScheduleTimer(target, d, func() {
		if res.Reject(ErrTimedOut) {
			logger.Tracef("%s timed out after %s", f.id, d)
		}
	})
	f.OnSettle(dispatch.On(target), func(r Result[T]) {
		canceled := tmr.Cancel()
		if res.Resolve(adopt(r)) {
			logger.Tracef("%s settled before the timeout %s, timer canceled=%t", f.id, d, canceled)
		} else {
			logger.Tracef("%s settled after the timeout %s, the result %s is discarded", f.id, d, r)
		}
	})
	return out
}

// adopt converts the source Result to the Result of the timeout Future
func adopt[T any](r Result[T]) Result[T] {
	if r.IsRejected() {
		return Rejected[T](NewRejectedError(r.Err()))
	}
	return r
}
