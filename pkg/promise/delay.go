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

	"github.com/solarisdb/promissory/pkg/dispatch"
)

// Delay returns the new Future, which adopts the result of f after the delay d.
// It is DelayOn(dispatch.Automatic, d).
func (f *Future[T]) Delay(d time.Duration) *Future[T] {
	return f.DelayOn(dispatch.Automatic, d)
}

// DelayOn returns the new Future, which adopts the result of f (a value or an error)
// d after f is settled. The timer fires on the Executor c resolves to at the moment of
// the call, dispatch.Immediate is treated as dispatch.Automatic. Non-positive d
// doesn't skip the timer, the result is delivered as soon as the timer is served.
func (f *Future[T]) DelayOn(c dispatch.Context, d time.Duration) *Future[T] {
	target := c.NoImmediate().Target()
	out, res := NewPending[T]()
	f.OnSettle(dispatch.Immediate, func(r Result[T]) {
		dispatch.ScheduleTimer(target, d, func() {
			res.Resolve(r)
			logger.Tracef("%s delayed by %s: %s", f.id, d, r)
		})
	})
	return out
}
