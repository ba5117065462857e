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
	"fmt"

	"github.com/solarisdb/promissory/golibs/errors"
)

type (
	// TimeoutError is the error a Future returned by Timeout is rejected with. It
	// holds one of two things: either the Future timed out (TimedOut() is true and
	// RejectedError() is nil), or the source Future was rejected (TimedOut() is false
	// and RejectedError() is the source error). There are no other TimeoutError
	// values: ErrTimedOut is the first kind, NewRejectedError() makes the second.
	TimeoutError interface {
		error
		// TimedOut returns true if the timer fired before the source was settled
		TimedOut() bool
		// RejectedError returns the error the source Future was rejected with
		RejectedError() error

		timeoutError()
	}

	timedOutError struct{}

	rejectedError struct {
		err error
	}
)

// ErrTimedOut is the TimeoutError for the source Future, which was not settled in time
var ErrTimedOut TimeoutError = timedOutError{}

// NewRejectedError returns the TimeoutError wrapping the source rejection err,
// which must not be nil.
func NewRejectedError(err error) TimeoutError {
	if err == nil {
		panic("NewRejectedError() is called with nil error")
	}
	return rejectedError{err: err}
}

// AsTimeoutError finds the first TimeoutError in the err chain
func AsTimeoutError(err error) (TimeoutError, bool) {
	var te TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func (timedOutError) Error() string {
	return "promise timed out"
}

func (timedOutError) TimedOut() bool {
	return true
}

func (timedOutError) RejectedError() error {
	return nil
}

// Unwrap returns errors.ErrTimeout, so the error is reported as a timeout by the
// general errors helpers (errors.GRPCStatusCode gives DeadlineExceeded)
func (timedOutError) Unwrap() error {
	return errors.ErrTimeout
}

func (timedOutError) timeoutError() {}

func (re rejectedError) Error() string {
	return fmt.Sprintf("promise rejected: %v", re.err)
}

func (re rejectedError) TimedOut() bool {
	return false
}

func (re rejectedError) RejectedError() error {
	return re.err
}

// Unwrap returns the source error as is
func (re rejectedError) Unwrap() error {
	return re.err
}

func (rejectedError) timeoutError() {}
