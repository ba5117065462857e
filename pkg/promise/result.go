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

import "fmt"

// Result is the outcome of a settled Future: a value or an error
type Result[T any] struct {
	value T
	err   error
}

// Fulfilled returns the Result holding the value v
func Fulfilled[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Rejected returns the Result holding the error err. err must not be nil.
func Rejected[T any](err error) Result[T] {
	if err == nil {
		panic("promise.Rejected() is called with nil error")
	}
	return Result[T]{err: err}
}

// Value returns the value, it is the zero value for rejected results
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the error the Result is rejected with, or nil
func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsFulfilled() bool {
	return r.err == nil
}

func (r Result[T]) IsRejected() bool {
	return r.err != nil
}

// Get returns the value and the error, like an ordinary Go function does
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// String implements fmt.Stringer
func (r Result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("rejected(%v)", r.err)
	}
	return fmt.Sprintf("fulfilled(%v)", r.value)
}
