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

type (
	// Executor runs functions. Implementations decide which goroutine runs f and when,
	// but every f passed to Execute is run at most once.
	Executor interface {
		// Execute runs f, possibly asynchronously
		Execute(f func())
	}

	// ExecutorFunc allows to use an ordinary function as Executor
	ExecutorFunc func(f func())

	immediate struct{}
)

var _ Executor = ExecutorFunc(nil)

// Execute implements Executor
func (ef ExecutorFunc) Execute(f func()) {
	ef(f)
}

// Execute runs f synchronously in the calling goroutine
func (immediate) Execute(f func()) {
	f()
}

func (immediate) String() string {
	return "immediate"
}
