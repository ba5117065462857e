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
	"testing"
	"time"

	"github.com/solarisdb/promissory/golibs/config"
	gctx "github.com/solarisdb/promissory/golibs/context"
	"github.com/solarisdb/promissory/pkg/dispatch"
)

// withDispatcher installs a fresh default Dispatcher for the test
func withDispatcher(t *testing.T) *dispatch.Dispatcher {
	d := dispatch.New(dispatch.Config{PoolMaxWorkers: 4, PoolIdleTimeout: config.Duration(time.Second),
		TimerMaxWorkers: 4, TimerIdleTimeout: config.Duration(time.Second)})
	prev := dispatch.SetDefault(d)
	t.Cleanup(func() {
		if prev == nil {
			prev = dispatch.New(*dispatch.GetDefaultConfig())
		}
		dispatch.SetDefault(prev)
		d.Shutdown()
	})
	return d
}

// settleAfter settles the Future with r after d from a separate goroutine
func settleAfter[T any](res *Resolver[T], d time.Duration, r Result[T]) {
	go func() {
		gctx.Sleep(context.Background(), d)
		res.Resolve(r)
	}()
}

// wait returns the Result of f, or fails the test if f is not settled in time
func wait[T any](t *testing.T, f *Future[T], tmt time.Duration) Result[T] {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(tmt):
		t.Fatalf("%s is not settled in %s", f, tmt)
	}
	r, ok := f.Result()
	if !ok {
		t.Fatalf("%s is done, but has no result", f)
	}
	return r
}
