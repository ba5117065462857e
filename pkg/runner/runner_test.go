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

package runner

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/solarisdb/promissory/golibs/errors"
	"github.com/solarisdb/promissory/pkg/dispatch"
	"github.com/solarisdb/promissory/pkg/promise"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func withDispatcher(t *testing.T) {
	d := dispatch.New(*dispatch.GetDefaultConfig())
	prev := dispatch.SetDefault(d)
	t.Cleanup(func() {
		if prev == nil {
			prev = dispatch.New(*dispatch.GetDefaultConfig())
		}
		dispatch.SetDefault(prev)
		d.Shutdown()
	})
}

// runs first in the package, when the default dispatcher was never used
func TestRunLeavesLiveDefault(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, Run(context.Background(), getDefaultConfig(), Scenario{Op: OpTimeout, Interval: time.Millisecond, Never: true}, &buf))

	r, err := promise.NewFulfilled(1).Delay(time.Millisecond).Await(ctxWithTimeout(t, time.Second))
	assert.Nil(t, err)
	assert.Equal(t, 1, r)
	assert.Equal(t, 0, dispatch.Default().PendingTimers())
}

func TestScenarioCheck(t *testing.T) {
	assert.True(t, errors.Is(Scenario{Op: "wait"}.Check(), errors.ErrInvalid))
	assert.True(t, errors.Is(Scenario{Op: OpTimeout, Value: "a", Reject: "b"}.Check(), errors.ErrInvalid))
	assert.True(t, errors.Is(Scenario{Op: OpDelay, Never: true}.Check(), errors.ErrInvalid))
	assert.True(t, errors.Is(Scenario{Op: OpDelay, SettleAfter: -1}.Check(), errors.ErrInvalid))
	assert.Nil(t, Scenario{Op: OpTimeout, Never: true}.Check())
}

func TestScenarioTimeout(t *testing.T) {
	withDispatcher(t)
	o, err := Scenario{Op: OpTimeout, Interval: time.Second, SettleAfter: 10 * time.Millisecond, Value: "42"}.Run(context.Background())
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(o.String(), "fulfilled: 42 (OK, "))

	o, err = Scenario{Op: OpTimeout, Interval: 50 * time.Millisecond, Never: true}.Run(context.Background())
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(o.String(), "timed out (DeadlineExceeded, "))
	assert.GreaterOrEqual(t, o.Elapsed, 50*time.Millisecond)

	o, err = Scenario{Op: OpTimeout, Interval: time.Second, SettleAfter: 5 * time.Millisecond, Reject: "boom"}.Run(context.Background())
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(o.String(), "rejected: boom (Internal, "))

	o, err = Scenario{Op: OpTimeout, Value: "now"}.Run(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "now", o.Result.Value())
}

func TestScenarioDelay(t *testing.T) {
	withDispatcher(t)
	o, err := Scenario{Op: OpDelay, Interval: 50 * time.Millisecond, Value: "done", Context: dispatch.Main}.Run(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "done", o.Result.Value())
	assert.GreaterOrEqual(t, o.Elapsed, 50*time.Millisecond)

	o, err = Scenario{Op: OpDelay, Interval: 10 * time.Millisecond, Reject: "boom"}.Run(context.Background())
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(o.String(), "rejected: boom (Internal, "))
}

func TestOutcomeCode(t *testing.T) {
	withDispatcher(t)
	o, err := Scenario{Op: OpTimeout, Interval: 10 * time.Millisecond, Never: true}.Run(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, codes.DeadlineExceeded, o.Code())

	o, err = Scenario{Op: OpTimeout, Interval: time.Second, Reject: "boom"}.Run(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, codes.Internal, o.Code())

	o, err = Scenario{Op: OpDelay, Interval: time.Millisecond, Value: "v"}.Run(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, codes.OK, o.Code())

	o = Outcome{Result: promise.Rejected[string](promise.NewRejectedError(fmt.Errorf("lost: %w", errors.ErrNotExist)))}
	assert.Equal(t, codes.NotFound, o.Code())
	assert.Equal(t, "rejected: lost: not exist (NotFound, 0s)", o.String())
}

func TestScenarioCanceled(t *testing.T) {
	withDispatcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Scenario{Op: OpTimeout, Interval: time.Minute, Never: true}.Run(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func ctxWithTimeout(t *testing.T, d time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	cfg := getDefaultConfig()
	assert.Nil(t, Run(context.Background(), cfg, Scenario{Op: OpTimeout, Interval: 10 * time.Millisecond, Never: true}, &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "timed out (DeadlineExceeded, "))

	cfg.LogLevel = "LOUD"
	assert.True(t, errors.Is(Run(context.Background(), cfg, Scenario{Op: OpDelay}, &buf), errors.ErrInvalid))
	cfg.LogLevel = "INFO"
	assert.True(t, errors.Is(Run(context.Background(), cfg, Scenario{Op: "x"}, &buf), errors.ErrInvalid))
}
