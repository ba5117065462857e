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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/logrange/linker"
	"github.com/solarisdb/promissory/golibs/errors"
	"github.com/solarisdb/promissory/golibs/logging"
	"github.com/solarisdb/promissory/pkg/dispatch"
	"github.com/solarisdb/promissory/pkg/promise"
	"google.golang.org/grpc/codes"
)

type (
	// Op is the combinator a Scenario applies to the source Future
	Op string

	// Scenario describes the source Future, and the combinator applied to it
	Scenario struct {
		// Op is either OpDelay or OpTimeout
		Op Op
		// Interval is the delay or the timeout duration
		Interval time.Duration
		// SettleAfter is when the source is settled, zero settles it before the
		// combinator is applied
		SettleAfter time.Duration
		// Value is the value the source is fulfilled with
		Value string
		// Reject, if not empty, is the error message the source is rejected with
		Reject string
		// Never leaves the source pending forever, OpTimeout only
		Never bool
		// Context is where the output Future is settled
		Context dispatch.Context
	}

	// Outcome is how the output Future of a Scenario settled
	Outcome struct {
		Result  promise.Result[string]
		Elapsed time.Duration
	}
)

const (
	OpDelay   Op = "delay"
	OpTimeout Op = "timeout"
)

// Check returns an error if the Scenario cannot be run
func (s Scenario) Check() error {
	if s.Op != OpDelay && s.Op != OpTimeout {
		return fmt.Errorf("unknown operation %q: %w", s.Op, errors.ErrInvalid)
	}
	if s.Value != "" && s.Reject != "" {
		return fmt.Errorf("the source cannot be fulfilled and rejected at the same time: %w", errors.ErrInvalid)
	}
	if s.Never && s.Op == OpDelay {
		return fmt.Errorf("delay of the never settled source never completes: %w", errors.ErrInvalid)
	}
	if s.SettleAfter < 0 {
		return fmt.Errorf("settle-after must not be negative, but it is %s: %w", s.SettleAfter, errors.ErrInvalid)
	}
	return nil
}

// Run applies the Scenario combinator to a fresh source Future and waits for the
// output Future, or the ctx is closed.
func (s Scenario) Run(ctx context.Context) (Outcome, error) {
	if err := s.Check(); err != nil {
		return Outcome{}, err
	}
	src, res := promise.NewPending[string]()
	settle := func() {
		if s.Reject != "" {
			res.Reject(errors.New(s.Reject))
			return
		}
		res.Fulfill(s.Value)
	}

	start := time.Now()
	switch {
	case s.Never:
	case s.SettleAfter == 0:
		settle()
	default:
		dispatch.ScheduleTimer(dispatch.Immediate.Target(), s.SettleAfter, settle)
	}

	var out *promise.Future[string]
	if s.Op == OpDelay {
		out = src.DelayOn(s.Context, s.Interval)
	} else {
		out = src.TimeoutOn(s.Context, s.Interval)
	}
	select {
	case <-out.Done():
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
	r, _ := out.Result()
	return Outcome{Result: r, Elapsed: time.Since(start)}, nil
}

// Code returns the gRPC status code of the Outcome: OK for the fulfilled one, and
// the code of the error class otherwise, so timed out is DeadlineExceeded.
func (o Outcome) Code() codes.Code {
	if o.Result.IsFulfilled() {
		return codes.OK
	}
	return errors.GRPCStatusCode(o.Result.Err())
}

// String returns the one line description of the Outcome
func (o Outcome) String() string {
	elapsed := o.Elapsed.Round(time.Millisecond)
	if o.Result.IsFulfilled() {
		return fmt.Sprintf("fulfilled: %s (%s, %s)", o.Result.Value(), o.Code(), elapsed)
	}
	err := o.Result.Err()
	if te, ok := promise.AsTimeoutError(err); ok {
		if te.TimedOut() {
			return fmt.Sprintf("timed out (%s, %s)", o.Code(), elapsed)
		}
		err = te.RejectedError()
	}
	return fmt.Sprintf("rejected: %v (%s, %s)", err, o.Code(), elapsed)
}

// Run starts the dispatcher, makes it the default one, and runs the Scenario
// writing its Outcome to w.
func Run(ctx context.Context, cfg *Config, s Scenario, w io.Writer) error {
	log := logging.NewLogger("runner")
	if cfg.LogLevel != "" {
		lvl, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("%v: %w", err, errors.ErrInvalid)
		}
		logging.SetLevel(lvl)
	}
	if err := s.Check(); err != nil {
		return err
	}
	log.Debugf("%s", spew.Sprint(cfg))

	dcfg := dispatch.GetDefaultConfig()
	if cfg.Dispatch != nil {
		dcfg = cfg.Dispatch
	}
	d := dispatch.New(*dcfg)
	inj := linker.New()
	inj.Register(linker.Component{Name: "", Value: d})
	inj.Init(ctx)
	defer inj.Shutdown()

	// d is shut down on exit, so a live default is put back
	prev := dispatch.SetDefault(d)
	if prev == nil {
		prev = dispatch.New(*dispatch.GetDefaultConfig())
	}
	defer dispatch.SetDefault(prev)

	log.Infof("running %s of %s on %s", s.Op, s.Interval, s.Context)
	o, err := s.Run(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, o)
	return err
}
