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

import (
	"context"
	"encoding/json"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/logrange/linker"
	"github.com/solarisdb/promissory/golibs/config"
	"github.com/solarisdb/promissory/golibs/logging"
	"github.com/solarisdb/promissory/golibs/timeout"
)

type (
	// Config defines the Dispatcher settings
	Config struct {
		// PoolMaxWorkers is the maximum number of goroutines of every QoS pool,
		// zero means the number of CPUs
		PoolMaxWorkers int `json:"poolMaxWorkers"`
		// PoolIdleTimeout is how long an idle pool goroutine waits for work before exit
		PoolIdleTimeout config.Duration `json:"poolIdleTimeout"`
		// TimerMaxWorkers limits the number of goroutines firing timers in parallel
		TimerMaxWorkers int `json:"timerMaxWorkers"`
		// TimerIdleTimeout is how long an idle timer goroutine waits before exit
		TimerIdleTimeout config.Duration `json:"timerIdleTimeout"`
	}

	// Dispatcher owns the executors the Contexts are resolved to, and the timers
	// scheduler. It may be registered in linker, so the executors are closed on the
	// application shutdown.
	Dispatcher struct {
		cfg    Config
		logger logging.Logger
		main   *Serial
		pools  [numQoS]*Pool
		timers *timeout.Scheduler
	}
)

const defaultIdleTimeout = 30 * time.Second

var (
	defaultDispatcher atomic.Pointer[Dispatcher]
	defaultOnce       sync.Once
)

var _ linker.Initializer = (*Dispatcher)(nil)
var _ linker.Shutdowner = (*Dispatcher)(nil)

// GetDefaultConfig returns the default Dispatcher settings
func GetDefaultConfig() *Config {
	return &Config{
		PoolMaxWorkers:   runtimeWorkers(),
		PoolIdleTimeout:  config.Duration(defaultIdleTimeout),
		TimerMaxWorkers:  timeout.DefaultMaxWorkers,
		TimerIdleTimeout: config.Duration(timeout.DefaultIdleTimeout),
	}
}

// New creates the new Dispatcher. The Dispatcher is ready to use right after
// the creation.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{cfg: cfg, logger: logging.NewLogger("dispatch.Dispatcher")}
	d.main = NewSerial("main")
	for i := range d.pools {
		d.pools[i] = NewPool(QoS(i).String(), cfg.PoolMaxWorkers, cfg.PoolIdleTimeout.Duration())
	}
	d.timers = timeout.NewScheduler(cfg.TimerMaxWorkers, cfg.TimerIdleTimeout.Duration())
	return d
}

// Default returns the process-wide Dispatcher. It is created with the default
// config on the first call, unless SetDefault was called before.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDispatcher.CompareAndSwap(nil, New(*GetDefaultConfig()))
	})
	return defaultDispatcher.Load()
}

// SetDefault replaces the process-wide Dispatcher and returns the previous one,
// which may be nil if the default one was never used.
func SetDefault(d *Dispatcher) *Dispatcher {
	if d == nil {
		panic("dispatch.SetDefault() is called with nil dispatcher")
	}
	defaultOnce.Do(func() {})
	return defaultDispatcher.Swap(d)
}

// Init implements linker.Initializer
func (d *Dispatcher) Init(ctx context.Context) error {
	d.logger.Infof("Initializing with %s", d.cfg)
	return nil
}

// Shutdown implements linker.Shutdowner. The pending timers are dropped, the
// executors run what was submitted and reject new functions.
func (d *Dispatcher) Shutdown() {
	d.logger.Infof("Shutting down...")
	d.timers.Shutdown()
	d.main.Close()
	for _, p := range d.pools {
		p.Close()
	}
}

// Main returns the main serial queue
func (d *Dispatcher) Main() *Serial {
	return d.main
}

// Pool returns the pool of the QoS q
func (d *Dispatcher) Pool(q QoS) *Pool {
	return d.pools[OnQoS(q).qos]
}

// Resolve maps the Context c to the Executor. onMain tells whether the caller
// runs on the main queue, it matters for Automatic only.
func (d *Dispatcher) Resolve(c Context, onMain bool) Executor {
	switch c.kind {
	case kindImmediate:
		return immediate{}
	case kindMain:
		return d.main
	case kindQoS:
		return d.pools[c.qos]
	case kindExecutor:
		return c.exec
	default:
		if onMain {
			return d.main
		}
		return d.pools[QoSDefault]
	}
}

// Target resolves the Context c for the calling goroutine
func (d *Dispatcher) Target(c Context) Executor {
	if c.kind != kindAutomatic {
		return d.Resolve(c, false)
	}
	return d.Resolve(c, d.main.IsCurrent())
}

// ScheduleTimer arms the timer, which runs f on the target after the duration dur.
// The returned Timer allows to cancel the call, see timeout.Timer.
func (d *Dispatcher) ScheduleTimer(target Executor, dur time.Duration, f func()) timeout.Timer {
	if target == nil || f == nil {
		panic("ScheduleTimer() requires non-nil target and function")
	}
	return d.timers.Call(func() { target.Execute(f) }, dur)
}

// PendingTimers returns the number of armed timers, which are not fired or canceled yet
func (d *Dispatcher) PendingTimers() int {
	return d.timers.Len()
}

// ScheduleTimer arms the timer on the default Dispatcher
func ScheduleTimer(target Executor, dur time.Duration, f func()) timeout.Timer {
	return Default().ScheduleTimer(target, dur, f)
}

// String implements fmt.Stringer
func (c Config) String() string {
	b, _ := json.Marshal(c)
	return string(b)
}

func runtimeWorkers() int {
	if n := runtime.NumCPU(); n > 1 {
		return n
	}
	return 2
}
