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
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petermattis/goid"
	"github.com/solarisdb/promissory/golibs/config"
	"github.com/solarisdb/promissory/golibs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDispatcher(t *testing.T) *Dispatcher {
	d := New(Config{PoolMaxWorkers: 4, PoolIdleTimeout: config.Duration(50 * time.Millisecond),
		TimerMaxWorkers: 2, TimerIdleTimeout: config.Duration(time.Second)})
	t.Cleanup(d.Shutdown)
	return d
}

// stackGoroutineID reads the goroutine id from the stack header "goroutine 18 [running]:"
func stackGoroutineID() int64 {
	var buf [64]byte
	b := bytes.TrimPrefix(buf[:runtime.Stack(buf[:], false)], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

func TestGoroutineID(t *testing.T) {
	id := goid.Get()
	assert.True(t, id > 0)
	assert.Equal(t, stackGoroutineID(), id)
	ch := make(chan [2]int64)
	go func() { ch <- [2]int64{goid.Get(), stackGoroutineID()} }()
	other := <-ch
	assert.Equal(t, other[1], other[0])
	assert.NotEqual(t, id, other[0])

	s := NewSerial("ids")
	defer s.Close()
	s.Execute(func() { ch <- [2]int64{s.workerID.Load(), goid.Get()} })
	other = <-ch
	assert.Equal(t, other[1], other[0])
}

func TestParseContext(t *testing.T) {
	for name, exp := range map[string]Context{"": Automatic, "auto": Automatic, "Immediate": Immediate,
		"main": Main, "utility": OnQoS(QoSUtility), " background ": OnQoS(QoSBackground), "interactive": OnQoS(QoSInteractive)} {
		c, err := ParseContext(name)
		assert.Nil(t, err)
		assert.Equal(t, exp, c, name)
	}
	_, err := ParseContext("somewhere")
	assert.True(t, errors.Is(err, errors.ErrInvalid))
	assert.Equal(t, "utility", OnQoS(QoSUtility).String())
	assert.Equal(t, "auto", Context{}.String())
}

func TestContextConstructorsPanic(t *testing.T) {
	assert.Panics(t, func() { On(nil) })
	assert.Panics(t, func() { OnQoS(QoS(numQoS)) })
	assert.Panics(t, func() { OnQoS(QoS(-1)) })
}

func TestNoImmediate(t *testing.T) {
	assert.Equal(t, Automatic, Immediate.NoImmediate())
	assert.Equal(t, Main, Main.NoImmediate())
	assert.True(t, Immediate.IsImmediate())
	assert.False(t, Automatic.IsImmediate())
}

func TestResolve(t *testing.T) {
	d := testDispatcher(t)
	ex := ExecutorFunc(func(f func()) { f() })

	assert.Equal(t, d.Main(), d.Resolve(Automatic, true))
	assert.Equal(t, d.Pool(QoSDefault), d.Resolve(Automatic, false))
	assert.Equal(t, d.Main(), d.Resolve(Main, false))
	assert.Equal(t, d.Pool(QoSUtility), d.Resolve(OnQoS(QoSUtility), true))
	assert.Equal(t, immediate{}, d.Resolve(Immediate, true))
	assert.NotNil(t, d.Resolve(On(ex), false))
}

func TestTargetAutomaticOnMain(t *testing.T) {
	d := testDispatcher(t)
	assert.Equal(t, d.Pool(QoSDefault), d.Target(Automatic))

	res := make(chan Executor, 1)
	require.Nil(t, d.Main().Submit(func() {
		assert.True(t, d.Main().IsCurrent())
		res <- d.Target(Automatic)
	}))
	assert.Equal(t, Executor(d.Main()), <-res)

	require.Nil(t, d.Pool(QoSDefault).Submit(func() {
		res <- d.Target(Automatic)
	}))
	assert.Equal(t, Executor(d.Pool(QoSDefault)), <-res)
	assert.False(t, d.Main().IsCurrent())
}

func TestSerialOrder(t *testing.T) {
	s := NewSerial("test")
	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 100; i++ {
		i := i
		s.Execute(func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	wg.Wait()
	for i := 0; i < 100; i++ {
		assert.Equal(t, i, got[i])
	}
	assert.Equal(t, 0, s.Len())
}

func TestSerialPanicAndClose(t *testing.T) {
	s := NewSerial("panics")
	done := make(chan struct{})
	s.Execute(func() { panic("boom") })
	s.Execute(func() { close(done) })
	<-done

	assert.True(t, errors.Is(s.Submit(nil), errors.ErrInvalid))
	s.Close()
	assert.True(t, errors.Is(s.Submit(func() {}), errors.ErrClosed))
}

func TestPoolParallelAndIdle(t *testing.T) {
	p := NewPool("test", 3, 30*time.Millisecond)
	var running, maxRunning int32
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		p.Execute(func() {
			defer wg.Done()
			n := atomic.AddInt32(&running, 1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
	}
	wg.Wait()
	assert.True(t, atomic.LoadInt32(&maxRunning) <= 3)
	assert.True(t, atomic.LoadInt32(&maxRunning) >= 1)
	assert.Eventually(t, func() bool { return p.Workers() == 0 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	p.Execute(func() { close(done) })
	<-done
}

func TestPoolClose(t *testing.T) {
	p := NewPool("closing", 1, time.Minute)
	done := make(chan struct{})
	p.Execute(func() {})
	time.Sleep(10 * time.Millisecond)
	p.Execute(func() { close(done) })
	<-done
	p.Close()
	p.Close()
	assert.True(t, errors.Is(p.Submit(func() {}), errors.ErrClosed))
	assert.Eventually(t, func() bool { return p.Workers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestScheduleTimer(t *testing.T) {
	d := testDispatcher(t)
	res := make(chan bool, 1)
	start := time.Now()
	d.ScheduleTimer(d.Main(), 20*time.Millisecond, func() { res <- d.Main().IsCurrent() })
	assert.True(t, <-res)
	assert.True(t, time.Since(start) >= 20*time.Millisecond)

	var called int32
	tm := d.ScheduleTimer(d.Pool(QoSUtility), 20*time.Millisecond, func() { atomic.AddInt32(&called, 1) })
	assert.Equal(t, 1, d.PendingTimers())
	assert.True(t, tm.Cancel())
	assert.Equal(t, 0, d.PendingTimers())
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))

	assert.Panics(t, func() { d.ScheduleTimer(nil, time.Millisecond, func() {}) })
}

func TestShutdown(t *testing.T) {
	d := New(*GetDefaultConfig())
	var called int32
	d.ScheduleTimer(d.Pool(QoSDefault), 20*time.Millisecond, func() { atomic.AddInt32(&called, 1) })
	d.Shutdown()
	assert.True(t, errors.Is(d.Main().Submit(func() {}), errors.ErrClosed))
	assert.True(t, errors.Is(d.Pool(QoSBackground).Submit(func() {}), errors.ErrClosed))
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.NotNil(t, d)
	assert.Equal(t, d, Default())
	nd := New(*GetDefaultConfig())
	assert.Equal(t, d, SetDefault(nd))
	assert.Equal(t, nd, Default())
	assert.Equal(t, Executor(nd.Pool(QoSDefault)), Automatic.Target())
	SetDefault(d)
	nd.Shutdown()
	assert.Panics(t, func() { SetDefault(nil) })
}
