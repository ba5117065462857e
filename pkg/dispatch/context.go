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
	"fmt"
	"strings"

	"github.com/solarisdb/promissory/golibs/errors"
)

type (
	// Context is a logical description of where a callback should run. The zero
	// value is Automatic.
	Context struct {
		kind kind
		qos  QoS
		exec Executor
	}

	// QoS is the class of the background pool a callback is run on
	QoS int

	kind int
)

// The QoS classes, from the most to the least urgent one. Every class has its own pool.
const (
	QoSInteractive QoS = iota
	QoSInitiated
	QoSDefault
	QoSUtility
	QoSBackground

	numQoS = int(QoSBackground) + 1
)

const (
	kindAutomatic kind = iota
	kindImmediate
	kindMain
	kindQoS
	kindExecutor
)

var (
	// Automatic is the main queue if the Context is resolved on the main queue, and
	// the Default QoS pool otherwise.
	Automatic = Context{kind: kindAutomatic}
	// Immediate runs the callback synchronously, in the goroutine which triggers it.
	Immediate = Context{kind: kindImmediate}
	// Main is the main serial queue of the Dispatcher
	Main = Context{kind: kindMain}
)

var qosNames = [numQoS]string{"interactive", "initiated", "default", "utility", "background"}

// OnQoS returns the Context of the background pool of the class q
func OnQoS(q QoS) Context {
	if q < 0 || int(q) >= numQoS {
		panic(fmt.Sprintf("unknown QoS %d", q))
	}
	return Context{kind: kindQoS, qos: q}
}

// On returns the Context for the explicit Executor ex
func On(ex Executor) Context {
	if ex == nil {
		panic("dispatch.On() is called with nil executor")
	}
	return Context{kind: kindExecutor, exec: ex}
}

// ParseContext returns the Context by its name: auto, immediate, main, or one of
// the QoS names (interactive, initiated, default, utility, background)
func ParseContext(s string) (Context, error) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "", "auto", "automatic":
		return Automatic, nil
	case "immediate":
		return Immediate, nil
	case "main":
		return Main, nil
	default:
		for i, qn := range qosNames {
			if qn == name {
				return OnQoS(QoS(i)), nil
			}
		}
	}
	return Automatic, fmt.Errorf("unknown context %q: %w", s, errors.ErrInvalid)
}

// IsImmediate returns true for the Immediate context
func (c Context) IsImmediate() bool {
	return c.kind == kindImmediate
}

// NoImmediate returns Automatic if c is Immediate, and c otherwise. It is used by
// the operations, which may be triggered from different goroutines, so running their
// callbacks synchronously is not well defined.
func (c Context) NoImmediate() Context {
	if c.kind == kindImmediate {
		return Automatic
	}
	return c
}

// Target resolves the Context to the Executor of the default Dispatcher.
func (c Context) Target() Executor {
	return Default().Target(c)
}

// String implements fmt.Stringer
func (c Context) String() string {
	switch c.kind {
	case kindAutomatic:
		return "auto"
	case kindImmediate:
		return "immediate"
	case kindMain:
		return "main"
	case kindQoS:
		return c.qos.String()
	default:
		return fmt.Sprintf("executor(%v)", c.exec)
	}
}

// String implements fmt.Stringer
func (q QoS) String() string {
	if q < 0 || int(q) >= numQoS {
		return fmt.Sprintf("QoS(%d)", int(q))
	}
	return qosNames[q]
}
