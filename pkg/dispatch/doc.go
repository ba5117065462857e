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

/*
Package dispatch decides where callbacks run.

A Context is a logical description of the place: Automatic, Immediate, Main, one of the
QoS pools, or an explicit Executor. The Dispatcher resolves a Context to a concrete
Executor once, at the moment an operation is requested. Automatic resolves to the main
queue when the request is made from a task running on the main queue, and to the
Default QoS pool otherwise.

The Dispatcher also owns the timer scheduler, so a timer fires its function on the
Executor it was armed for.
*/
package dispatch
