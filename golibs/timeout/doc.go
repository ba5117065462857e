// Copyright 2023 The acquirecloud Authors
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
Package timeout allows calling functions in the future. A call request may be canceled
if the execution of the function is not started yet, and the cancellation reports whether
it won the race against the firing.

The package keeps all the scheduled calls in one heap ordered by the fire time. The heap is
served by a small pool of watcher goroutines, which grows when many calls fire at the same
moment and shrinks when there is nothing to do, so no goroutine is held per a scheduled call.
*/
package timeout
