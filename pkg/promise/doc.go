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
Package promise contains a single-assignment asynchronous value (Future), the
capability to settle it (Resolver), and two decorators over a Future:

  - Delay postpones the delivery of the settled result by an interval;
  - Timeout races the result against a timer, and rejects with ErrTimedOut if the
    timer wins.

A Future is settled exactly once. The Resolver may be called from many goroutines at
the same time, the first call wins, and all others are ignored. The decorators rely on
this: the paths racing to settle the output simply try, and the loser is a no-op.
*/
package promise
