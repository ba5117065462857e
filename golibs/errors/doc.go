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
Package errors defines the general error classes (ErrInvalid, ErrClosed, ErrTimeout...)
the packages wrap their errors into, so a caller checks the class with Is() and does
not depend on the error text.

Every class has a gRPC status code: GRPCStatusCode() and GRPCWrap() turn an error
into the code-based one, FromGRPCError() does the opposite. Is() compares gRPC status
errors by their code.
*/
package errors
