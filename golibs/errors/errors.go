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
package errors

import (
	"errors"
	"google.golang.org/grpc/status"
)

var (
	// ErrExist is returned when an object already exists
	ErrExist = errors.New("already exists")
	// ErrNotExist is returned when an object is not found
	ErrNotExist = errors.New("not exist")
	// ErrInvalid is returned when the arguments are not valid
	ErrInvalid = errors.New("invalid argument")
	// ErrNotAuthorized is returned when the operation is not permitted
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInternal is returned on unexpected internal failures
	ErrInternal = errors.New("internal error")
	// ErrDataLoss indicates unrecoverable data loss or corruption
	ErrDataLoss = errors.New("data loss")
	// ErrExhausted is returned when a resource limit is reached
	ErrExhausted = errors.New("resource exhausted")
	// ErrUnimplemented is returned for not supported operations
	ErrUnimplemented = errors.New("unimplemented")
	// ErrConflict is returned when the system state does not allow the operation
	ErrConflict = errors.New("conflict")
	// ErrCanceled is returned when the operation was canceled by the caller
	ErrCanceled = errors.New("canceled")
	// ErrCommunication indicates a transport level failure
	ErrCommunication = errors.New("communication error")
	// ErrClosed is returned when a component is already shut down
	ErrClosed = errors.New("closed")
	// ErrTimeout is returned when an operation did not complete before its deadline
	ErrTimeout = errors.New("timeout")
)

// Is reports whether err matches target. In addition to the errors.Is() semantic,
// gRPC status errors are matched by their code, so an error received from a remote
// side may be compared with the general errors of the package.
func Is(err, target error) bool {
	if errors.Is(err, target) {
		return true
	}
	if _, ok := status.FromError(err); !ok || err == nil {
		return false
	}
	return FromGRPCError(err) == target
}

// New is the errors.New() shortcut
func New(text string) error {
	return errors.New(text)
}

// As is the errors.As() shortcut, so the package may be imported instead of the standard one
func As(err error, target any) bool {
	return errors.As(err, target)
}
