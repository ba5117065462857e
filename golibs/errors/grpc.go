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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcToErrors = map[codes.Code]error{
	codes.OK:                 nil,
	codes.Canceled:           ErrCanceled,
	codes.Unknown:            ErrCommunication,
	codes.DeadlineExceeded:   ErrTimeout,
	codes.ResourceExhausted:  ErrExhausted,
	codes.InvalidArgument:    ErrInvalid,
	codes.NotFound:           ErrNotExist,
	codes.AlreadyExists:      ErrExist,
	codes.Unauthenticated:    ErrNotAuthorized,
	codes.PermissionDenied:   ErrNotAuthorized,
	codes.DataLoss:           ErrDataLoss,
	codes.Unimplemented:      ErrUnimplemented,
	codes.FailedPrecondition: ErrConflict,
	codes.Unavailable:        ErrClosed,
}

// errorsToCode is a slice, not a map, so the lookup order for wrapped errors is stable
var errorsToCode = []struct {
	err  error
	code codes.Code
}{
	{ErrTimeout, codes.DeadlineExceeded},
	{ErrCanceled, codes.Canceled},
	{ErrExist, codes.AlreadyExists},
	{ErrNotExist, codes.NotFound},
	{ErrInvalid, codes.InvalidArgument},
	{ErrNotAuthorized, codes.PermissionDenied},
	{ErrInternal, codes.Internal},
	{ErrDataLoss, codes.DataLoss},
	{ErrExhausted, codes.ResourceExhausted},
	{ErrUnimplemented, codes.Unimplemented},
	{ErrConflict, codes.FailedPrecondition},
	{ErrClosed, codes.Unavailable},
}

// FromGRPCError receives a gRPC error (code-based) and returns the one of the
// general errors (ErrNotExist, ErrTimeout...)
func FromGRPCError(err error) error {
	if err, ok := grpcToErrors[status.Code(err)]; ok {
		return err
	}
	return ErrInternal
}

// GRPCStatusCode returns the gRPC status code for the error provided. Errors, which
// wrap one of the general errors, get the code of the wrapped one.
func GRPCStatusCode(err error) codes.Code {
	code := status.Code(err)
	if code != codes.Unknown {
		return code
	}
	for _, ec := range errorsToCode {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return codes.Internal
}

// GRPCWrap turns err into a gRPC status error, so it can be returned from a gRPC
// endpoint. Errors that are gRPC status errors already are returned as is.
func GRPCWrap(err error) error {
	if code := status.Code(err); code != codes.Unknown {
		return err
	}
	return status.Error(GRPCStatusCode(err), err.Error())
}
