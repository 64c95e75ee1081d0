// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package pdx

import (
	"errors"
	"fmt"
)

// ErrorKind classifies PDX errors so callers can dispatch without matching
// on message text.
type ErrorKind uint8

const (
	// ErrKindOK indicates no error occurred
	ErrKindOK ErrorKind = iota
	// ErrKindBufferOutOfBound indicates a read beyond the end of the input,
	// usually a truncated payload
	ErrKindBufferOutOfBound
	// ErrKindInvalidState covers schema corruption and illegal API use
	ErrKindInvalidState
	// ErrKindUnregisteredType indicates no factory is bound for a dispatch key
	ErrKindUnregisteredType
	// ErrKindDuplicateRegistration indicates a bind under a key already bound
	ErrKindDuplicateRegistration
	// ErrKindFieldTypeMismatch indicates a value whose kind differs from the
	// declared field kind
	ErrKindFieldTypeMismatch
	// ErrKindFactoryAlreadyUsed indicates InstanceFactory.Create was called twice
	ErrKindFactoryAlreadyUsed
	// ErrKindUnknownPdxType indicates the type source has no definition for an id
	ErrKindUnknownPdxType
	// ErrKindSerializationFailed indicates a general serialization failure
	ErrKindSerializationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindOK:
		return "ok"
	case ErrKindBufferOutOfBound:
		return "buffer out of bound"
	case ErrKindInvalidState:
		return "invalid state"
	case ErrKindUnregisteredType:
		return "unregistered type"
	case ErrKindDuplicateRegistration:
		return "duplicate registration"
	case ErrKindFieldTypeMismatch:
		return "field type mismatch"
	case ErrKindFactoryAlreadyUsed:
		return "factory already used"
	case ErrKindUnknownPdxType:
		return "unknown pdx type"
	case ErrKindSerializationFailed:
		return "serialization failed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is a value-type error. Formatting is deferred until Error() is
// called so that the read path can record failures without allocating.
type Error struct {
	kind    ErrorKind
	message string
	// buffer out of bound
	offset int
	need   int
	size   int
	// field type mismatch
	field    string
	declared FieldKind
	actual   FieldKind
}

// Ok returns true if no error occurred
func (e Error) Ok() bool {
	return e.kind == ErrKindOK
}

// HasError returns true if an error occurred
func (e Error) HasError() bool {
	return e.kind != ErrKindOK
}

// Kind returns the error kind
func (e Error) Kind() ErrorKind {
	return e.kind
}

func (e Error) Error() string {
	if e.message != "" {
		return e.message
	}
	switch e.kind {
	case ErrKindOK:
		return ""
	case ErrKindBufferOutOfBound:
		return fmt.Sprintf("buffer out of bound: offset=%d, need=%d, size=%d", e.offset, e.need, e.size)
	case ErrKindFieldTypeMismatch:
		return fmt.Sprintf("field %q is declared %s, got %s", e.field, e.declared, e.actual)
	default:
		return fmt.Sprintf("pdx error: %s", e.kind)
	}
}

// BufferOutOfBoundError creates a buffer out of bound error
func BufferOutOfBoundError(offset, need, size int) Error {
	return Error{
		kind:   ErrKindBufferOutOfBound,
		offset: offset,
		need:   need,
		size:   size,
	}
}

// InvalidStateError creates an invalid-state error
func InvalidStateError(msg string) Error {
	return Error{kind: ErrKindInvalidState, message: msg}
}

// InvalidStateErrorf creates a formatted invalid-state error
func InvalidStateErrorf(format string, args ...any) Error {
	return Error{kind: ErrKindInvalidState, message: fmt.Sprintf(format, args...)}
}

// UnregisteredTypeError reports a dispatch key with no bound factory.
func UnregisteredTypeError(what string, id int64) Error {
	return Error{
		kind:    ErrKindUnregisteredType,
		message: fmt.Sprintf("Unregistered type in deserialization: %s %d", what, id),
	}
}

// UnregisteredClassError reports a PDX class name with no bound factory.
func UnregisteredClassError(className string) Error {
	return Error{
		kind:    ErrKindUnregisteredType,
		message: fmt.Sprintf("Unregistered pdx class: %s", className),
	}
}

// DuplicateRegistrationError reports a second bind under the same key.
func DuplicateRegistrationError(what string, key any) Error {
	return Error{
		kind:    ErrKindDuplicateRegistration,
		message: fmt.Sprintf("%s %v is already registered", what, key),
	}
}

// FieldTypeMismatchError creates a field type mismatch error
func FieldTypeMismatchError(field string, declared, actual FieldKind) Error {
	return Error{
		kind:     ErrKindFieldTypeMismatch,
		field:    field,
		declared: declared,
		actual:   actual,
	}
}

// FactoryAlreadyUsedError is returned by a second InstanceFactory.Create.
func FactoryAlreadyUsedError() Error {
	return Error{
		kind:    ErrKindFactoryAlreadyUsed,
		message: "The PdxInstanceFactory.Create() method can only be called once.",
	}
}

// UnknownPdxTypeError reports a type id the type source does not know.
func UnknownPdxTypeError(typeID int32) Error {
	return Error{
		kind:    ErrKindUnknownPdxType,
		message: fmt.Sprintf("unknown pdx type: typeId=%d", typeID),
	}
}

// SerializationErrorf creates a formatted serialization error
func SerializationErrorf(format string, args ...any) Error {
	return Error{kind: ErrKindSerializationFailed, message: fmt.Sprintf(format, args...)}
}

// FromError converts a standard error to an Error. An Error, or an error
// wrapping one, is returned as-is; anything else becomes a serialization
// failure.
func FromError(err error) Error {
	if err == nil {
		return Error{}
	}
	var e Error
	if errors.As(err, &e) {
		return e
	}
	return Error{kind: ErrKindSerializationFailed, message: err.Error()}
}

// KindOf returns the ErrorKind of err, or ErrKindOK for nil and
// ErrKindSerializationFailed for errors not produced by this package.
func KindOf(err error) ErrorKind {
	return FromError(err).kind
}

// SetError sets the error if no error has occurred yet (first-error-wins)
func (e *Error) SetError(err error) {
	if e == nil || e.kind != ErrKindOK || err == nil {
		return
	}
	*e = FromError(err)
}

// TakeError returns the error and clears it
func (e *Error) TakeError() error {
	if e == nil || e.kind == ErrKindOK {
		return nil
	}
	result := *e
	*e = Error{}
	return result
}

// CheckError returns the error if one occurred, nil otherwise
func (e *Error) CheckError() error {
	if e == nil || e.kind == ErrKindOK {
		return nil
	}
	return *e
}
