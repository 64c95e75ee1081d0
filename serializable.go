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

// PdxSerializable is implemented by domain types that write themselves as
// PDX. FromData is called on an empty value obtained from the factory
// registered for ClassName.
type PdxSerializable interface {
	ClassName() string
	ToData(w PdxWriter) error
	FromData(r PdxReader) error
}

// PdxTypeFactory returns an empty domain object to read into.
type PdxTypeFactory func() PdxSerializable

// PdxSerializer writes and reads values that do not implement
// PdxSerializable themselves.
type PdxSerializer interface {
	// ClassName returns the PDX class name for v, or "" if v is not handled.
	ClassName(v any) string
	ToData(v any, w PdxWriter) error
	// FromData returns a new value of className read from r.
	FromData(className string, r PdxReader) (any, error)
}

// Serializable is the non-PDX serialization contract of built-in and user
// data types.
type Serializable interface {
	ToData(buf *ByteBuffer) error
	FromData(buf *ByteBuffer) error
}

// DataSerializable is a user type identified by a numeric class id.
type DataSerializable interface {
	Serializable
	ClassID() int32
}

// DataSerializableFixedID is an internal type identified by a fixed id.
type DataSerializableFixedID interface {
	Serializable
	DSFID() int32
}

// DataSerializablePrimitive is a built-in value identified by its DS code.
type DataSerializablePrimitive interface {
	Serializable
	DSCode() DSCode
	// Value returns the wrapped Go value.
	Value() any
}

// TypeFactory returns an empty Serializable to deserialize into.
type TypeFactory func() Serializable
