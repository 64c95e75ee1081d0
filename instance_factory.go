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
	"sync"
	"time"

	"github.com/benbjohnson/immutable"
)

// InstanceFactory builds an Instance field by field for a class that has
// no domain type in this process. Write calls can be chained; the first
// error is returned by Create.
type InstanceFactory struct {
	registry *SerializationRegistry
	ptype    *PdxType
	values   []FieldValue

	mu      sync.Mutex
	created bool
	err     Error
}

func newInstanceFactory(registry *SerializationRegistry, className string) *InstanceFactory {
	t := NewPdxType(className)
	t.SetNoDomainClass(true)
	return &InstanceFactory{registry: registry, ptype: t}
}

func (f *InstanceFactory) write(name string, v FieldValue) *InstanceFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err.HasError() {
		return f
	}
	if f.created {
		f.err.SetError(FactoryAlreadyUsedError())
		return f
	}
	if _, err := f.ptype.AddField(name, v.Kind()); err != nil {
		f.err.SetError(err)
		return f
	}
	f.values = append(f.values, v)
	return f
}

func (f *InstanceFactory) WriteBoolean(name string, v bool) *InstanceFactory {
	return f.write(name, BoolValue(v))
}

// WriteInt8 writes a BYTE field.
func (f *InstanceFactory) WriteInt8(name string, v int8) *InstanceFactory {
	return f.write(name, ByteValue(v))
}

func (f *InstanceFactory) WriteChar(name string, v uint16) *InstanceFactory {
	return f.write(name, CharValue(v))
}

func (f *InstanceFactory) WriteShort(name string, v int16) *InstanceFactory {
	return f.write(name, ShortValue(v))
}

func (f *InstanceFactory) WriteInt(name string, v int32) *InstanceFactory {
	return f.write(name, IntValue(v))
}

func (f *InstanceFactory) WriteLong(name string, v int64) *InstanceFactory {
	return f.write(name, LongValue(v))
}

func (f *InstanceFactory) WriteFloat(name string, v float32) *InstanceFactory {
	return f.write(name, FloatValue(v))
}

func (f *InstanceFactory) WriteDouble(name string, v float64) *InstanceFactory {
	return f.write(name, DoubleValue(v))
}

func (f *InstanceFactory) WriteDate(name string, v time.Time) *InstanceFactory {
	return f.write(name, DateValue(v))
}

func (f *InstanceFactory) WriteString(name string, v string) *InstanceFactory {
	return f.write(name, StringValue(v))
}

func (f *InstanceFactory) WriteObject(name string, v any) *InstanceFactory {
	return f.write(name, ObjectValue{V: v})
}

func (f *InstanceFactory) WriteBooleanArray(name string, v []bool) *InstanceFactory {
	return f.write(name, BoolArrayValue(v))
}

func (f *InstanceFactory) WriteCharArray(name string, v []uint16) *InstanceFactory {
	return f.write(name, CharArrayValue(v))
}

func (f *InstanceFactory) WriteByteArray(name string, v []byte) *InstanceFactory {
	return f.write(name, ByteArrayValue(v))
}

func (f *InstanceFactory) WriteShortArray(name string, v []int16) *InstanceFactory {
	return f.write(name, ShortArrayValue(v))
}

func (f *InstanceFactory) WriteIntArray(name string, v []int32) *InstanceFactory {
	return f.write(name, IntArrayValue(v))
}

func (f *InstanceFactory) WriteLongArray(name string, v []int64) *InstanceFactory {
	return f.write(name, LongArrayValue(v))
}

func (f *InstanceFactory) WriteFloatArray(name string, v []float32) *InstanceFactory {
	return f.write(name, FloatArrayValue(v))
}

func (f *InstanceFactory) WriteDoubleArray(name string, v []float64) *InstanceFactory {
	return f.write(name, DoubleArrayValue(v))
}

func (f *InstanceFactory) WriteStringArray(name string, v []string) *InstanceFactory {
	return f.write(name, StringArrayValue(v))
}

func (f *InstanceFactory) WriteObjectArray(name string, v []any) *InstanceFactory {
	return f.write(name, ObjectArrayValue(v))
}

func (f *InstanceFactory) WriteArrayOfByteArrays(name string, v [][]byte) *InstanceFactory {
	return f.write(name, ByteArraysValue(v))
}

// WriteField writes v under the kind it carries.
func (f *InstanceFactory) WriteField(name string, v FieldValue) *InstanceFactory {
	if v == nil {
		f.mu.Lock()
		f.err.SetError(InvalidStateErrorf("field %s has no value", name))
		f.mu.Unlock()
		return f
	}
	return f.write(name, v)
}

// MarkIdentityField makes a written field an identity field.
func (f *InstanceFactory) MarkIdentityField(name string) *InstanceFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err.HasError() {
		return f
	}
	field := f.ptype.Field(name)
	if field == nil {
		f.err.SetError(InvalidStateErrorf("field %s must be written before it is marked as identity field", name))
		return f
	}
	field.Identity = true
	return f
}

// Create returns the instance. It can be called once; later calls fail
// with ErrKindFactoryAlreadyUsed. The type gets its id when the instance
// is first serialized.
func (f *InstanceFactory) Create() (*Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.created {
		return nil, FactoryAlreadyUsedError()
	}
	f.created = true
	if err := f.err.CheckError(); err != nil {
		return nil, err
	}
	f.ptype.Initialize()
	edits := immutable.NewMap[int, FieldValue](indexHasher{})
	for i, v := range f.values {
		edits = edits.Set(i, v)
	}
	f.registry.types.metrics.IncInstanceCreated()
	return &Instance{
		registry: f.registry,
		ptype:    f.ptype,
		cache:    &fieldCache{values: make([]FieldValue, f.ptype.NumFields())},
		edits:    edits,
	}, nil
}
