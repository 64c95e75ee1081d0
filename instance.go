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
	"bytes"
	"reflect"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/benbjohnson/immutable"
)

// Instance is a PDX object held without its domain class: a type plus the
// payload it was read from. Fields are decoded on first access and cached.
//
// An Instance never changes. Edits made through a WritableInstance live in
// a persistent overlay that later versions share with earlier ones, and
// instances built by an InstanceFactory hold every value in that overlay.
type Instance struct {
	registry   *SerializationRegistry
	ptype      *PdxType
	data       []byte
	offsets    []byte
	offsetSize int
	cache      *fieldCache
	edits      *immutable.Map[int, FieldValue]
}

type fieldCache struct {
	mu     sync.Mutex
	values []FieldValue
}

// indexHasher hashes field indexes for the edit overlay.
type indexHasher struct{}

func (indexHasher) Hash(key int) uint32 {
	return uint32(key) * 0x9E3779B1
}

func (indexHasher) Equal(a, b int) bool {
	return a == b
}

func newInstance(registry *SerializationRegistry, t *PdxType, payload []byte) (*Instance, error) {
	length, offsetSize, err := payloadLayout(t, len(payload))
	if err != nil {
		return nil, err
	}
	registry.types.metrics.IncInstanceCreated()
	return &Instance{
		registry:   registry,
		ptype:      t,
		data:       payload[:length],
		offsets:    payload[length:],
		offsetSize: offsetSize,
		cache:      &fieldCache{values: make([]FieldValue, t.NumFields())},
	}, nil
}

func (i *Instance) withEdit(index int, v FieldValue) *Instance {
	edits := i.edits
	if edits == nil {
		edits = immutable.NewMap[int, FieldValue](indexHasher{})
	}
	c := *i
	c.edits = edits.Set(index, v)
	return &c
}

func (i *Instance) ClassName() string {
	return i.ptype.ClassName()
}

// Type returns the type describing the instance's fields.
func (i *Instance) Type() *PdxType {
	return i.ptype
}

func (i *Instance) HasField(name string) bool {
	return i.ptype.Field(name) != nil
}

func (i *Instance) IsIdentityField(name string) bool {
	f := i.ptype.Field(name)
	return f != nil && f.Identity
}

// FieldNames returns the field names in declaration order.
func (i *Instance) FieldNames() []string {
	names := make([]string, i.ptype.NumFields())
	for idx, f := range i.ptype.Fields() {
		names[idx] = f.Name
	}
	return names
}

// FieldKind returns the kind of the named field.
func (i *Instance) FieldKind(name string) (FieldKind, bool) {
	f := i.ptype.Field(name)
	if f == nil {
		return 0, false
	}
	return f.Kind, true
}

func (i *Instance) value(index int) (FieldValue, error) {
	if i.edits != nil {
		if v, ok := i.edits.Get(index); ok {
			return v, nil
		}
	}
	f := i.ptype.FieldAt(index)
	if i.data == nil {
		return ZeroValue(f.Kind), nil
	}
	c := i.cache
	c.mu.Lock()
	v := c.values[index]
	c.mu.Unlock()
	if v != nil {
		return v, nil
	}
	pos := i.ptype.FieldPosition(f, i.offsets, i.offsetSize, len(i.data))
	if pos < 0 || pos > len(i.data) {
		return nil, InvalidStateErrorf("field %s of %s is at %d outside %d bytes of field data",
			f.Name, i.ptype.ClassName(), pos, len(i.data))
	}
	buf := NewByteBuffer(i.data)
	buf.SetReaderIndex(pos)
	var err Error
	v = i.registry.readFieldValue(buf, f.Kind, &err)
	if e := err.CheckError(); e != nil {
		return nil, e
	}
	c.mu.Lock()
	c.values[index] = v
	c.mu.Unlock()
	return v, nil
}

// Field returns the value of the named field, nil if there is none.
func (i *Instance) Field(name string) (FieldValue, error) {
	f := i.ptype.Field(name)
	if f == nil {
		return nil, nil
	}
	return i.value(int(f.SequenceID))
}

func fieldAs[V FieldValue](i *Instance, name string, kind FieldKind) (V, error) {
	var zero V
	f := i.ptype.Field(name)
	if f == nil {
		return zero, nil
	}
	if f.Kind != kind {
		return zero, FieldTypeMismatchError(name, f.Kind, kind)
	}
	fv, err := i.value(int(f.SequenceID))
	if err != nil {
		return zero, err
	}
	v, _ := fv.(V)
	return v, nil
}

func (i *Instance) GetBooleanField(name string) (bool, error) {
	v, err := fieldAs[BoolValue](i, name, BOOLEAN)
	return bool(v), err
}

func (i *Instance) GetByteField(name string) (int8, error) {
	v, err := fieldAs[ByteValue](i, name, BYTE)
	return int8(v), err
}

func (i *Instance) GetCharField(name string) (uint16, error) {
	v, err := fieldAs[CharValue](i, name, CHAR)
	return uint16(v), err
}

func (i *Instance) GetShortField(name string) (int16, error) {
	v, err := fieldAs[ShortValue](i, name, SHORT)
	return int16(v), err
}

func (i *Instance) GetIntField(name string) (int32, error) {
	v, err := fieldAs[IntValue](i, name, INT)
	return int32(v), err
}

func (i *Instance) GetLongField(name string) (int64, error) {
	v, err := fieldAs[LongValue](i, name, LONG)
	return int64(v), err
}

func (i *Instance) GetFloatField(name string) (float32, error) {
	v, err := fieldAs[FloatValue](i, name, FLOAT)
	return float32(v), err
}

func (i *Instance) GetDoubleField(name string) (float64, error) {
	v, err := fieldAs[DoubleValue](i, name, DOUBLE)
	return float64(v), err
}

func (i *Instance) GetDateField(name string) (time.Time, error) {
	v, err := fieldAs[DateValue](i, name, DATE)
	return v.Time(), err
}

func (i *Instance) GetStringField(name string) (string, error) {
	v, err := fieldAs[StringValue](i, name, STRING)
	return string(v), err
}

func (i *Instance) GetObjectField(name string) (any, error) {
	v, err := fieldAs[ObjectValue](i, name, OBJECT)
	return v.V, err
}

func (i *Instance) GetBooleanArrayField(name string) ([]bool, error) {
	return fieldAs[BoolArrayValue](i, name, BOOLEAN_ARRAY)
}

func (i *Instance) GetCharArrayField(name string) ([]uint16, error) {
	return fieldAs[CharArrayValue](i, name, CHAR_ARRAY)
}

func (i *Instance) GetByteArrayField(name string) ([]byte, error) {
	return fieldAs[ByteArrayValue](i, name, BYTE_ARRAY)
}

func (i *Instance) GetShortArrayField(name string) ([]int16, error) {
	return fieldAs[ShortArrayValue](i, name, SHORT_ARRAY)
}

func (i *Instance) GetIntArrayField(name string) ([]int32, error) {
	return fieldAs[IntArrayValue](i, name, INT_ARRAY)
}

func (i *Instance) GetLongArrayField(name string) ([]int64, error) {
	return fieldAs[LongArrayValue](i, name, LONG_ARRAY)
}

func (i *Instance) GetFloatArrayField(name string) ([]float32, error) {
	return fieldAs[FloatArrayValue](i, name, FLOAT_ARRAY)
}

func (i *Instance) GetDoubleArrayField(name string) ([]float64, error) {
	return fieldAs[DoubleArrayValue](i, name, DOUBLE_ARRAY)
}

func (i *Instance) GetStringArrayField(name string) ([]string, error) {
	return fieldAs[StringArrayValue](i, name, STRING_ARRAY)
}

func (i *Instance) GetObjectArrayField(name string) ([]any, error) {
	return fieldAs[ObjectArrayValue](i, name, OBJECT_ARRAY)
}

func (i *Instance) GetArrayOfByteArraysField(name string) ([][]byte, error) {
	return fieldAs[ByteArraysValue](i, name, ARRAY_OF_BYTE_ARRAYS)
}

// CreateWriter returns a writable copy of the instance.
func (i *Instance) CreateWriter() *WritableInstance {
	return &WritableInstance{Instance: i}
}

// Object builds the domain object through the factory or serializer
// registered for the class.
func (i *Instance) Object() (any, error) {
	buf := NewOutputBuffer(len(i.data) + len(i.offsets) + pdxHeaderSize + 1)
	if err := i.toData(buf); err != nil {
		return nil, err
	}
	var err Error
	buf.ReadByte(&err)
	obj, e := i.registry.deserializePdx(buf, false)
	if e != nil {
		return nil, e
	}
	if _, ok := obj.(*Instance); ok {
		return nil, UnregisteredClassError(i.ClassName())
	}
	return obj, nil
}

func (i *Instance) pristine() bool {
	return i.data != nil && (i.edits == nil || i.edits.Len() == 0) && i.ptype.TypeID() != 0
}

// toData writes the instance as a PDX payload. An unedited instance read
// from the wire is copied as is.
func (i *Instance) toData(buf *ByteBuffer) error {
	if i.pristine() {
		buf.WriteByte_(byte(PDX))
		buf.WriteInt32(int32(len(i.data) + len(i.offsets)))
		buf.WriteInt32(i.ptype.TypeID())
		buf.WriteBinary(i.data)
		buf.WriteBinary(i.offsets)
		return nil
	}
	return i.registry.serializePdx(buf, i, i.ClassName(), i.writeFields)
}

func (i *Instance) writeFields(w PdxWriter) error {
	if pw, ok := w.(*pdxWriter); ok {
		pw.ptype.SetNoDomainClass(i.ptype.NoDomainClass())
	}
	for idx, f := range i.ptype.Fields() {
		v, err := i.value(idx)
		if err != nil {
			return err
		}
		w.WriteField(f.Name, v)
		if f.Identity {
			w.MarkIdentityField(f.Name)
		}
	}
	return w.Err()
}

// ============================================================================
// Identity
// ============================================================================

// rawField returns the encoded bytes of a field that is not an object.
func (i *Instance) rawField(f *PdxFieldType) []byte {
	idx := int(f.SequenceID)
	if i.edits != nil {
		if v, ok := i.edits.Get(idx); ok {
			buf := NewOutputBuffer(16)
			if err := i.registry.writeFieldValue(buf, v); err != nil {
				return nil
			}
			return buf.Bytes()
		}
	}
	if i.data == nil {
		return f.Kind.defaultBytes()
	}
	pos := i.ptype.FieldPosition(f, i.offsets, i.offsetSize, len(i.data))
	end := i.ptype.NextFieldPosition(idx, i.offsets, i.offsetSize, len(i.data))
	if pos < 0 || end < pos || end > len(i.data) {
		return nil
	}
	return i.data[pos:end]
}

// objectField decodes an OBJECT or OBJECT_ARRAY field, nil when it cannot
// be read.
func (i *Instance) objectField(f *PdxFieldType) any {
	v, err := i.value(int(f.SequenceID))
	if err != nil || v == nil {
		return nil
	}
	if a, ok := v.(ObjectArrayValue); ok {
		if a == nil {
			return nil
		}
		return []any(a)
	}
	return v.Value()
}

// rawHash hashes encoded field bytes back to front. Fields holding their
// kind's default value hash to 0.
func rawHash(raw []byte, kind FieldKind) int32 {
	if bytes.Equal(raw, kind.defaultBytes()) {
		return 0
	}
	h := int32(1)
	for j := len(raw) - 1; j >= 0; j-- {
		h = 31*h + int32(raw[j])
	}
	return h
}

// HashCode hashes the identity fields. When no field is marked identity,
// every field is an identity field.
func (i *Instance) HashCode() int32 {
	h := int32(1)
	for _, f := range i.ptype.IdentityFields() {
		switch f.Kind {
		case OBJECT, OBJECT_ARRAY:
			if v := i.objectField(f); v != nil {
				h = 31*h + i.registry.hashObject(v)
			}
		default:
			if rh := rawHash(i.rawField(f), f.Kind); rh != 0 {
				h = 31*h + rh
			}
		}
	}
	return h
}

// Equal compares the identity fields of two instances of the same class.
// When no field is marked identity, every field is an identity field, so
// marking a single field excludes all others from the comparison. A field
// only one side has is compared against its kind's default value.
func (i *Instance) Equal(other *Instance) bool {
	if i == other {
		return true
	}
	if i == nil || other == nil || i.ClassName() != other.ClassName() {
		return false
	}
	mine, theirs := i.ptype.IdentityFields(), other.ptype.IdentityFields()
	a, b := 0, 0
	for a < len(mine) || b < len(theirs) {
		switch {
		case b >= len(theirs) || (a < len(mine) && mine[a].Name < theirs[b].Name):
			if !i.isDefault(mine[a]) {
				return false
			}
			a++
		case a >= len(mine) || theirs[b].Name < mine[a].Name:
			if !other.isDefault(theirs[b]) {
				return false
			}
			b++
		default:
			if !i.fieldEqual(mine[a], other, theirs[b]) {
				return false
			}
			a++
			b++
		}
	}
	return true
}

func (i *Instance) isDefault(f *PdxFieldType) bool {
	switch f.Kind {
	case OBJECT, OBJECT_ARRAY:
		return i.objectField(f) == nil
	default:
		return bytes.Equal(i.rawField(f), f.Kind.defaultBytes())
	}
}

func (i *Instance) fieldEqual(f *PdxFieldType, other *Instance, g *PdxFieldType) bool {
	if f.Kind != g.Kind {
		return false
	}
	switch f.Kind {
	case OBJECT, OBJECT_ARRAY:
		return deepEqual(i.objectField(f), other.objectField(g))
	default:
		return bytes.Equal(i.rawField(f), other.rawField(g))
	}
}

// Equaler is implemented by values with their own notion of equality.
type Equaler interface {
	Equals(other any) bool
}

// HashCoder is implemented by values with their own hash code.
type HashCoder interface {
	HashCode() int32
}

func deepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Instance:
		if y, ok := b.(*Instance); ok {
			return x.Equal(y)
		}
		if y, ok := b.(*WritableInstance); ok {
			return x.Equal(y.Instance)
		}
		return false
	case *WritableInstance:
		return deepEqual(x.Instance, b)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k := range x {
			if !deepEqual(x[k], y[k]) {
				return false
			}
		}
		return true
	case Equaler:
		return x.Equals(b)
	}
	return reflect.DeepEqual(a, b)
}

// hashObject hashes a field object: through its own HashCode when it has
// one, element by element for object arrays, and over its serialized form
// otherwise.
func (r *SerializationRegistry) hashObject(v any) int32 {
	switch x := v.(type) {
	case nil:
		return 0
	case HashCoder:
		return x.HashCode()
	case string:
		h := int32(0)
		for _, u := range utf16.Encode([]rune(x)) {
			h = 31*h + int32(u)
		}
		return h
	case []any:
		h := int32(1)
		for _, e := range x {
			h = 31*h + r.hashObject(e)
		}
		return h
	}
	buf := NewOutputBuffer(32)
	if err := r.Serialize(buf, v); err != nil {
		return 0
	}
	h := int32(1)
	for _, c := range buf.Bytes() {
		h = 31*h + int32(c)
	}
	return h
}
