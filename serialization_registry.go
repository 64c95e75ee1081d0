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
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// SerializationRegistry maps wire type identifiers to factories and is the
// entry point of both built-in and PDX (de)serialization. It has three
// independently locked maps:
//
//   - map1: built-in DS codes and user data keys (code | classID<<32)
//   - map2: internal fixed ids
//   - pdxMap: PDX class names
//
// Factories are always called outside the locks.
type SerializationRegistry struct {
	types  *TypeRegistry
	logger logrus.FieldLogger
	config Config

	map1Mu sync.RWMutex
	map1   map[int64]TypeFactory

	map2Mu sync.RWMutex
	map2   map[int32]TypeFactory

	pdxMu      sync.RWMutex
	pdxMap     map[string]PdxTypeFactory
	serializer PdxSerializer
}

// NewSerializationRegistry returns a registry with the built-in types bound.
func NewSerializationRegistry(types *TypeRegistry, logger logrus.FieldLogger, config Config) *SerializationRegistry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &SerializationRegistry{
		types:  types,
		logger: logger,
		config: config,
		map1:   make(map[int64]TypeFactory),
		map2:   make(map[int32]TypeFactory),
		pdxMap: make(map[string]PdxTypeFactory),
	}
	r.setup()
	return r
}

func (r *SerializationRegistry) setup() {
	for code, factory := range builtinFactories() {
		r.map1[int64(code)] = factory
	}
	r.map2[FixedIDCacheableUndefined] = func() Serializable { return Undefined{} }
}

// Types returns the PDX type registry used by this registry.
func (r *SerializationRegistry) Types() *TypeRegistry {
	return r.types
}

// userDataCode picks the smallest user data code that holds classID.
func userDataCode(classID int32) DSCode {
	switch {
	case classID >= math.MinInt8 && classID <= math.MaxInt8:
		return CacheableUserData
	case classID >= math.MinInt16 && classID <= math.MaxInt16:
		return CacheableUserData2
	default:
		return CacheableUserData4
	}
}

// UserDataKey returns the map1 key of a user class id.
func UserDataKey(classID int32) int64 {
	return int64(classID)<<32 | int64(userDataCode(classID))
}

func keyOf(obj Serializable) (int64, error) {
	switch o := obj.(type) {
	case DataSerializable:
		return UserDataKey(o.ClassID()), nil
	case DataSerializablePrimitive:
		return int64(o.DSCode()), nil
	default:
		return 0, InvalidStateErrorf("%T has neither a class id nor a DS code", obj)
	}
}

// ============================================================================
// Binding
// ============================================================================

// Bind registers factory under the key of the value it produces. Binding a
// key that is already bound fails and keeps the first binding.
func (r *SerializationRegistry) Bind(factory TypeFactory) error {
	key, err := keyOf(factory())
	if err != nil {
		return err
	}
	r.map1Mu.Lock()
	defer r.map1Mu.Unlock()
	if _, ok := r.map1[key]; ok {
		return DuplicateRegistrationError("type", key)
	}
	r.map1[key] = factory
	return nil
}

// Rebind registers factory, replacing any existing binding.
func (r *SerializationRegistry) Rebind(factory TypeFactory) error {
	key, err := keyOf(factory())
	if err != nil {
		return err
	}
	r.map1Mu.Lock()
	r.map1[key] = factory
	r.map1Mu.Unlock()
	return nil
}

// Unbind removes the factory of a user class id.
func (r *SerializationRegistry) Unbind(classID int32) {
	r.map1Mu.Lock()
	delete(r.map1, UserDataKey(classID))
	r.map1Mu.Unlock()
}

// Bind2 registers an internal type under its fixed id.
func (r *SerializationRegistry) Bind2(fixedID int32, factory TypeFactory) error {
	r.map2Mu.Lock()
	defer r.map2Mu.Unlock()
	if _, ok := r.map2[fixedID]; ok {
		return DuplicateRegistrationError("fixed id", fixedID)
	}
	r.map2[fixedID] = factory
	return nil
}

func (r *SerializationRegistry) Rebind2(fixedID int32, factory TypeFactory) {
	r.map2Mu.Lock()
	r.map2[fixedID] = factory
	r.map2Mu.Unlock()
}

func (r *SerializationRegistry) Unbind2(fixedID int32) {
	r.map2Mu.Lock()
	delete(r.map2, fixedID)
	r.map2Mu.Unlock()
}

// BindPdxType registers the factory of a PDX domain class.
func (r *SerializationRegistry) BindPdxType(className string, factory PdxTypeFactory) error {
	r.pdxMu.Lock()
	defer r.pdxMu.Unlock()
	if _, ok := r.pdxMap[className]; ok {
		return DuplicateRegistrationError("pdx class", className)
	}
	r.pdxMap[className] = factory
	return nil
}

func (r *SerializationRegistry) RebindPdxType(className string, factory PdxTypeFactory) {
	r.pdxMu.Lock()
	r.pdxMap[className] = factory
	r.pdxMu.Unlock()
}

func (r *SerializationRegistry) UnbindPdxType(className string) {
	r.pdxMu.Lock()
	delete(r.pdxMap, className)
	r.pdxMu.Unlock()
}

// SetPdxSerializer installs the serializer used for values that do not
// implement PdxSerializable.
func (r *SerializationRegistry) SetPdxSerializer(s PdxSerializer) {
	r.pdxMu.Lock()
	r.serializer = s
	r.pdxMu.Unlock()
}

func (r *SerializationRegistry) PdxSerializer() PdxSerializer {
	r.pdxMu.RLock()
	defer r.pdxMu.RUnlock()
	return r.serializer
}

// PdxFactory returns the factory bound to className, or nil.
func (r *SerializationRegistry) PdxFactory(className string) PdxTypeFactory {
	r.pdxMu.RLock()
	defer r.pdxMu.RUnlock()
	return r.pdxMap[className]
}

// Factory returns the map1 factory bound to key, or nil.
func (r *SerializationRegistry) Factory(key int64) TypeFactory {
	r.map1Mu.RLock()
	defer r.map1Mu.RUnlock()
	return r.map1[key]
}

// FixedIDFactory returns the map2 factory bound to fixedID, or nil.
func (r *SerializationRegistry) FixedIDFactory(fixedID int32) TypeFactory {
	r.map2Mu.RLock()
	defer r.map2Mu.RUnlock()
	return r.map2[fixedID]
}

// ============================================================================
// Dispatch
// ============================================================================

// Deserialize reads one value. typeID is the DS code when the caller has
// already consumed it, or -1 to read it from buf.
func (r *SerializationRegistry) Deserialize(buf *ByteBuffer, typeID int32) (any, error) {
	var err Error
	code := DSCode(typeID)
	if typeID == -1 {
		code = DSCode(buf.ReadByte(&err))
		if e := err.TakeError(); e != nil {
			return nil, e
		}
	}
	switch code {
	case NullObj:
		return nil, nil
	case CacheableNullString:
		return "", nil
	case CacheableString, CacheableASCIIString, CacheableASCIIStringHuge, CacheableStringHuge:
		s := buf.readStringBody(code, &err)
		return s, err.CheckError()
	case PDX:
		return r.deserializePdx(buf, r.config.ReadSerialized)
	case CacheableObjectArray:
		v := r.readObjectArray(buf, &err)
		return v, err.CheckError()
	case CacheableUserData, CacheableUserData2, CacheableUserData4:
		var classID int32
		switch code {
		case CacheableUserData:
			classID = int32(buf.ReadInt8(&err))
		case CacheableUserData2:
			classID = int32(buf.ReadInt16(&err))
		default:
			classID = buf.ReadInt32(&err)
		}
		if e := err.TakeError(); e != nil {
			return nil, e
		}
		key := int64(classID)<<32 | int64(code)
		return r.instantiate(r.Factory(key), "classId", int64(classID), buf)
	case FixedIDByte, FixedIDShort, FixedIDInt:
		var fixedID int32
		switch code {
		case FixedIDByte:
			fixedID = int32(buf.ReadInt8(&err))
		case FixedIDShort:
			fixedID = int32(buf.ReadInt16(&err))
		default:
			fixedID = buf.ReadInt32(&err)
		}
		if e := err.TakeError(); e != nil {
			return nil, e
		}
		return r.instantiate(r.FixedIDFactory(fixedID), "fixedId", int64(fixedID), buf)
	default:
		return r.instantiate(r.Factory(int64(code)), "typeId", int64(code), buf)
	}
}

func (r *SerializationRegistry) instantiate(factory TypeFactory, what string, id int64, buf *ByteBuffer) (any, error) {
	if factory == nil {
		r.logger.WithField(what, id).Error("unregistered type in deserialization")
		return nil, UnregisteredTypeError(what, id)
	}
	obj := factory()
	if err := obj.FromData(buf); err != nil {
		return nil, err
	}
	if p, ok := obj.(DataSerializablePrimitive); ok {
		return p.Value(), nil
	}
	return obj, nil
}

// Serialize writes v with its DS code.
func (r *SerializationRegistry) Serialize(buf *ByteBuffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteByte_(byte(NullObj))
		return nil
	case FieldValue:
		return r.Serialize(buf, x.Value())
	case string:
		buf.WriteString(x)
		return nil
	case []any:
		buf.WriteByte_(byte(CacheableObjectArray))
		return r.writeObjectArray(buf, x)
	case *Instance:
		return x.toData(buf)
	case *WritableInstance:
		return x.Instance.toData(buf)
	case PdxSerializable:
		return r.serializePdx(buf, x, x.ClassName(), x.ToData)
	case DataSerializableFixedID:
		writeFixedIDHeader(buf, x.DSFID())
		return x.ToData(buf)
	case DataSerializable:
		id := x.ClassID()
		buf.WriteByte_(byte(userDataCode(id)))
		writeClassID(buf, id)
		return x.ToData(buf)
	case DataSerializablePrimitive:
		buf.WriteByte_(byte(x.DSCode()))
		return x.ToData(buf)
	}
	if p := wrapPrimitive(v); p != nil {
		buf.WriteByte_(byte(p.DSCode()))
		return p.ToData(buf)
	}
	if s := r.PdxSerializer(); s != nil {
		if className := s.ClassName(v); className != "" {
			return r.serializePdx(buf, v, className, func(w PdxWriter) error {
				return s.ToData(v, w)
			})
		}
	}
	return SerializationErrorf("cannot serialize value of type %T", v)
}

func writeClassID(buf *ByteBuffer, id int32) {
	switch userDataCode(id) {
	case CacheableUserData:
		buf.WriteInt8(int8(id))
	case CacheableUserData2:
		buf.WriteInt16(int16(id))
	default:
		buf.WriteInt32(id)
	}
}

func writeFixedIDHeader(buf *ByteBuffer, id int32) {
	switch {
	case id >= math.MinInt8 && id <= math.MaxInt8:
		buf.WriteByte_(byte(FixedIDByte))
		buf.WriteInt8(int8(id))
	case id >= math.MinInt16 && id <= math.MaxInt16:
		buf.WriteByte_(byte(FixedIDShort))
		buf.WriteInt16(int16(id))
	default:
		buf.WriteByte_(byte(FixedIDInt))
		buf.WriteInt32(id)
	}
}

// PdxClassName returns the PDX class name v is serialized under, or "".
func (r *SerializationRegistry) PdxClassName(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *Instance:
		return x.ClassName()
	case *WritableInstance:
		return x.ClassName()
	case PdxSerializable:
		return x.ClassName()
	}
	if s := r.PdxSerializer(); s != nil {
		return s.ClassName(v)
	}
	return ""
}

// ============================================================================
// Field values
// ============================================================================

// writeObjectArray writes an object array body: the length, the component
// class, then every element with its DS code.
func (r *SerializationRegistry) writeObjectArray(buf *ByteBuffer, v []any) error {
	if v == nil {
		buf.WriteArrayLen(-1)
		return nil
	}
	buf.WriteArrayLen(int32(len(v)))
	component := objectArrayComponentClass
	if len(v) > 0 {
		if className := r.PdxClassName(v[0]); className != "" {
			component = className
		}
	}
	buf.WriteByte_(byte(Class))
	buf.WriteString(component)
	for _, e := range v {
		if err := r.Serialize(buf, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *SerializationRegistry) readObjectArray(buf *ByteBuffer, err *Error) []any {
	n := buf.ReadArrayLen(err)
	if n < 0 || err.HasError() {
		return nil
	}
	if int(n) > buf.Remaining() {
		err.SetError(BufferOutOfBoundError(buf.ReaderIndex(), int(n), buf.WriterIndex()))
		return nil
	}
	if code := DSCode(buf.ReadByte(err)); err.Ok() && code != Class {
		err.SetError(InvalidStateErrorf("object array has class code %d", code))
		return nil
	}
	buf.ReadString(err)
	if err.HasError() {
		return nil
	}
	out := make([]any, n)
	for i := range out {
		v, e := r.Deserialize(buf, -1)
		if e != nil {
			err.SetError(e)
			return nil
		}
		out[i] = v
	}
	return out
}

// writeFieldValue writes the encoding of one PDX field value.
func (r *SerializationRegistry) writeFieldValue(buf *ByteBuffer, v FieldValue) error {
	switch x := v.(type) {
	case BoolValue:
		buf.WriteBool(bool(x))
	case ByteValue:
		buf.WriteInt8(int8(x))
	case CharValue:
		buf.WriteUint16(uint16(x))
	case ShortValue:
		buf.WriteInt16(int16(x))
	case IntValue:
		buf.WriteInt32(int32(x))
	case LongValue:
		buf.WriteInt64(int64(x))
	case FloatValue:
		buf.WriteFloat32(float32(x))
	case DoubleValue:
		buf.WriteFloat64(float64(x))
	case DateValue:
		buf.WriteDate(x.Time())
	case StringValue:
		buf.WriteString(string(x))
	case ObjectValue:
		return r.Serialize(buf, x.V)
	case BoolArrayValue:
		buf.WriteBoolArray(x)
	case CharArrayValue:
		buf.WriteCharArray(x)
	case ByteArrayValue:
		buf.WriteBytes(x)
	case ShortArrayValue:
		buf.WriteInt16Array(x)
	case IntArrayValue:
		buf.WriteInt32Array(x)
	case LongArrayValue:
		buf.WriteInt64Array(x)
	case FloatArrayValue:
		buf.WriteFloat32Array(x)
	case DoubleArrayValue:
		buf.WriteFloat64Array(x)
	case StringArrayValue:
		buf.WriteStringArray(x)
	case ObjectArrayValue:
		return r.writeObjectArray(buf, x)
	case ByteArraysValue:
		buf.WriteByteArrays(x)
	default:
		return InvalidStateErrorf("unsupported field value %T", v)
	}
	return nil
}

// readFieldValue reads one PDX field value of kind.
func (r *SerializationRegistry) readFieldValue(buf *ByteBuffer, kind FieldKind, err *Error) FieldValue {
	switch kind {
	case BOOLEAN:
		return BoolValue(buf.ReadBool(err))
	case BYTE:
		return ByteValue(buf.ReadInt8(err))
	case CHAR:
		return CharValue(buf.ReadUint16(err))
	case SHORT:
		return ShortValue(buf.ReadInt16(err))
	case INT:
		return IntValue(buf.ReadInt32(err))
	case LONG:
		return LongValue(buf.ReadInt64(err))
	case FLOAT:
		return FloatValue(buf.ReadFloat32(err))
	case DOUBLE:
		return DoubleValue(buf.ReadFloat64(err))
	case DATE:
		return DateValue(buf.ReadDate(err))
	case STRING:
		return StringValue(buf.ReadString(err))
	case OBJECT:
		v, e := r.Deserialize(buf, -1)
		err.SetError(e)
		return ObjectValue{V: v}
	case BOOLEAN_ARRAY:
		return BoolArrayValue(buf.ReadBoolArray(err))
	case CHAR_ARRAY:
		return CharArrayValue(buf.ReadCharArray(err))
	case BYTE_ARRAY:
		return ByteArrayValue(buf.ReadBytes(err))
	case SHORT_ARRAY:
		return ShortArrayValue(buf.ReadInt16Array(err))
	case INT_ARRAY:
		return IntArrayValue(buf.ReadInt32Array(err))
	case LONG_ARRAY:
		return LongArrayValue(buf.ReadInt64Array(err))
	case FLOAT_ARRAY:
		return FloatArrayValue(buf.ReadFloat32Array(err))
	case DOUBLE_ARRAY:
		return DoubleArrayValue(buf.ReadFloat64Array(err))
	case STRING_ARRAY:
		return StringArrayValue(buf.ReadStringArray(err))
	case OBJECT_ARRAY:
		return ObjectArrayValue(r.readObjectArray(buf, err))
	case ARRAY_OF_BYTE_ARRAYS:
		return ByteArraysValue(buf.ReadByteArrays(err))
	default:
		err.SetError(InvalidStateErrorf("unknown field kind %d", int8(kind)))
		return nil
	}
}
