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
	"reflect"
	"sync"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// arrayKinds lists the Go slice types a PDX array kind is stored in, in the
// order struct field types are matched against them.
var arrayKinds = []struct {
	kind FieldKind
	typ  reflect.Type
}{
	{BOOLEAN_ARRAY, reflect.TypeOf([]bool(nil))},
	{CHAR_ARRAY, reflect.TypeOf([]uint16(nil))},
	{BYTE_ARRAY, reflect.TypeOf([]byte(nil))},
	{SHORT_ARRAY, reflect.TypeOf([]int16(nil))},
	{INT_ARRAY, reflect.TypeOf([]int32(nil))},
	{LONG_ARRAY, reflect.TypeOf([]int64(nil))},
	{FLOAT_ARRAY, reflect.TypeOf([]float32(nil))},
	{DOUBLE_ARRAY, reflect.TypeOf([]float64(nil))},
	{STRING_ARRAY, reflect.TypeOf([]string(nil))},
	{OBJECT_ARRAY, reflect.TypeOf([]any(nil))},
	{ARRAY_OF_BYTE_ARRAYS, reflect.TypeOf([][]byte(nil))},
}

// kindOfType maps a struct field type to the PDX kind it is written as.
// Named types follow their underlying type; int is written as INT and
// anything unmatched as OBJECT.
func kindOfType(t reflect.Type) FieldKind {
	if t == timeType {
		return DATE
	}
	switch t.Kind() {
	case reflect.Bool:
		return BOOLEAN
	case reflect.Int8:
		return BYTE
	case reflect.Uint16:
		return CHAR
	case reflect.Int16:
		return SHORT
	case reflect.Int32, reflect.Int:
		return INT
	case reflect.Int64:
		return LONG
	case reflect.Float32:
		return FLOAT
	case reflect.Float64:
		return DOUBLE
	case reflect.String:
		return STRING
	case reflect.Slice:
		for _, a := range arrayKinds {
			if t.ConvertibleTo(a.typ) {
				return a.kind
			}
		}
	}
	return OBJECT
}

type autoField struct {
	name     string
	index    []int
	kind     FieldKind
	identity bool
}

type structInfo struct {
	className string
	typ       reflect.Type
	// pointer is set when values are registered and returned as *T.
	pointer bool
	fields  []autoField
}

func newStructInfo(className string, t reflect.Type) (*structInfo, error) {
	info := &structInfo{className: className}
	if t.Kind() == reflect.Ptr {
		info.pointer = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, InvalidStateErrorf("auto serialization needs a struct, got %s", t)
	}
	if err := ValidatePdxTags(t); err != nil {
		return nil, err
	}
	info.typ = t
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !ShouldIncludeField(field) {
			continue
		}
		tag := ParsePdxTag(field)
		info.fields = append(info.fields, autoField{
			name:     tag.FieldName(field),
			index:    field.Index,
			kind:     kindOfType(field.Type),
			identity: tag.Identity,
		})
	}
	return info, nil
}

// AutoSerializer is a PdxSerializer for plain structs. Every exported field
// is written under its Go name unless a pdx tag renames, marks or skips it.
//
//	s := pdx.NewAutoSerializer()
//	_ = s.Register("com.example.Order", &Order{})
//	registry.SetPdxSerializer(s)
type AutoSerializer struct {
	mu      sync.RWMutex
	byClass map[string]*structInfo
	byType  map[reflect.Type]*structInfo
}

func NewAutoSerializer() *AutoSerializer {
	return &AutoSerializer{
		byClass: make(map[string]*structInfo),
		byType:  make(map[reflect.Type]*structInfo),
	}
}

// Register binds className to the struct type of sample, which may be a
// struct or a pointer to one. Deserialized values have the same form as
// sample. Both T and *T are serialized under className.
func (s *AutoSerializer) Register(className string, sample any) error {
	if sample == nil {
		return InvalidStateError("auto serialization needs a non-nil sample")
	}
	info, err := newStructInfo(className, reflect.TypeOf(sample))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byClass[className]; ok {
		return DuplicateRegistrationError("pdx class", className)
	}
	if other, ok := s.byType[info.typ]; ok {
		return DuplicateRegistrationError("struct type "+info.typ.String()+" of pdx class", other.className)
	}
	s.byClass[className] = info
	s.byType[info.typ] = info
	s.byType[reflect.PointerTo(info.typ)] = info
	return nil
}

func (s *AutoSerializer) lookupType(t reflect.Type) *structInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byType[t]
}

func (s *AutoSerializer) lookupClass(className string) *structInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byClass[className]
}

func (s *AutoSerializer) ClassName(v any) string {
	if v == nil {
		return ""
	}
	if info := s.lookupType(reflect.TypeOf(v)); info != nil {
		return info.className
	}
	return ""
}

func (s *AutoSerializer) ToData(v any, w PdxWriter) error {
	info := s.lookupType(reflect.TypeOf(v))
	if info == nil {
		return SerializationErrorf("type %T is not registered for auto serialization", v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return SerializationErrorf("cannot auto serialize a nil %T", v)
		}
		rv = rv.Elem()
	}
	for _, f := range info.fields {
		w.WriteField(f.name, fieldValueOf(f.kind, rv.FieldByIndex(f.index)))
		if f.identity {
			w.MarkIdentityField(f.name)
		}
	}
	return w.Err()
}

func (s *AutoSerializer) FromData(className string, r PdxReader) (any, error) {
	info := s.lookupClass(className)
	if info == nil {
		return nil, UnregisteredClassError(className)
	}
	ptr := reflect.New(info.typ)
	for _, f := range info.fields {
		fv := r.ReadField(f.name)
		if fv == nil {
			continue
		}
		if fv.Kind() != f.kind {
			return nil, FieldTypeMismatchError(f.name, f.kind, fv.Kind())
		}
		if err := setField(ptr.Elem().FieldByIndex(f.index), fv); err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if info.pointer {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}

func fieldValueOf(kind FieldKind, rv reflect.Value) FieldValue {
	switch kind {
	case BOOLEAN:
		return BoolValue(rv.Bool())
	case BYTE:
		return ByteValue(int8(rv.Int()))
	case CHAR:
		return CharValue(uint16(rv.Uint()))
	case SHORT:
		return ShortValue(int16(rv.Int()))
	case INT:
		return IntValue(int32(rv.Int()))
	case LONG:
		return LongValue(rv.Int())
	case FLOAT:
		return FloatValue(float32(rv.Float()))
	case DOUBLE:
		return DoubleValue(rv.Float())
	case DATE:
		return DateValue(rv.Interface().(time.Time))
	case STRING:
		return StringValue(rv.String())
	case OBJECT:
		return ObjectValue{V: rv.Interface()}
	}
	for _, a := range arrayKinds {
		if a.kind == kind {
			return ValueOf(rv.Convert(a.typ).Interface())
		}
	}
	return ObjectValue{V: rv.Interface()}
}

func setField(rv reflect.Value, fv FieldValue) error {
	switch v := fv.(type) {
	case BoolValue:
		rv.SetBool(bool(v))
	case ByteValue:
		rv.SetInt(int64(v))
	case CharValue:
		rv.SetUint(uint64(v))
	case ShortValue:
		rv.SetInt(int64(v))
	case IntValue:
		rv.SetInt(int64(v))
	case LongValue:
		rv.SetInt(int64(v))
	case FloatValue:
		rv.SetFloat(float64(v))
	case DoubleValue:
		rv.SetFloat(float64(v))
	case DateValue:
		rv.Set(reflect.ValueOf(v.Time()))
	case StringValue:
		rv.SetString(string(v))
	default:
		x := fv.Value()
		xv := reflect.ValueOf(x)
		switch {
		case x == nil || (xv.Kind() == reflect.Slice && xv.IsNil()):
			rv.Set(reflect.Zero(rv.Type()))
		case xv.Type().AssignableTo(rv.Type()):
			rv.Set(xv)
		case xv.Type().ConvertibleTo(rv.Type()):
			rv.Set(xv.Convert(rv.Type()))
		default:
			return SerializationErrorf("cannot assign %T to field of type %s", x, rv.Type())
		}
	}
	return nil
}
