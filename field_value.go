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

import "time"

// FieldValue is a typed PDX field value. The set of implementations is
// closed: one per FieldKind.
type FieldValue interface {
	Kind() FieldKind
	// Value returns the plain Go value.
	Value() any
	isFieldValue()
}

type (
	BoolValue        bool
	ByteValue        int8
	CharValue        uint16
	ShortValue       int16
	IntValue         int32
	LongValue        int64
	FloatValue       float32
	DoubleValue      float64
	DateValue        time.Time
	StringValue      string
	ObjectValue      struct{ V any }
	BoolArrayValue   []bool
	CharArrayValue   []uint16
	ByteArrayValue   []byte
	ShortArrayValue  []int16
	IntArrayValue    []int32
	LongArrayValue   []int64
	FloatArrayValue  []float32
	DoubleArrayValue []float64
	StringArrayValue []string
	ObjectArrayValue []any
	ByteArraysValue  [][]byte
)

func (BoolValue) Kind() FieldKind        { return BOOLEAN }
func (ByteValue) Kind() FieldKind        { return BYTE }
func (CharValue) Kind() FieldKind        { return CHAR }
func (ShortValue) Kind() FieldKind       { return SHORT }
func (IntValue) Kind() FieldKind         { return INT }
func (LongValue) Kind() FieldKind        { return LONG }
func (FloatValue) Kind() FieldKind       { return FLOAT }
func (DoubleValue) Kind() FieldKind      { return DOUBLE }
func (DateValue) Kind() FieldKind        { return DATE }
func (StringValue) Kind() FieldKind      { return STRING }
func (ObjectValue) Kind() FieldKind      { return OBJECT }
func (BoolArrayValue) Kind() FieldKind   { return BOOLEAN_ARRAY }
func (CharArrayValue) Kind() FieldKind   { return CHAR_ARRAY }
func (ByteArrayValue) Kind() FieldKind   { return BYTE_ARRAY }
func (ShortArrayValue) Kind() FieldKind  { return SHORT_ARRAY }
func (IntArrayValue) Kind() FieldKind    { return INT_ARRAY }
func (LongArrayValue) Kind() FieldKind   { return LONG_ARRAY }
func (FloatArrayValue) Kind() FieldKind  { return FLOAT_ARRAY }
func (DoubleArrayValue) Kind() FieldKind { return DOUBLE_ARRAY }
func (StringArrayValue) Kind() FieldKind { return STRING_ARRAY }
func (ObjectArrayValue) Kind() FieldKind { return OBJECT_ARRAY }
func (ByteArraysValue) Kind() FieldKind  { return ARRAY_OF_BYTE_ARRAYS }

func (v BoolValue) Value() any        { return bool(v) }
func (v ByteValue) Value() any        { return int8(v) }
func (v CharValue) Value() any        { return uint16(v) }
func (v ShortValue) Value() any       { return int16(v) }
func (v IntValue) Value() any         { return int32(v) }
func (v LongValue) Value() any        { return int64(v) }
func (v FloatValue) Value() any       { return float32(v) }
func (v DoubleValue) Value() any      { return float64(v) }
func (v DateValue) Value() any        { return time.Time(v) }
func (v StringValue) Value() any      { return string(v) }
func (v ObjectValue) Value() any      { return v.V }
func (v BoolArrayValue) Value() any   { return []bool(v) }
func (v CharArrayValue) Value() any   { return []uint16(v) }
func (v ByteArrayValue) Value() any   { return []byte(v) }
func (v ShortArrayValue) Value() any  { return []int16(v) }
func (v IntArrayValue) Value() any    { return []int32(v) }
func (v LongArrayValue) Value() any   { return []int64(v) }
func (v FloatArrayValue) Value() any  { return []float32(v) }
func (v DoubleArrayValue) Value() any { return []float64(v) }
func (v StringArrayValue) Value() any { return []string(v) }
func (v ObjectArrayValue) Value() any { return []any(v) }
func (v ByteArraysValue) Value() any  { return [][]byte(v) }

// Time returns the date as a time.Time.
func (v DateValue) Time() time.Time { return time.Time(v) }

func (BoolValue) isFieldValue()        {}
func (ByteValue) isFieldValue()        {}
func (CharValue) isFieldValue()        {}
func (ShortValue) isFieldValue()       {}
func (IntValue) isFieldValue()         {}
func (LongValue) isFieldValue()        {}
func (FloatValue) isFieldValue()       {}
func (DoubleValue) isFieldValue()      {}
func (DateValue) isFieldValue()        {}
func (StringValue) isFieldValue()      {}
func (ObjectValue) isFieldValue()      {}
func (BoolArrayValue) isFieldValue()   {}
func (CharArrayValue) isFieldValue()   {}
func (ByteArrayValue) isFieldValue()   {}
func (ShortArrayValue) isFieldValue()  {}
func (IntArrayValue) isFieldValue()    {}
func (LongArrayValue) isFieldValue()   {}
func (FloatArrayValue) isFieldValue()  {}
func (DoubleArrayValue) isFieldValue() {}
func (StringArrayValue) isFieldValue() {}
func (ObjectArrayValue) isFieldValue() {}
func (ByteArraysValue) isFieldValue()  {}

// ZeroValue returns the value a reader yields for a field the payload does
// not contain.
func ZeroValue(kind FieldKind) FieldValue {
	switch kind {
	case BOOLEAN:
		return BoolValue(false)
	case BYTE:
		return ByteValue(0)
	case CHAR:
		return CharValue(0)
	case SHORT:
		return ShortValue(0)
	case INT:
		return IntValue(0)
	case LONG:
		return LongValue(0)
	case FLOAT:
		return FloatValue(0)
	case DOUBLE:
		return DoubleValue(0)
	case DATE:
		return DateValue(time.Time{})
	case STRING:
		return StringValue("")
	case OBJECT:
		return ObjectValue{}
	case BOOLEAN_ARRAY:
		return BoolArrayValue(nil)
	case CHAR_ARRAY:
		return CharArrayValue(nil)
	case BYTE_ARRAY:
		return ByteArrayValue(nil)
	case SHORT_ARRAY:
		return ShortArrayValue(nil)
	case INT_ARRAY:
		return IntArrayValue(nil)
	case LONG_ARRAY:
		return LongArrayValue(nil)
	case FLOAT_ARRAY:
		return FloatArrayValue(nil)
	case DOUBLE_ARRAY:
		return DoubleArrayValue(nil)
	case STRING_ARRAY:
		return StringArrayValue(nil)
	case OBJECT_ARRAY:
		return ObjectArrayValue(nil)
	case ARRAY_OF_BYTE_ARRAYS:
		return ByteArraysValue(nil)
	default:
		return nil
	}
}

// ValueOf wraps a plain Go value. A FieldValue is returned unchanged and
// anything without a dedicated kind becomes an OBJECT.
func ValueOf(v any) FieldValue {
	switch x := v.(type) {
	case FieldValue:
		return x
	case bool:
		return BoolValue(x)
	case int8:
		return ByteValue(x)
	case uint16:
		return CharValue(x)
	case int16:
		return ShortValue(x)
	case int32:
		return IntValue(x)
	case int:
		return IntValue(int32(x))
	case int64:
		return LongValue(x)
	case float32:
		return FloatValue(x)
	case float64:
		return DoubleValue(x)
	case time.Time:
		return DateValue(x)
	case string:
		return StringValue(x)
	case []bool:
		return BoolArrayValue(x)
	case []uint16:
		return CharArrayValue(x)
	case []byte:
		return ByteArrayValue(x)
	case []int16:
		return ShortArrayValue(x)
	case []int32:
		return IntArrayValue(x)
	case []int64:
		return LongArrayValue(x)
	case []float32:
		return FloatArrayValue(x)
	case []float64:
		return DoubleArrayValue(x)
	case []string:
		return StringArrayValue(x)
	case []any:
		return ObjectArrayValue(x)
	case [][]byte:
		return ByteArraysValue(x)
	default:
		return ObjectValue{V: v}
	}
}
