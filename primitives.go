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

// primitiveCodec encodes one built-in value type under its DS code.
type primitiveCodec[T any] struct {
	code  DSCode
	write func(*ByteBuffer, T)
	read  func(*ByteBuffer, *Error) T
}

func (c *primitiveCodec[T]) wrap(v T) DataSerializablePrimitive {
	return &primitive[T]{codec: c, v: v}
}

func (c *primitiveCodec[T]) factory() Serializable {
	return &primitive[T]{codec: c}
}

// primitive is the DataSerializablePrimitive of a built-in Go value.
type primitive[T any] struct {
	codec *primitiveCodec[T]
	v     T
}

func (p *primitive[T]) DSCode() DSCode {
	return p.codec.code
}

func (p *primitive[T]) Value() any {
	return p.v
}

func (p *primitive[T]) ToData(buf *ByteBuffer) error {
	p.codec.write(buf, p.v)
	return nil
}

func (p *primitive[T]) FromData(buf *ByteBuffer) error {
	var err Error
	p.v = p.codec.read(buf, &err)
	return err.CheckError()
}

var (
	boolCodec       = &primitiveCodec[bool]{CacheableBoolean, (*ByteBuffer).WriteBool, (*ByteBuffer).ReadBool}
	int8Codec       = &primitiveCodec[int8]{CacheableByte, (*ByteBuffer).WriteInt8, (*ByteBuffer).ReadInt8}
	charCodec       = &primitiveCodec[uint16]{CacheableCharacter, (*ByteBuffer).WriteUint16, (*ByteBuffer).ReadUint16}
	int16Codec      = &primitiveCodec[int16]{CacheableInt16, (*ByteBuffer).WriteInt16, (*ByteBuffer).ReadInt16}
	int32Codec      = &primitiveCodec[int32]{CacheableInt32, (*ByteBuffer).WriteInt32, (*ByteBuffer).ReadInt32}
	int64Codec      = &primitiveCodec[int64]{CacheableInt64, (*ByteBuffer).WriteInt64, (*ByteBuffer).ReadInt64}
	float32Codec    = &primitiveCodec[float32]{CacheableFloat, (*ByteBuffer).WriteFloat32, (*ByteBuffer).ReadFloat32}
	float64Codec    = &primitiveCodec[float64]{CacheableDouble, (*ByteBuffer).WriteFloat64, (*ByteBuffer).ReadFloat64}
	dateCodec       = &primitiveCodec[time.Time]{CacheableDate, (*ByteBuffer).WriteDate, (*ByteBuffer).ReadDate}
	bytesCodec      = &primitiveCodec[[]byte]{CacheableBytes, (*ByteBuffer).WriteBytes, (*ByteBuffer).ReadBytes}
	boolArrayCodec  = &primitiveCodec[[]bool]{BooleanArray, (*ByteBuffer).WriteBoolArray, (*ByteBuffer).ReadBoolArray}
	charArrayCodec  = &primitiveCodec[[]uint16]{CharArray, (*ByteBuffer).WriteCharArray, (*ByteBuffer).ReadCharArray}
	int16ArrayCodec = &primitiveCodec[[]int16]{CacheableInt16Array, (*ByteBuffer).WriteInt16Array, (*ByteBuffer).ReadInt16Array}
	int32ArrayCodec = &primitiveCodec[[]int32]{CacheableInt32Array, (*ByteBuffer).WriteInt32Array, (*ByteBuffer).ReadInt32Array}
	int64ArrayCodec = &primitiveCodec[[]int64]{CacheableInt64Array, (*ByteBuffer).WriteInt64Array, (*ByteBuffer).ReadInt64Array}
	floatArrayCodec = &primitiveCodec[[]float32]{CacheableFloatArray, (*ByteBuffer).WriteFloat32Array, (*ByteBuffer).ReadFloat32Array}
	doubleArrCodec  = &primitiveCodec[[]float64]{CacheableDoubleArray, (*ByteBuffer).WriteFloat64Array, (*ByteBuffer).ReadFloat64Array}
	stringArrCodec  = &primitiveCodec[[]string]{CacheableStringArray, (*ByteBuffer).WriteStringArray, (*ByteBuffer).ReadStringArray}
	byteArraysCodec = &primitiveCodec[[][]byte]{ArrayOfByteArrays, (*ByteBuffer).WriteByteArrays, (*ByteBuffer).ReadByteArrays}
)

// builtinFactories returns the built-in value factories bound by DS code
// when a SerializationRegistry is created.
func builtinFactories() map[DSCode]TypeFactory {
	return map[DSCode]TypeFactory{
		CacheableBoolean:     boolCodec.factory,
		CacheableByte:        int8Codec.factory,
		CacheableCharacter:   charCodec.factory,
		CacheableInt16:       int16Codec.factory,
		CacheableInt32:       int32Codec.factory,
		CacheableInt64:       int64Codec.factory,
		CacheableFloat:       float32Codec.factory,
		CacheableDouble:      float64Codec.factory,
		CacheableDate:        dateCodec.factory,
		CacheableBytes:       bytesCodec.factory,
		BooleanArray:         boolArrayCodec.factory,
		CharArray:            charArrayCodec.factory,
		CacheableInt16Array:  int16ArrayCodec.factory,
		CacheableInt32Array:  int32ArrayCodec.factory,
		CacheableInt64Array:  int64ArrayCodec.factory,
		CacheableFloatArray:  floatArrayCodec.factory,
		CacheableDoubleArray: doubleArrCodec.factory,
		CacheableStringArray: stringArrCodec.factory,
		ArrayOfByteArrays:    byteArraysCodec.factory,
	}
}

// wrapPrimitive returns the built-in primitive for v, or nil when v is not
// a built-in value. Strings and object arrays are handled by the registry.
func wrapPrimitive(v any) DataSerializablePrimitive {
	switch x := v.(type) {
	case bool:
		return boolCodec.wrap(x)
	case int8:
		return int8Codec.wrap(x)
	case uint16:
		return charCodec.wrap(x)
	case int16:
		return int16Codec.wrap(x)
	case int32:
		return int32Codec.wrap(x)
	case int64:
		return int64Codec.wrap(x)
	case int:
		return int64Codec.wrap(int64(x))
	case float32:
		return float32Codec.wrap(x)
	case float64:
		return float64Codec.wrap(x)
	case time.Time:
		return dateCodec.wrap(x)
	case []byte:
		return bytesCodec.wrap(x)
	case []bool:
		return boolArrayCodec.wrap(x)
	case []uint16:
		return charArrayCodec.wrap(x)
	case []int16:
		return int16ArrayCodec.wrap(x)
	case []int32:
		return int32ArrayCodec.wrap(x)
	case []int64:
		return int64ArrayCodec.wrap(x)
	case []float32:
		return floatArrayCodec.wrap(x)
	case []float64:
		return doubleArrCodec.wrap(x)
	case []string:
		return stringArrCodec.wrap(x)
	case [][]byte:
		return byteArraysCodec.wrap(x)
	default:
		return nil
	}
}

// Undefined is the query engine's UNDEFINED value. It is an internal type
// bound under its fixed id.
type Undefined struct{}

func (Undefined) DSFID() int32 {
	return FixedIDCacheableUndefined
}

func (Undefined) ToData(*ByteBuffer) error {
	return nil
}

func (Undefined) FromData(*ByteBuffer) error {
	return nil
}
