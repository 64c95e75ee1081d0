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

// writeArray writes a length-prefixed array; a nil slice is the null array.
func writeArray[T any](b *ByteBuffer, v []T, elem func(*ByteBuffer, T)) {
	if v == nil {
		b.WriteArrayLen(-1)
		return
	}
	b.WriteArrayLen(int32(len(v)))
	for _, x := range v {
		elem(b, x)
	}
}

// readArray is the inverse of writeArray. minSize is the smallest encoded
// element width, used to reject lengths the input cannot hold.
func readArray[T any](b *ByteBuffer, err *Error, minSize int, elem func(*ByteBuffer, *Error) T) []T {
	n := b.ReadArrayLen(err)
	if n < 0 || err.HasError() {
		return nil
	}
	if int(n)*minSize > b.Remaining() {
		err.SetError(BufferOutOfBoundError(b.readerIndex, int(n)*minSize, b.writerIndex))
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = elem(b, err)
	}
	if err.HasError() {
		return nil
	}
	return out
}

// WriteDate writes t as milliseconds since the epoch. The zero time is
// written as -1, the null date.
func (b *ByteBuffer) WriteDate(t time.Time) {
	if t.IsZero() {
		b.WriteInt64(-1)
		return
	}
	b.WriteInt64(t.UnixMilli())
}

// ReadDate reads a date written by WriteDate, in UTC.
func (b *ByteBuffer) ReadDate(err *Error) time.Time {
	ms := b.ReadInt64(err)
	if ms == -1 || err.HasError() {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (b *ByteBuffer) WriteBoolArray(v []bool)       { writeArray(b, v, (*ByteBuffer).WriteBool) }
func (b *ByteBuffer) WriteCharArray(v []uint16)     { writeArray(b, v, (*ByteBuffer).WriteUint16) }
func (b *ByteBuffer) WriteInt16Array(v []int16)     { writeArray(b, v, (*ByteBuffer).WriteInt16) }
func (b *ByteBuffer) WriteInt32Array(v []int32)     { writeArray(b, v, (*ByteBuffer).WriteInt32) }
func (b *ByteBuffer) WriteInt64Array(v []int64)     { writeArray(b, v, (*ByteBuffer).WriteInt64) }
func (b *ByteBuffer) WriteFloat32Array(v []float32) { writeArray(b, v, (*ByteBuffer).WriteFloat32) }
func (b *ByteBuffer) WriteFloat64Array(v []float64) { writeArray(b, v, (*ByteBuffer).WriteFloat64) }
func (b *ByteBuffer) WriteStringArray(v []string)   { writeArray(b, v, (*ByteBuffer).WriteString) }
func (b *ByteBuffer) WriteByteArrays(v [][]byte)    { writeArray(b, v, (*ByteBuffer).WriteBytes) }

func (b *ByteBuffer) ReadBoolArray(err *Error) []bool {
	return readArray(b, err, 1, (*ByteBuffer).ReadBool)
}

func (b *ByteBuffer) ReadCharArray(err *Error) []uint16 {
	return readArray(b, err, 2, (*ByteBuffer).ReadUint16)
}

func (b *ByteBuffer) ReadInt16Array(err *Error) []int16 {
	return readArray(b, err, 2, (*ByteBuffer).ReadInt16)
}

func (b *ByteBuffer) ReadInt32Array(err *Error) []int32 {
	return readArray(b, err, 4, (*ByteBuffer).ReadInt32)
}

func (b *ByteBuffer) ReadInt64Array(err *Error) []int64 {
	return readArray(b, err, 8, (*ByteBuffer).ReadInt64)
}

func (b *ByteBuffer) ReadFloat32Array(err *Error) []float32 {
	return readArray(b, err, 4, (*ByteBuffer).ReadFloat32)
}

func (b *ByteBuffer) ReadFloat64Array(err *Error) []float64 {
	return readArray(b, err, 8, (*ByteBuffer).ReadFloat64)
}

func (b *ByteBuffer) ReadStringArray(err *Error) []string {
	return readArray(b, err, 1, (*ByteBuffer).ReadString)
}

func (b *ByteBuffer) ReadByteArrays(err *Error) [][]byte {
	return readArray(b, err, 1, (*ByteBuffer).ReadBytes)
}
