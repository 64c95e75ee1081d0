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
	"encoding/binary"
	"math"
)

// ByteBuffer is the DataOutput/DataInput of the PDX wire format. All
// multi-byte values are big-endian.
type ByteBuffer struct {
	writerIndex int
	readerIndex int
	data        []byte
}

func NewByteBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{data: data, writerIndex: len(data)}
}

// NewOutputBuffer returns an empty buffer with room for capacity bytes.
func NewOutputBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{data: make([]byte, 0, capacity)}
}

func (b *ByteBuffer) grow(n int) {
	l := b.writerIndex
	if l+n <= len(b.data) {
		return
	}
	if l+n <= cap(b.data) {
		b.data = b.data[:cap(b.data)]
	} else {
		newBuf := make([]byte, 2*(l+n))
		copy(newBuf, b.data)
		b.data = newBuf
	}
}

// ============================================================================
// Write
// ============================================================================

func (b *ByteBuffer) WriteBool(value bool) {
	b.grow(1)
	if value {
		b.data[b.writerIndex] = 1
	} else {
		b.data[b.writerIndex] = 0
	}
	b.writerIndex++
}

func (b *ByteBuffer) WriteByte_(value byte) {
	b.grow(1)
	b.data[b.writerIndex] = value
	b.writerIndex++
}

func (b *ByteBuffer) WriteInt8(value int8) {
	b.WriteByte_(byte(value))
}

func (b *ByteBuffer) WriteUint16(value uint16) {
	b.grow(2)
	binary.BigEndian.PutUint16(b.data[b.writerIndex:], value)
	b.writerIndex += 2
}

func (b *ByteBuffer) WriteInt16(value int16) {
	b.WriteUint16(uint16(value))
}

func (b *ByteBuffer) WriteInt32(value int32) {
	b.grow(4)
	binary.BigEndian.PutUint32(b.data[b.writerIndex:], uint32(value))
	b.writerIndex += 4
}

func (b *ByteBuffer) WriteInt64(value int64) {
	b.grow(8)
	binary.BigEndian.PutUint64(b.data[b.writerIndex:], uint64(value))
	b.writerIndex += 8
}

func (b *ByteBuffer) WriteFloat32(value float32) {
	b.WriteInt32(int32(math.Float32bits(value)))
}

func (b *ByteBuffer) WriteFloat64(value float64) {
	b.WriteInt64(int64(math.Float64bits(value)))
}

func (b *ByteBuffer) WriteBinary(p []byte) {
	b.grow(len(p))
	copy(b.data[b.writerIndex:], p)
	b.writerIndex += len(p)
}

// WriteArrayLen writes an array length: -1 (null) as 0xFF, up to 252 in one
// byte, up to 0xFFFF as 0xFE plus uint16, otherwise 0xFD plus int32.
func (b *ByteBuffer) WriteArrayLen(n int32) {
	switch {
	case n == -1:
		b.WriteByte_(0xFF)
	case n >= 0 && n <= 252:
		b.WriteByte_(byte(n))
	case n >= 0 && n <= 0xFFFF:
		b.WriteByte_(0xFE)
		b.WriteUint16(uint16(n))
	default:
		b.WriteByte_(0xFD)
		b.WriteInt32(n)
	}
}

// WriteBytes writes a length-prefixed byte array; nil is written as null.
func (b *ByteBuffer) WriteBytes(p []byte) {
	if p == nil {
		b.WriteArrayLen(-1)
		return
	}
	b.WriteArrayLen(int32(len(p)))
	b.WriteBinary(p)
}

// Reservation is a region of the output reserved for a value that is only
// known later, such as a length prefix.
type Reservation struct {
	start int
	width int
}

// Start returns the buffer index of the reserved region.
func (r Reservation) Start() int {
	return r.start
}

// Reserve skips width zeroed bytes and returns a handle to fill them later.
func (b *ByteBuffer) Reserve(width int) Reservation {
	b.grow(width)
	r := Reservation{start: b.writerIndex, width: width}
	for i := 0; i < width; i++ {
		b.data[b.writerIndex+i] = 0
	}
	b.writerIndex += width
	return r
}

// PatchInt32 fills a 4-byte reservation.
func (b *ByteBuffer) PatchInt32(r Reservation, value int32) {
	if r.width != 4 {
		panic("pdx: PatchInt32 on a reservation that is not 4 bytes wide")
	}
	binary.BigEndian.PutUint32(b.data[r.start:], uint32(value))
}

// ============================================================================
// Read
// ============================================================================

// ReadBool reads a bool and sets error on bounds violation
func (b *ByteBuffer) ReadBool(err *Error) bool {
	return b.ReadByte(err) != 0
}

// ReadByte reads a byte and sets error on bounds violation
func (b *ByteBuffer) ReadByte(err *Error) byte {
	if b.readerIndex+1 > b.writerIndex {
		err.SetError(BufferOutOfBoundError(b.readerIndex, 1, b.writerIndex))
		return 0
	}
	v := b.data[b.readerIndex]
	b.readerIndex++
	return v
}

// ReadInt8 reads an int8 and sets error on bounds violation
func (b *ByteBuffer) ReadInt8(err *Error) int8 {
	return int8(b.ReadByte(err))
}

// ReadUint16 reads a uint16 and sets error on bounds violation
func (b *ByteBuffer) ReadUint16(err *Error) uint16 {
	if b.readerIndex+2 > b.writerIndex {
		err.SetError(BufferOutOfBoundError(b.readerIndex, 2, b.writerIndex))
		return 0
	}
	v := binary.BigEndian.Uint16(b.data[b.readerIndex:])
	b.readerIndex += 2
	return v
}

// ReadInt16 reads an int16 and sets error on bounds violation
func (b *ByteBuffer) ReadInt16(err *Error) int16 {
	return int16(b.ReadUint16(err))
}

// ReadUint32 reads a uint32 and sets error on bounds violation
func (b *ByteBuffer) ReadUint32(err *Error) uint32 {
	if b.readerIndex+4 > b.writerIndex {
		err.SetError(BufferOutOfBoundError(b.readerIndex, 4, b.writerIndex))
		return 0
	}
	v := binary.BigEndian.Uint32(b.data[b.readerIndex:])
	b.readerIndex += 4
	return v
}

// ReadInt32 reads an int32 and sets error on bounds violation
func (b *ByteBuffer) ReadInt32(err *Error) int32 {
	return int32(b.ReadUint32(err))
}

// ReadUint64 reads a uint64 and sets error on bounds violation
func (b *ByteBuffer) ReadUint64(err *Error) uint64 {
	if b.readerIndex+8 > b.writerIndex {
		err.SetError(BufferOutOfBoundError(b.readerIndex, 8, b.writerIndex))
		return 0
	}
	v := binary.BigEndian.Uint64(b.data[b.readerIndex:])
	b.readerIndex += 8
	return v
}

// ReadInt64 reads an int64 and sets error on bounds violation
func (b *ByteBuffer) ReadInt64(err *Error) int64 {
	return int64(b.ReadUint64(err))
}

func (b *ByteBuffer) ReadFloat32(err *Error) float32 {
	return math.Float32frombits(b.ReadUint32(err))
}

func (b *ByteBuffer) ReadFloat64(err *Error) float64 {
	return math.Float64frombits(b.ReadUint64(err))
}

// ReadBinary returns the next length bytes without copying.
func (b *ByteBuffer) ReadBinary(length int, err *Error) []byte {
	if length < 0 || b.readerIndex+length > b.writerIndex {
		err.SetError(BufferOutOfBoundError(b.readerIndex, length, b.writerIndex))
		return nil
	}
	v := b.data[b.readerIndex : b.readerIndex+length]
	b.readerIndex += length
	return v
}

// ReadArrayLen is the inverse of WriteArrayLen; -1 means null.
func (b *ByteBuffer) ReadArrayLen(err *Error) int32 {
	code := b.ReadByte(err)
	switch code {
	case 0xFF:
		return -1
	case 0xFE:
		return int32(b.ReadUint16(err))
	case 0xFD:
		return b.ReadInt32(err)
	default:
		return int32(code)
	}
}

// ReadBytes reads a length-prefixed byte array into a fresh slice.
func (b *ByteBuffer) ReadBytes(err *Error) []byte {
	n := b.ReadArrayLen(err)
	if n < 0 {
		return nil
	}
	raw := b.ReadBinary(int(n), err)
	if len(raw) != int(n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, raw)
	return out
}

// ============================================================================
// Cursor
// ============================================================================

func (b *ByteBuffer) WriterIndex() int {
	return b.writerIndex
}

func (b *ByteBuffer) SetWriterIndex(index int) {
	b.writerIndex = index
}

func (b *ByteBuffer) ReaderIndex() int {
	return b.readerIndex
}

func (b *ByteBuffer) SetReaderIndex(index int) {
	b.readerIndex = index
}

// Remaining returns the number of unread bytes.
func (b *ByteBuffer) Remaining() int {
	return b.writerIndex - b.readerIndex
}

// Bytes returns all written bytes from the buffer (from 0 to writerIndex).
func (b *ByteBuffer) Bytes() []byte {
	return b.data[:b.writerIndex]
}

func (b *ByteBuffer) Reset() {
	b.readerIndex = 0
	b.writerIndex = 0
	b.data = b.data[:0]
}
