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

// PdxReader gives random access to the fields of one PDX payload. Reading
// a field the payload does not have returns the kind's zero value; reading
// a field under another kind than it was written with is an error reported
// by Err.
type PdxReader interface {
	ReadBoolean(name string) bool
	// ReadInt8 reads a BYTE field.
	ReadInt8(name string) int8
	ReadChar(name string) uint16
	ReadShort(name string) int16
	ReadInt(name string) int32
	ReadLong(name string) int64
	ReadFloat(name string) float32
	ReadDouble(name string) float64
	ReadDate(name string) time.Time
	ReadString(name string) string
	ReadObject(name string) any
	ReadBooleanArray(name string) []bool
	ReadCharArray(name string) []uint16
	ReadByteArray(name string) []byte
	ReadShortArray(name string) []int16
	ReadIntArray(name string) []int32
	ReadLongArray(name string) []int64
	ReadFloatArray(name string) []float32
	ReadDoubleArray(name string) []float64
	ReadStringArray(name string) []string
	ReadObjectArray(name string) []any
	ReadArrayOfByteArrays(name string) [][]byte
	// ReadField reads a field under whatever kind it has, nil if absent.
	ReadField(name string) FieldValue
	HasField(name string) bool
	IsIdentityField(name string) bool
	// ReadUnreadFields returns the fields not read so far, or nil. Only
	// readers that track reads return data.
	ReadUnreadFields() *UnreadData
	ClassName() string
	Err() error
}

// payloadLayout splits a payload of lengthWithOffsets bytes into field data
// and offset table.
func payloadLayout(t *PdxType, lengthWithOffsets int) (length, offsetSize int, err error) {
	offsetSize = offsetSizeFor(lengthWithOffsets)
	length = lengthWithOffsets - t.OffsetsCount()*offsetSize
	if length < 0 {
		return 0, 0, InvalidStateErrorf("pdx payload of %d bytes cannot hold the %d offsets of %s",
			lengthWithOffsets, t.OffsetsCount(), t.ClassName())
	}
	return length, offsetSize, nil
}

type pdxReader struct {
	registry   *SerializationRegistry
	ptype      *PdxType
	local      *PdxType
	l2r        FieldMap
	data       []byte
	offsets    []byte
	offsetSize int
	buf        *ByteBuffer
	visit      func(index int)
	err        Error
}

// newPdxReader reads payload, the field data and offset table written for
// remote. local, when not nil, is this process's version of the class and
// is used to find local fields in the remote layout.
func newPdxReader(registry *SerializationRegistry, remote, local *PdxType, payload []byte) *pdxReader {
	r := &pdxReader{registry: registry, ptype: remote, local: local}
	length, offsetSize, err := payloadLayout(remote, len(payload))
	if err != nil {
		r.err.SetError(err)
		r.buf = NewByteBuffer(nil)
		return r
	}
	r.data = payload[:length]
	r.offsets = payload[length:]
	r.offsetSize = offsetSize
	r.buf = NewByteBuffer(r.data)
	if local != nil && local != remote {
		r.l2r = local.LocalToRemote(remote)
	}
	return r
}

// lookup finds the remote field for name, going through the local to remote
// map when a distinct local type is known.
func (r *pdxReader) lookup(name string) *PdxFieldType {
	if r.l2r != nil {
		if lf := r.local.Field(name); lf != nil {
			m, _ := r.l2r.Get(int(lf.SequenceID))
			switch m.Kind {
			case Identical:
				return r.ptype.FieldAt(int(lf.SequenceID))
			case RemoteIndex:
				return r.ptype.FieldAt(m.Index)
			case MissingRemotely:
				return nil
			}
		}
	}
	return r.ptype.Field(name)
}

// position returns where f's bytes start in the field data.
func (r *pdxReader) position(f *PdxFieldType) int {
	pos := r.ptype.FieldPosition(f, r.offsets, r.offsetSize, len(r.data))
	if pos < 0 || pos > len(r.data) {
		r.err.SetError(InvalidStateErrorf("field %s of %s is at %d outside %d bytes of field data",
			f.Name, r.ptype.ClassName(), pos, len(r.data)))
		return -1
	}
	return pos
}

func (r *pdxReader) readAt(f *PdxFieldType) FieldValue {
	if r.visit != nil {
		r.visit(int(f.SequenceID))
	}
	pos := r.position(f)
	if pos < 0 {
		return nil
	}
	r.buf.SetReaderIndex(pos)
	return r.registry.readFieldValue(r.buf, f.Kind, &r.err)
}

func (r *pdxReader) read(name string, kind FieldKind) FieldValue {
	if r.err.HasError() {
		return nil
	}
	f := r.lookup(name)
	if f == nil {
		return nil
	}
	if f.Kind != kind {
		r.err.SetError(FieldTypeMismatchError(name, f.Kind, kind))
		return nil
	}
	return r.readAt(f)
}

func (r *pdxReader) ReadBoolean(name string) bool {
	v, _ := r.read(name, BOOLEAN).(BoolValue)
	return bool(v)
}

func (r *pdxReader) ReadInt8(name string) int8 {
	v, _ := r.read(name, BYTE).(ByteValue)
	return int8(v)
}

func (r *pdxReader) ReadChar(name string) uint16 {
	v, _ := r.read(name, CHAR).(CharValue)
	return uint16(v)
}

func (r *pdxReader) ReadShort(name string) int16 {
	v, _ := r.read(name, SHORT).(ShortValue)
	return int16(v)
}

func (r *pdxReader) ReadInt(name string) int32 {
	v, _ := r.read(name, INT).(IntValue)
	return int32(v)
}

func (r *pdxReader) ReadLong(name string) int64 {
	v, _ := r.read(name, LONG).(LongValue)
	return int64(v)
}

func (r *pdxReader) ReadFloat(name string) float32 {
	v, _ := r.read(name, FLOAT).(FloatValue)
	return float32(v)
}

func (r *pdxReader) ReadDouble(name string) float64 {
	v, _ := r.read(name, DOUBLE).(DoubleValue)
	return float64(v)
}

func (r *pdxReader) ReadDate(name string) time.Time {
	v, _ := r.read(name, DATE).(DateValue)
	return v.Time()
}

func (r *pdxReader) ReadString(name string) string {
	v, _ := r.read(name, STRING).(StringValue)
	return string(v)
}

func (r *pdxReader) ReadObject(name string) any {
	v, _ := r.read(name, OBJECT).(ObjectValue)
	return v.V
}

func (r *pdxReader) ReadBooleanArray(name string) []bool {
	v, _ := r.read(name, BOOLEAN_ARRAY).(BoolArrayValue)
	return v
}

func (r *pdxReader) ReadCharArray(name string) []uint16 {
	v, _ := r.read(name, CHAR_ARRAY).(CharArrayValue)
	return v
}

func (r *pdxReader) ReadByteArray(name string) []byte {
	v, _ := r.read(name, BYTE_ARRAY).(ByteArrayValue)
	return v
}

func (r *pdxReader) ReadShortArray(name string) []int16 {
	v, _ := r.read(name, SHORT_ARRAY).(ShortArrayValue)
	return v
}

func (r *pdxReader) ReadIntArray(name string) []int32 {
	v, _ := r.read(name, INT_ARRAY).(IntArrayValue)
	return v
}

func (r *pdxReader) ReadLongArray(name string) []int64 {
	v, _ := r.read(name, LONG_ARRAY).(LongArrayValue)
	return v
}

func (r *pdxReader) ReadFloatArray(name string) []float32 {
	v, _ := r.read(name, FLOAT_ARRAY).(FloatArrayValue)
	return v
}

func (r *pdxReader) ReadDoubleArray(name string) []float64 {
	v, _ := r.read(name, DOUBLE_ARRAY).(DoubleArrayValue)
	return v
}

func (r *pdxReader) ReadStringArray(name string) []string {
	v, _ := r.read(name, STRING_ARRAY).(StringArrayValue)
	return v
}

func (r *pdxReader) ReadObjectArray(name string) []any {
	v, _ := r.read(name, OBJECT_ARRAY).(ObjectArrayValue)
	return v
}

func (r *pdxReader) ReadArrayOfByteArrays(name string) [][]byte {
	v, _ := r.read(name, ARRAY_OF_BYTE_ARRAYS).(ByteArraysValue)
	return v
}

func (r *pdxReader) ReadField(name string) FieldValue {
	if r.err.HasError() {
		return nil
	}
	f := r.lookup(name)
	if f == nil {
		return nil
	}
	return r.readAt(f)
}

func (r *pdxReader) HasField(name string) bool {
	return r.ptype.Field(name) != nil
}

func (r *pdxReader) IsIdentityField(name string) bool {
	f := r.ptype.Field(name)
	return f != nil && f.Identity
}

func (r *pdxReader) ReadUnreadFields() *UnreadData {
	return nil
}

func (r *pdxReader) ClassName() string {
	return r.ptype.ClassName()
}

func (r *pdxReader) Err() error {
	return r.err.CheckError()
}

// trackingReader records which fields were read so the rest can be kept as
// UnreadData.
type trackingReader struct {
	*pdxReader
	visited []bool
}

func newTrackingReader(r *pdxReader) *trackingReader {
	t := &trackingReader{pdxReader: r, visited: make([]bool, r.ptype.NumFields())}
	r.visit = t.markRead
	return t
}

func (t *trackingReader) markRead(index int) {
	t.visited[index] = true
}

// ReadUnreadFields returns the fields not read so far, nil when every field
// was read or the payload could not be read.
func (t *trackingReader) ReadUnreadFields() *UnreadData {
	if t.err.HasError() {
		return nil
	}
	return captureUnreadData(t.pdxReader, t.visited)
}
