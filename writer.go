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

// PdxWriter receives the fields of one object being serialized, in
// declaration order. Calls can be chained: after the first error every
// later call is ignored and Err reports that error.
type PdxWriter interface {
	WriteBoolean(name string, v bool) PdxWriter
	// WriteInt8 writes a BYTE field.
	WriteInt8(name string, v int8) PdxWriter
	WriteChar(name string, v uint16) PdxWriter
	WriteShort(name string, v int16) PdxWriter
	WriteInt(name string, v int32) PdxWriter
	WriteLong(name string, v int64) PdxWriter
	WriteFloat(name string, v float32) PdxWriter
	WriteDouble(name string, v float64) PdxWriter
	WriteDate(name string, v time.Time) PdxWriter
	WriteString(name string, v string) PdxWriter
	WriteObject(name string, v any) PdxWriter
	WriteBooleanArray(name string, v []bool) PdxWriter
	WriteCharArray(name string, v []uint16) PdxWriter
	WriteByteArray(name string, v []byte) PdxWriter
	WriteShortArray(name string, v []int16) PdxWriter
	WriteIntArray(name string, v []int32) PdxWriter
	WriteLongArray(name string, v []int64) PdxWriter
	WriteFloatArray(name string, v []float32) PdxWriter
	WriteDoubleArray(name string, v []float64) PdxWriter
	WriteStringArray(name string, v []string) PdxWriter
	WriteObjectArray(name string, v []any) PdxWriter
	WriteArrayOfByteArrays(name string, v [][]byte) PdxWriter
	// WriteField writes v under the kind it carries.
	WriteField(name string, v FieldValue) PdxWriter
	// MarkIdentityField makes an already written field take part in
	// instance equality and hashing.
	MarkIdentityField(name string) PdxWriter
	// WriteUnreadFields attaches fields a reader did not consume so they are
	// written back unchanged. It must precede every field write.
	WriteUnreadFields(ud *UnreadData) error
	Err() error
}

// pdxWriter writes one PDX payload:
//
//	PDX code | int32 length | int32 type id | field data | offset table
//
// Length and type id are reserved up front and patched by complete, once
// the field data and the type are known.
type pdxWriter struct {
	registry *SerializationRegistry
	buf      *ByteBuffer
	ptype    *PdxType
	lenSlot  Reservation
	typeSlot Reservation
	start    int
	offsets  []int32
	unread   *UnreadData
	written  bool
	err      Error
}

func newPdxWriter(registry *SerializationRegistry, buf *ByteBuffer, className string) *pdxWriter {
	buf.WriteByte_(byte(PDX))
	w := &pdxWriter{
		registry: registry,
		buf:      buf,
		ptype:    NewPdxType(className),
	}
	w.lenSlot = buf.Reserve(4)
	w.typeSlot = buf.Reserve(4)
	w.start = buf.WriterIndex()
	return w
}

func (w *pdxWriter) addField(name string, kind FieldKind) *PdxFieldType {
	f, err := w.ptype.AddField(name, kind)
	if err != nil {
		w.err.SetError(err)
		return nil
	}
	w.written = true
	if f.IsVariable {
		w.offsets = append(w.offsets, int32(w.buf.WriterIndex()-w.start))
	}
	return f
}

func (w *pdxWriter) write(name string, v FieldValue) PdxWriter {
	if w.err.HasError() {
		return w
	}
	if v == nil {
		w.err.SetError(InvalidStateErrorf("field %s has no value", name))
		return w
	}
	if w.addField(name, v.Kind()) == nil {
		return w
	}
	w.err.SetError(w.registry.writeFieldValue(w.buf, v))
	return w
}

// appendRaw adds a field whose encoded bytes are already known.
func (w *pdxWriter) appendRaw(f *PdxFieldType, raw []byte, variable bool) {
	if w.ptype.Field(f.Name) != nil {
		// written again by the local code under the same name
		return
	}
	nf, err := w.ptype.AddField(f.Name, f.Kind)
	if err != nil {
		w.err.SetError(err)
		return
	}
	nf.Identity = f.Identity
	if variable {
		w.offsets = append(w.offsets, int32(w.buf.WriterIndex()-w.start))
	}
	w.buf.WriteBinary(raw)
}

func (w *pdxWriter) WriteBoolean(name string, v bool) PdxWriter {
	return w.write(name, BoolValue(v))
}

func (w *pdxWriter) WriteInt8(name string, v int8) PdxWriter {
	return w.write(name, ByteValue(v))
}

func (w *pdxWriter) WriteChar(name string, v uint16) PdxWriter {
	return w.write(name, CharValue(v))
}

func (w *pdxWriter) WriteShort(name string, v int16) PdxWriter {
	return w.write(name, ShortValue(v))
}

func (w *pdxWriter) WriteInt(name string, v int32) PdxWriter {
	return w.write(name, IntValue(v))
}

func (w *pdxWriter) WriteLong(name string, v int64) PdxWriter {
	return w.write(name, LongValue(v))
}

func (w *pdxWriter) WriteFloat(name string, v float32) PdxWriter {
	return w.write(name, FloatValue(v))
}

func (w *pdxWriter) WriteDouble(name string, v float64) PdxWriter {
	return w.write(name, DoubleValue(v))
}

func (w *pdxWriter) WriteDate(name string, v time.Time) PdxWriter {
	return w.write(name, DateValue(v))
}

func (w *pdxWriter) WriteString(name string, v string) PdxWriter {
	return w.write(name, StringValue(v))
}

func (w *pdxWriter) WriteObject(name string, v any) PdxWriter {
	return w.write(name, ObjectValue{V: v})
}

func (w *pdxWriter) WriteBooleanArray(name string, v []bool) PdxWriter {
	return w.write(name, BoolArrayValue(v))
}

func (w *pdxWriter) WriteCharArray(name string, v []uint16) PdxWriter {
	return w.write(name, CharArrayValue(v))
}

func (w *pdxWriter) WriteByteArray(name string, v []byte) PdxWriter {
	return w.write(name, ByteArrayValue(v))
}

func (w *pdxWriter) WriteShortArray(name string, v []int16) PdxWriter {
	return w.write(name, ShortArrayValue(v))
}

func (w *pdxWriter) WriteIntArray(name string, v []int32) PdxWriter {
	return w.write(name, IntArrayValue(v))
}

func (w *pdxWriter) WriteLongArray(name string, v []int64) PdxWriter {
	return w.write(name, LongArrayValue(v))
}

func (w *pdxWriter) WriteFloatArray(name string, v []float32) PdxWriter {
	return w.write(name, FloatArrayValue(v))
}

func (w *pdxWriter) WriteDoubleArray(name string, v []float64) PdxWriter {
	return w.write(name, DoubleArrayValue(v))
}

func (w *pdxWriter) WriteStringArray(name string, v []string) PdxWriter {
	return w.write(name, StringArrayValue(v))
}

func (w *pdxWriter) WriteObjectArray(name string, v []any) PdxWriter {
	return w.write(name, ObjectArrayValue(v))
}

func (w *pdxWriter) WriteArrayOfByteArrays(name string, v [][]byte) PdxWriter {
	return w.write(name, ByteArraysValue(v))
}

func (w *pdxWriter) WriteField(name string, v FieldValue) PdxWriter {
	return w.write(name, v)
}

func (w *pdxWriter) MarkIdentityField(name string) PdxWriter {
	if w.err.HasError() {
		return w
	}
	f := w.ptype.Field(name)
	if f == nil {
		w.err.SetError(InvalidStateErrorf("field %s must be written before it is marked as identity field", name))
		return w
	}
	f.Identity = true
	return w
}

func (w *pdxWriter) WriteUnreadFields(ud *UnreadData) error {
	if w.written {
		err := InvalidStateError("WriteUnreadFields must be called before any other fields are written")
		w.err.SetError(err)
		return err
	}
	w.unread = ud
	return nil
}

func (w *pdxWriter) Err() error {
	return w.err.CheckError()
}

// offsetLayout returns the offset table entry width for body bytes of field
// data and count entries, and the payload length including the table.
func offsetLayout(body, count int) (size, length int) {
	length = body + count
	switch {
	case length <= 0xFF:
		return 1, length
	case length+count <= 0xFFFF:
		return 2, length + count
	default:
		return 4, length + 3*count
	}
}

// offsetSizeFor is the reader side of offsetLayout.
func offsetSizeFor(lengthWithOffsets int) int {
	switch {
	case lengthWithOffsets <= 0xFF:
		return 1
	case lengthWithOffsets <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

// complete replays unread fields, resolves the type id and writes the
// offset table, then patches the header. It returns the registered type.
func (w *pdxWriter) complete() (*PdxType, error) {
	if w.unread != nil && w.err.Ok() {
		w.unread.replay(w)
	}
	if err := w.err.CheckError(); err != nil {
		return nil, err
	}
	t, err := w.registry.registerWrittenType(w.ptype)
	if err != nil {
		return nil, err
	}
	size, length := offsetLayout(w.buf.WriterIndex()-w.start, w.ptype.OffsetsCount())
	// the first variable field needs no entry
	for i := len(w.offsets) - 1; i > 0; i-- {
		switch size {
		case 1:
			w.buf.WriteByte_(byte(w.offsets[i]))
		case 2:
			w.buf.WriteUint16(uint16(w.offsets[i]))
		default:
			w.buf.WriteInt32(w.offsets[i])
		}
	}
	w.buf.PatchInt32(w.lenSlot, int32(length))
	w.buf.PatchInt32(w.typeSlot, t.TypeID())
	return t, nil
}
