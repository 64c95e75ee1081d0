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
	"unicode/utf16"
)

const maxUTFLength = 0xFFFF

// WriteString writes s with its DS code. Strings whose worst-case modified
// UTF-8 size fits a uint16 length use CacheableString, longer ones are
// written as UTF-16 with an int32 length.
func (b *ByteBuffer) WriteString(s string) {
	units := utf16.Encode([]rune(s))
	if len(units)*3 <= maxUTFLength {
		b.WriteByte_(byte(CacheableString))
		b.writeModifiedUTF8(units)
		return
	}
	b.WriteByte_(byte(CacheableStringHuge))
	b.WriteInt32(int32(len(units)))
	for _, u := range units {
		b.WriteUint16(u)
	}
}

// WriteNullString writes the null string marker.
func (b *ByteBuffer) WriteNullString() {
	b.WriteByte_(byte(CacheableNullString))
}

// WriteUTF writes s as modified UTF-8 with a uint16 length and no DS code.
func (b *ByteBuffer) WriteUTF(s string) {
	b.writeModifiedUTF8(utf16.Encode([]rune(s)))
}

func (b *ByteBuffer) writeModifiedUTF8(units []uint16) {
	n := 0
	for _, u := range units {
		n += modifiedUTF8Len(u)
	}
	if n > maxUTFLength {
		n = maxUTFLength
	}
	b.WriteUint16(uint16(n))
	b.grow(n)
	end := b.writerIndex + n
	for _, u := range units {
		if b.writerIndex+modifiedUTF8Len(u) > end {
			break
		}
		switch {
		case u != 0 && u < 0x80:
			b.data[b.writerIndex] = byte(u)
			b.writerIndex++
		case u < 0x800:
			b.data[b.writerIndex] = byte(0xC0 | (u >> 6 & 0x1F))
			b.data[b.writerIndex+1] = byte(0x80 | (u & 0x3F))
			b.writerIndex += 2
		default:
			b.data[b.writerIndex] = byte(0xE0 | (u >> 12 & 0x0F))
			b.data[b.writerIndex+1] = byte(0x80 | (u >> 6 & 0x3F))
			b.data[b.writerIndex+2] = byte(0x80 | (u & 0x3F))
			b.writerIndex += 3
		}
	}
	// a truncated tail leaves zero padding so the declared length holds
	for b.writerIndex < end {
		b.data[b.writerIndex] = 0
		b.writerIndex++
	}
}

// modifiedUTF8Len is the encoded width of one UTF-16 unit. NUL takes two
// bytes so the encoding never contains a zero byte.
func modifiedUTF8Len(u uint16) int {
	switch {
	case u != 0 && u < 0x80:
		return 1
	case u < 0x800:
		return 2
	default:
		return 3
	}
}

// ReadString reads a DS-coded string. The null string reads as "".
func (b *ByteBuffer) ReadString(err *Error) string {
	code := DSCode(b.ReadByte(err))
	return b.readStringBody(code, err)
}

func (b *ByteBuffer) readStringBody(code DSCode, err *Error) string {
	switch code {
	case CacheableString:
		return b.ReadUTF(err)
	case CacheableASCIIString:
		n := int(b.ReadUint16(err))
		return string(b.ReadBinary(n, err))
	case CacheableASCIIStringHuge:
		n := int(b.ReadInt32(err))
		return string(b.ReadBinary(n, err))
	case CacheableStringHuge:
		n := int(b.ReadInt32(err))
		if n < 0 || n*2 > b.Remaining() {
			err.SetError(BufferOutOfBoundError(b.readerIndex, n*2, b.writerIndex))
			return ""
		}
		units := make([]uint16, n)
		for i := range units {
			units[i] = b.ReadUint16(err)
		}
		return string(utf16.Decode(units))
	case CacheableNullString:
		return ""
	default:
		err.SetError(InvalidStateErrorf("unexpected string code %d", code))
		return ""
	}
}

// ReadUTF reads modified UTF-8 with a uint16 length prefix.
func (b *ByteBuffer) ReadUTF(err *Error) string {
	n := int(b.ReadUint16(err))
	raw := b.ReadBinary(n, err)
	if len(raw) != n {
		return ""
	}
	ascii := true
	for _, c := range raw {
		if c >= 0x80 || c == 0 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(raw)
	}
	units := make([]uint16, 0, n)
	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c == 0:
			// zero padding of a truncated string
			i = len(raw)
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(raw):
			units = append(units, uint16(c&0x1F)<<6|uint16(raw[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(raw):
			units = append(units, uint16(c&0x0F)<<12|uint16(raw[i+1]&0x3F)<<6|uint16(raw[i+2]&0x3F))
			i += 3
		default:
			err.SetError(InvalidStateErrorf("malformed modified UTF-8 at byte %d", i))
			return ""
		}
	}
	return string(utf16.Decode(units))
}
