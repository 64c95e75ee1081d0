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
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterExactBytes(t *testing.T) {
	r := newTestCache(t).Registry()
	data := writeTestPdx(t, r, "T", func(w PdxWriter) error {
		w.WriteInt("a", 1).WriteString("s", "hi").WriteBoolean("b", true)
		return w.Err()
	})
	require.Equal(t, []byte{
		0x5D, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01, 0x2A, 0x00, 0x02, 0x68, 0x69, 0x01,
	}, data)

	pt, err := r.Types().Type(1)
	require.NoError(t, err)
	require.Equal(t, "PdxType[T id=1](a:INT, s:STRING, b:BOOLEAN)", pt.String())
}

func TestWriterOffsetTable(t *testing.T) {
	r := newTestCache(t).Registry()
	data := writeTestPdx(t, r, "T", func(w PdxWriter) error {
		w.WriteString("s1", "x").WriteInt("n", 7).WriteString("s2", "yz")
		return w.Err()
	})
	_, payload := splitPdx(t, data)
	require.Len(t, payload, 14)
	require.Equal(t, byte(0x08), payload[13], "offset of s2")

	pr := readTestPdx(t, r, data)
	require.Equal(t, "x", pr.ReadString("s1"))
	require.Equal(t, int32(7), pr.ReadInt("n"))
	require.Equal(t, "yz", pr.ReadString("s2"))
	require.NoError(t, pr.Err())
}

func TestOffsetLayout(t *testing.T) {
	cases := []struct {
		body, count  int
		size, length int
	}{
		{10, 0, 1, 10},
		{254, 1, 1, 255},
		{255, 1, 2, 257},
		{65531, 2, 2, 65535},
		{65532, 2, 4, 65540},
	}
	for _, c := range cases {
		size, length := offsetLayout(c.body, c.count)
		require.Equal(t, c.size, size, "body=%d count=%d", c.body, c.count)
		require.Equal(t, c.length, length, "body=%d count=%d", c.body, c.count)
	}

	require.Equal(t, 1, offsetSizeFor(255))
	require.Equal(t, 2, offsetSizeFor(256))
	require.Equal(t, 2, offsetSizeFor(0xFFFF))
	require.Equal(t, 4, offsetSizeFor(0x10000))
}

func TestWriterWideOffsets(t *testing.T) {
	r := newTestCache(t).Registry()
	long := strings.Repeat("a", 300)
	data := writeTestPdx(t, r, "Wide", func(w PdxWriter) error {
		w.WriteString("s1", long).WriteString("s2", "b")
		return w.Err()
	})
	_, payload := splitPdx(t, data)
	require.Len(t, payload, 309)
	require.Equal(t, []byte{0x01, 0x2F}, payload[307:])

	pr := readTestPdx(t, r, data)
	require.Equal(t, long, pr.ReadString("s1"))
	require.Equal(t, "b", pr.ReadString("s2"))
	require.NoError(t, pr.Err())
}

func TestWriterWidestOffsets(t *testing.T) {
	r := newTestCache(t).Registry()
	blob := bytes.Repeat([]byte{7}, 70000)
	data := writeTestPdx(t, r, "Widest", func(w PdxWriter) error {
		w.WriteByteArray("blob", blob).WriteString("z", "z").WriteLong("n", 9)
		return w.Err()
	})
	_, payload := splitPdx(t, data)
	// 5 + 70000 blob bytes, 4 string bytes, 8 long bytes, one 4-byte entry
	require.Len(t, payload, 70021)
	require.Equal(t, uint32(70005), binary.BigEndian.Uint32(payload[70017:]))

	pr := readTestPdx(t, r, data)
	require.Equal(t, blob, pr.ReadByteArray("blob"))
	require.Equal(t, "z", pr.ReadString("z"))
	require.Equal(t, int64(9), pr.ReadLong("n"))
	require.NoError(t, pr.Err())
}

func TestWriterErrors(t *testing.T) {
	r := newTestCache(t).Registry()
	write := func(toData func(PdxWriter) error) error {
		return r.serializePdx(NewOutputBuffer(0), nil, "E", toData)
	}

	err := write(func(w PdxWriter) error {
		return w.MarkIdentityField("x").WriteInt("x", 1).Err()
	})
	require.EqualError(t, err, "field x must be written before it is marked as identity field")
	require.Equal(t, ErrKindInvalidState, KindOf(err))

	err = write(func(w PdxWriter) error {
		w.WriteInt("a", 1)
		require.Error(t, w.WriteUnreadFields(nil))
		return w.Err()
	})
	require.EqualError(t, err, "WriteUnreadFields must be called before any other fields are written")

	err = write(func(w PdxWriter) error {
		return w.WriteInt("a", 1).WriteLong("a", 2).WriteString("b", "ignored").Err()
	})
	require.EqualError(t, err, "Field: a is already added to PdxWriter")

	err = write(func(w PdxWriter) error {
		return w.WriteField("a", nil).Err()
	})
	require.Equal(t, ErrKindInvalidState, KindOf(err))

	require.Empty(t, r.Types().Types(), "failed writes define no type")
}

func TestWriterReusesType(t *testing.T) {
	c := newTestCache(t)
	order := &testOrder{ID: 7, Name: "first", Lines: []string{"a", "b"}}
	first, err := c.Serialize(order)
	require.NoError(t, err)
	order.Name = "second"
	second, err := c.Serialize(order)
	require.NoError(t, err)

	id1, _ := splitPdx(t, first)
	id2, _ := splitPdx(t, second)
	require.Equal(t, id1, id2)
	require.Len(t, c.TypeRegistry().Types(), 1)

	pt, err := c.TypeRegistry().Type(id1)
	require.NoError(t, err)
	require.True(t, pt.Field("id").Identity)
	require.False(t, pt.Field("name").Identity)
	require.Same(t, pt, c.TypeRegistry().LocalType(orderClass))
}
