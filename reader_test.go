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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type allKinds struct {
	Bool    bool
	Byte    int8
	Char    uint16
	Short   int16
	Int     int32
	Long    int64
	Float   float32
	Double  float64
	Date    time.Time
	String  string
	Object  any
	Bools   []bool
	Chars   []uint16
	Bytes   []byte
	Shorts  []int16
	Ints    []int32
	Longs   []int64
	Floats  []float32
	Doubles []float64
	Strings []string
	Objects []any
	Blobs   [][]byte
}

func (a *allKinds) ClassName() string { return "com.example.AllKinds" }

func (a *allKinds) ToData(w PdxWriter) error {
	w.WriteBoolean("bool", a.Bool).
		WriteInt8("byte", a.Byte).
		WriteChar("char", a.Char).
		WriteShort("short", a.Short).
		WriteInt("int", a.Int).
		WriteLong("long", a.Long).
		WriteFloat("float", a.Float).
		WriteDouble("double", a.Double).
		WriteDate("date", a.Date).
		WriteString("string", a.String).
		WriteObject("object", a.Object).
		WriteBooleanArray("bools", a.Bools).
		WriteCharArray("chars", a.Chars).
		WriteByteArray("bytes", a.Bytes).
		WriteShortArray("shorts", a.Shorts).
		WriteIntArray("ints", a.Ints).
		WriteLongArray("longs", a.Longs).
		WriteFloatArray("floats", a.Floats).
		WriteDoubleArray("doubles", a.Doubles).
		WriteStringArray("strings", a.Strings).
		WriteObjectArray("objects", a.Objects).
		WriteArrayOfByteArrays("blobs", a.Blobs)
	return w.Err()
}

func (a *allKinds) FromData(r PdxReader) error {
	a.Bool = r.ReadBoolean("bool")
	a.Byte = r.ReadInt8("byte")
	a.Char = r.ReadChar("char")
	a.Short = r.ReadShort("short")
	a.Int = r.ReadInt("int")
	a.Long = r.ReadLong("long")
	a.Float = r.ReadFloat("float")
	a.Double = r.ReadDouble("double")
	a.Date = r.ReadDate("date")
	a.String = r.ReadString("string")
	a.Object = r.ReadObject("object")
	a.Bools = r.ReadBooleanArray("bools")
	a.Chars = r.ReadCharArray("chars")
	a.Bytes = r.ReadByteArray("bytes")
	a.Shorts = r.ReadShortArray("shorts")
	a.Ints = r.ReadIntArray("ints")
	a.Longs = r.ReadLongArray("longs")
	a.Floats = r.ReadFloatArray("floats")
	a.Doubles = r.ReadDoubleArray("doubles")
	a.Strings = r.ReadStringArray("strings")
	a.Objects = r.ReadObjectArray("objects")
	a.Blobs = r.ReadArrayOfByteArrays("blobs")
	return r.Err()
}

func TestReadAllKinds(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.RegisterPdxType("com.example.AllKinds", func() PdxSerializable { return &allKinds{} }))

	when := time.UnixMilli(1700000000123)
	in := &allKinds{
		Bool: true, Byte: -3, Char: 'Z', Short: -300, Int: 1 << 20, Long: -1 << 40,
		Float: 1.5, Double: -2.25, Date: when, String: "héllo", Object: int32(42),
		Bools: []bool{true, false}, Chars: []uint16{'a', 'b'}, Bytes: []byte{1, 2, 3},
		Shorts: []int16{-1, 2}, Ints: []int32{3, -4}, Longs: []int64{5, -6},
		Floats: []float32{0.5}, Doubles: []float64{0.25, 8}, Strings: []string{"x", ""},
		Objects: []any{"s", int64(9), nil}, Blobs: [][]byte{{1}, {}},
	}
	data, err := c.Serialize(in)
	require.NoError(t, err)
	v, err := c.Deserialize(data)
	require.NoError(t, err)
	out, ok := v.(*allKinds)
	require.True(t, ok, "got %T", v)

	require.True(t, when.Equal(out.Date))
	out.Date = in.Date
	require.Equal(t, in, out)
}

func TestReadMissingFieldIsZero(t *testing.T) {
	r := newTestCache(t).Registry()
	data := writeTestPdx(t, r, "T", func(w PdxWriter) error {
		return w.WriteInt("a", 5).Err()
	})
	pr := readTestPdx(t, r, data)
	require.Equal(t, "", pr.ReadString("missing"))
	require.Nil(t, pr.ReadIntArray("missing"))
	require.True(t, pr.ReadDate("missing").IsZero())
	require.Nil(t, pr.ReadField("missing"))
	require.Equal(t, int32(5), pr.ReadInt("a"))
	require.NoError(t, pr.Err())

	require.True(t, pr.HasField("a"))
	require.False(t, pr.HasField("missing"))
	require.False(t, pr.IsIdentityField("a"))
	require.Equal(t, "T", pr.ClassName())
	require.Nil(t, pr.ReadUnreadFields())
}

func TestReadKindMismatch(t *testing.T) {
	r := newTestCache(t).Registry()
	data := writeTestPdx(t, r, "T", func(w PdxWriter) error {
		return w.WriteInt("a", 5).WriteString("s", "x").Err()
	})
	pr := readTestPdx(t, r, data)
	require.Equal(t, int64(0), pr.ReadLong("a"))
	err := pr.Err()
	require.Equal(t, ErrKindFieldTypeMismatch, KindOf(err))
	require.EqualError(t, err, `field "a" is declared INT, got LONG`)

	// the first error sticks
	require.Equal(t, "", pr.ReadString("s"))
	require.Equal(t, ErrKindFieldTypeMismatch, KindOf(pr.Err()))
}

func TestReadField(t *testing.T) {
	r := newTestCache(t).Registry()
	data := writeTestPdx(t, r, "T", func(w PdxWriter) error {
		return w.WriteString("s", "v").WriteShort("n", 3).MarkIdentityField("n").Err()
	})
	pr := readTestPdx(t, r, data)
	require.Equal(t, StringValue("v"), pr.ReadField("s"))
	require.Equal(t, ShortValue(3), pr.ReadField("n"))
	require.True(t, pr.IsIdentityField("n"))
}

func TestReadTruncatedPayload(t *testing.T) {
	r := newTestCache(t).Registry()
	data := writeTestPdx(t, r, "T", func(w PdxWriter) error {
		return w.WriteString("s1", "x").WriteString("s2", "y").Err()
	})
	typeID, _ := splitPdx(t, data)
	remote, err := r.Types().Type(typeID)
	require.NoError(t, err)

	pr := newPdxReader(r, remote, nil, nil)
	require.Equal(t, "", pr.ReadString("s1"))
	require.Equal(t, ErrKindInvalidState, KindOf(pr.Err()))
}

func TestTrackingReader(t *testing.T) {
	r := newTestCache(t).Registry()
	data := writeTestPdx(t, r, "T", func(w PdxWriter) error {
		return w.WriteInt("a", 1).WriteString("b", "bee").WriteLong("c", 3).Err()
	})
	tr := newTrackingReader(readTestPdx(t, r, data))
	require.Equal(t, int32(1), tr.ReadInt("a"))
	ud := tr.ReadUnreadFields()
	require.NotNil(t, ud)
	require.Equal(t, []string{"b", "c"}, ud.FieldNames())
	require.Equal(t, []byte{byte(CacheableString), 0, 3, 'b', 'e', 'e'}, ud.Raw("b"))
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 3}, ud.Raw("c"))

	tr.ReadString("b")
	tr.ReadLong("c")
	require.Nil(t, tr.ReadUnreadFields())
}
