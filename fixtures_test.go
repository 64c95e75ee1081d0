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
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const (
	orderClass     = "com.example.Order"
	versionedClass = "com.example.Versioned"
)

type testOrder struct {
	ID      int32
	Name    string
	Lines   []string
	Total   float64
	Created time.Time
	Flags   []byte
}

func (o *testOrder) ClassName() string { return orderClass }

func (o *testOrder) ToData(w PdxWriter) error {
	w.WriteInt("id", o.ID).
		WriteString("name", o.Name).
		WriteStringArray("lines", o.Lines).
		WriteDouble("total", o.Total).
		WriteDate("created", o.Created).
		WriteByteArray("flags", o.Flags).
		MarkIdentityField("id")
	return w.Err()
}

func (o *testOrder) FromData(r PdxReader) error {
	o.ID = r.ReadInt("id")
	o.Name = r.ReadString("name")
	o.Lines = r.ReadStringArray("lines")
	o.Total = r.ReadDouble("total")
	o.Created = r.ReadDate("created")
	o.Flags = r.ReadByteArray("flags")
	return r.Err()
}

// versionOne and versionTwo are two versions of versionedClass: the second
// adds a fixed and a variable field.
type versionOne struct {
	ID   int32
	Name string
}

func (v *versionOne) ClassName() string { return versionedClass }

func (v *versionOne) ToData(w PdxWriter) error {
	w.WriteInt("id", v.ID).WriteString("name", v.Name)
	return w.Err()
}

func (v *versionOne) FromData(r PdxReader) error {
	v.ID = r.ReadInt("id")
	v.Name = r.ReadString("name")
	return r.Err()
}

type versionTwo struct {
	ID       int32
	Name     string
	Priority int32
	Notes    string
}

func (v *versionTwo) ClassName() string { return versionedClass }

func (v *versionTwo) ToData(w PdxWriter) error {
	w.WriteInt("id", v.ID).
		WriteString("name", v.Name).
		WriteInt("priority", v.Priority).
		WriteString("notes", v.Notes)
	return w.Err()
}

func (v *versionTwo) FromData(r PdxReader) error {
	v.ID = r.ReadInt("id")
	v.Name = r.ReadString("name")
	v.Priority = r.ReadInt("priority")
	v.Notes = r.ReadString("notes")
	return r.Err()
}

// testUserData is a DataSerializable bound by class id.
type testUserData struct {
	id    int32
	Value string
}

func (u *testUserData) ClassID() int32 { return u.id }

func (u *testUserData) ToData(buf *ByteBuffer) error {
	buf.WriteString(u.Value)
	return nil
}

func (u *testUserData) FromData(buf *ByteBuffer) error {
	var err Error
	u.Value = buf.ReadString(&err)
	return err.CheckError()
}

func newNullLogger() (*logrus.Logger, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func newTestCache(t *testing.T, opts ...Option) *Cache {
	logger, _ := newNullLogger()
	all := append([]Option{WithLogger(logger), WithUnreadDataSweepInterval(0)}, opts...)
	c := NewCache(all...)
	t.Cleanup(func() { c.Close() })
	return c
}

// writeTestPdx serializes the fields written by toData as className.
func writeTestPdx(t *testing.T, r *SerializationRegistry, className string, toData func(PdxWriter) error) []byte {
	t.Helper()
	buf := NewOutputBuffer(0)
	require.NoError(t, r.serializePdx(buf, nil, className, toData))
	return buf.Bytes()
}

// splitPdx returns the type id and payload of a serialized PDX value.
func splitPdx(t *testing.T, data []byte) (int32, []byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(data), 1+pdxHeaderSize)
	require.Equal(t, byte(PDX), data[0])
	length := int(binary.BigEndian.Uint32(data[1:5]))
	typeID := int32(binary.BigEndian.Uint32(data[5:9]))
	require.Equal(t, len(data)-1-pdxHeaderSize, length)
	return typeID, data[1+pdxHeaderSize:]
}

// readTestPdx returns a reader over a serialized PDX value.
func readTestPdx(t *testing.T, r *SerializationRegistry, data []byte) *pdxReader {
	t.Helper()
	typeID, payload := splitPdx(t, data)
	remote, err := r.Types().Type(typeID)
	require.NoError(t, err)
	return newPdxReader(r, remote, nil, payload)
}
