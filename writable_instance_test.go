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

	"github.com/stretchr/testify/require"
)

func TestWritableInstance(t *testing.T) {
	c := newTestCache(t, WithReadSerialized(true))
	inst, data := readSerializedOrder(t, c, &testOrder{ID: 5, Name: "before", Lines: []string{"x"}})
	typeID, _ := splitPdx(t, data)

	w := inst.CreateWriter()
	require.NoError(t, w.SetField("name", "after"))
	require.NoError(t, w.SetField("lines", nil))
	require.NoError(t, w.SetField("id", 6))

	err := w.SetField("id", int64(1))
	require.EqualError(t, err, "PdxInstance doesn't have field id or type of field not matched: field is INT, value is LONG")
	err = w.SetField("nope", 1)
	require.EqualError(t, err, "PdxInstance doesn't have field nope")

	name, err := inst.GetStringField("name")
	require.NoError(t, err)
	require.Equal(t, "before", name, "the source instance is unchanged")
	name, err = w.GetStringField("name")
	require.NoError(t, err)
	require.Equal(t, "after", name)

	snapshot := w.Snapshot()
	require.NoError(t, w.SetField("name", "later"))
	name, err = snapshot.GetStringField("name")
	require.NoError(t, err)
	require.Equal(t, "after", name)

	out, err := c.Serialize(w)
	require.NoError(t, err)
	outID, _ := splitPdx(t, out)
	require.Equal(t, typeID, outID)

	v, err := c.Deserialize(out)
	require.NoError(t, err)
	read := v.(*Instance)
	id, err := read.GetIntField("id")
	require.NoError(t, err)
	require.Equal(t, int32(6), id)
	name, err = read.GetStringField("name")
	require.NoError(t, err)
	require.Equal(t, "later", name)
	lines, err := read.GetStringArrayField("lines")
	require.NoError(t, err)
	require.Nil(t, lines)
	require.True(t, read.IsIdentityField("id"))
	require.True(t, read.Equal(w.Instance))
	require.True(t, deepEqual(w, read))
}

func TestWritableInstanceObjectField(t *testing.T) {
	c := newTestCache(t)
	inst, err := c.CreateInstanceFactory("com.example.Holder").WriteObject("o", nil).Create()
	require.NoError(t, err)

	w := inst.CreateWriter()
	require.NoError(t, w.SetField("o", []string{"any", "value"}))
	o, err := w.GetObjectField("o")
	require.NoError(t, err)
	require.Equal(t, []string{"any", "value"}, o)

	require.NoError(t, w.SetField("o", ObjectValue{V: int32(3)}))
	o, err = w.GetObjectField("o")
	require.NoError(t, err)
	require.Equal(t, int32(3), o)
}
