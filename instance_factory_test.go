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

func TestInstanceFactory(t *testing.T) {
	c := newTestCache(t, WithReadSerialized(true))
	when := time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC)
	f := c.CreateInstanceFactory("com.example.Dynamic").
		WriteInt("id", 1).
		WriteString("name", "dyn").
		WriteDate("at", when).
		WriteBoolean("on", true).
		WriteInt8("b", -1).
		WriteChar("c", 'c').
		WriteShort("s", 2).
		WriteLong("l", 3).
		WriteFloat("f", 0.5).
		WriteDouble("d", 0.25).
		WriteIntArray("ints", []int32{1, 2}).
		WriteField("extra", StringValue("e")).
		MarkIdentityField("id")
	inst, err := f.Create()
	require.NoError(t, err)
	require.True(t, inst.Type().NoDomainClass())
	require.Zero(t, inst.Type().TypeID(), "ids are assigned on first serialization")

	id, err := inst.GetIntField("id")
	require.NoError(t, err)
	require.Equal(t, int32(1), id)
	at, err := inst.GetDateField("at")
	require.NoError(t, err)
	require.Equal(t, when, at)
	ints, err := inst.GetIntArrayField("ints")
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2}, ints)
	ch, err := inst.GetCharField("c")
	require.NoError(t, err)
	require.Equal(t, uint16('c'), ch)

	data, err := c.Serialize(inst)
	require.NoError(t, err)
	v, err := c.Deserialize(data)
	require.NoError(t, err)
	read := v.(*Instance)
	require.True(t, read.Type().NoDomainClass())
	require.True(t, read.IsIdentityField("id"))
	require.True(t, inst.Equal(read))
	f32, err := read.GetFloatField("f")
	require.NoError(t, err)
	require.Equal(t, float32(0.5), f32)
	extra, err := read.GetStringField("extra")
	require.NoError(t, err)
	require.Equal(t, "e", extra)

	_, err = f.Create()
	require.Equal(t, ErrKindFactoryAlreadyUsed, KindOf(err))
	require.EqualError(t, err, "The PdxInstanceFactory.Create() method can only be called once.")
}

func TestInstanceFactoryErrors(t *testing.T) {
	c := newTestCache(t)

	_, err := c.CreateInstanceFactory("E").WriteInt("a", 1).WriteLong("a", 2).Create()
	require.EqualError(t, err, "Field: a is already added to PdxWriter")

	_, err = c.CreateInstanceFactory("E").MarkIdentityField("a").WriteInt("a", 1).Create()
	require.EqualError(t, err, "field a must be written before it is marked as identity field")

	_, err = c.CreateInstanceFactory("E").WriteField("a", nil).Create()
	require.Equal(t, ErrKindInvalidState, KindOf(err))

	f := c.CreateInstanceFactory("E").WriteInt("a", 1)
	_, err = f.Create()
	require.NoError(t, err)
	f.WriteInt("b", 2)
	_, err = f.Create()
	require.Equal(t, ErrKindFactoryAlreadyUsed, KindOf(err))
}

func TestInstanceFactoryDistinctFromDomainType(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Serialize(&versionOne{ID: 1, Name: "n"})
	require.NoError(t, err)

	inst, err := c.CreateInstanceFactory(versionedClass).WriteInt("id", 1).WriteString("name", "n").Create()
	require.NoError(t, err)
	data, err := c.Serialize(inst)
	require.NoError(t, err)
	typeID, _ := splitPdx(t, data)
	require.Equal(t, int32(2), typeID, "a type without domain class gets its own id")
}
