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

package typestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apache/geode-native/pdx"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "types.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newType(t *testing.T, className string, names ...string) *pdx.PdxType {
	t.Helper()
	pt := pdx.NewPdxType(className)
	for _, name := range names {
		_, err := pt.AddField(name, pdx.STRING)
		require.NoError(t, err)
	}
	return pt
}

func TestStoreAssignsIDs(t *testing.T) {
	s := openTestStore(t)

	id, err := s.IDForType(newType(t, "C", "a"))
	require.NoError(t, err)
	require.Equal(t, int32(1), id)

	id, err = s.IDForType(newType(t, "C", "a"))
	require.NoError(t, err)
	require.Equal(t, int32(1), id)

	id, err = s.IDForType(newType(t, "C", "a", "b"))
	require.NoError(t, err)
	require.Equal(t, int32(2), id)

	pt, err := s.TypeByID(2)
	require.NoError(t, err)
	require.Equal(t, "PdxType[C id=2](a:STRING, b:STRING)", pt.String())

	_, err = s.TypeByID(3)
	require.Equal(t, pdx.ErrKindUnknownPdxType, pdx.KindOf(err))

	types, err := s.Types()
	require.NoError(t, err)
	require.Len(t, types, 2)
	require.Equal(t, int32(1), types[0].TypeID())
	require.Equal(t, int32(2), types[1].TypeID())
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())
	id, err := s.IDForType(newType(t, "C", "a"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	again, err := s.IDForType(newType(t, "C", "a"))
	require.NoError(t, err)
	require.Equal(t, id, again)
	next, err := s.IDForType(newType(t, "D", "a"))
	require.NoError(t, err)
	require.Equal(t, id+1, next)
}

func TestStoreBacksCaches(t *testing.T) {
	s := openTestStore(t)
	writer := pdx.NewCache(pdx.WithTypeSource(s), pdx.WithUnreadDataSweepInterval(0))
	defer writer.Close()
	reader := pdx.NewCache(pdx.WithTypeSource(s), pdx.WithReadSerialized(true), pdx.WithUnreadDataSweepInterval(0))
	defer reader.Close()

	inst, err := writer.CreateInstanceFactory("com.example.Stored").
		WriteString("name", "persisted").
		WriteInt("n", 3).
		Create()
	require.NoError(t, err)
	data, err := writer.Serialize(inst)
	require.NoError(t, err)

	v, err := reader.Deserialize(data)
	require.NoError(t, err)
	read := v.(*pdx.Instance)
	name, err := read.GetStringField("name")
	require.NoError(t, err)
	require.Equal(t, "persisted", name)
	require.True(t, read.Type().NoDomainClass())
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "types.db"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "opening type store")
}
