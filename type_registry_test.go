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

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/apache/geode-native/pdx/metrics"
)

func newTestTypeRegistry(source TypeSource) *TypeRegistry {
	logger, _ := newNullLogger()
	return NewTypeRegistry(source, logger)
}

func TestDefineTypeDedup(t *testing.T) {
	source := NewMemoryTypeSource()
	r := newTestTypeRegistry(source)

	first, err := r.DefineType(newTestType(t, "C", "a", INT, "s", STRING))
	require.NoError(t, err)
	require.Equal(t, int32(1), first.TypeID())
	require.True(t, first.Initialized())

	again, err := r.DefineType(newTestType(t, "C", "a", INT, "s", STRING))
	require.NoError(t, err)
	require.Same(t, first, again)

	other, err := r.DefineType(newTestType(t, "D", "a", INT, "s", STRING))
	require.NoError(t, err)
	require.Equal(t, int32(2), other.TypeID())

	reordered, err := r.DefineType(newTestType(t, "C", "s", STRING, "a", INT))
	require.NoError(t, err)
	require.Equal(t, int32(3), reordered.TypeID())

	require.Equal(t, 3, source.Len())
	require.Len(t, r.Types(), 3)
	require.Same(t, source, r.Source())
}

func TestTypeFetch(t *testing.T) {
	source := NewMemoryTypeSource()
	writer := newTestTypeRegistry(source)
	defined, err := writer.DefineType(newTestType(t, "C", "a", INT))
	require.NoError(t, err)

	col := metrics.NewCollector("test")
	reader := newTestTypeRegistry(source)
	reader.metrics = col

	fetched, err := reader.Type(defined.TypeID())
	require.NoError(t, err)
	require.NotSame(t, defined, fetched)
	require.True(t, defined.Equal(fetched))
	require.Equal(t, defined.TypeID(), fetched.TypeID())

	cached, err := reader.Type(defined.TypeID())
	require.NoError(t, err)
	require.Same(t, fetched, cached)

	_, err = reader.Type(99)
	require.Equal(t, ErrKindUnknownPdxType, KindOf(err))
	require.EqualError(t, err, "unknown pdx type: typeId=99")

	require.Equal(t, 1.0, testutil.ToFloat64(col.TypeFetches.WithLabelValues(metrics.FetchMiss)))
	require.Equal(t, 1.0, testutil.ToFloat64(col.TypeFetches.WithLabelValues(metrics.FetchHit)))
	require.Equal(t, 1.0, testutil.ToFloat64(col.TypeFetches.WithLabelValues(metrics.FetchError)))
}

func TestMergedType(t *testing.T) {
	r := newTestTypeRegistry(NewMemoryTypeSource())
	define := func(pt *PdxType) *PdxType {
		d, err := r.DefineType(pt)
		require.NoError(t, err)
		return d
	}

	v1 := define(newTestType(t, versionedClass, "id", INT, "name", STRING))
	m, err := r.MergedType(v1, nil)
	require.NoError(t, err)
	require.Same(t, v1, m)

	v2 := define(newTestType(t, versionedClass, "id", INT, "name", STRING, "priority", INT, "notes", STRING))
	m, err = r.MergedType(v2, v1)
	require.NoError(t, err)
	require.Same(t, v2, m, "the newer version already holds the older one")
	require.Same(t, v2, r.LocalType(versionedClass))

	local := define(newTestType(t, "C", "id", INT, "a", STRING))
	remote := define(newTestType(t, "C", "id", INT, "b", LONG))
	m, err = r.MergedType(remote, local)
	require.NoError(t, err)
	require.Equal(t, "PdxType[C id=5](id:INT, a:STRING, b:LONG)", m.String())
	require.Same(t, m, r.LocalType("C"))

	again, err := r.MergedType(remote, local)
	require.NoError(t, err)
	require.Same(t, m, again)
}

func TestUnreadDataLifespan(t *testing.T) {
	r := newTestTypeRegistry(NewMemoryTypeSource())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	r.now = func() time.Time { return now }

	obj := &versionOne{ID: 1}
	ud := &UnreadData{}
	require.True(t, r.PutUnreadData(obj, ud))
	require.Equal(t, base.Add(DefaultUnreadDataLifespan), ud.ExpiresAt())
	require.Same(t, ud, r.UnreadData(obj))
	require.Nil(t, r.UnreadData(&versionOne{ID: 1}), "keyed by identity")

	replacement := &UnreadData{}
	require.True(t, r.PutUnreadData(obj, replacement))
	require.Equal(t, base.Add(unreadDataRefresh), replacement.ExpiresAt())

	now = base.Add(unreadDataRefresh)
	require.Nil(t, r.UnreadData(obj))
	require.Zero(t, r.UnreadDataLen())

	r.SetUnreadDataLifespan(time.Minute)
	require.True(t, r.PutUnreadData(obj, &UnreadData{}))
	require.Equal(t, now.Add(time.Minute), r.UnreadData(obj).ExpiresAt())
}

func TestExpireUnreadData(t *testing.T) {
	logger, hook := newNullLogger()
	r := NewTypeRegistry(NewMemoryTypeSource(), logger)
	col := metrics.NewCollector("test")
	r.metrics = col
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	r.SetUnreadDataLifespan(time.Second)
	require.True(t, r.PutUnreadData(&versionOne{ID: 1}, &UnreadData{}))
	require.True(t, r.PutUnreadData(&versionOne{ID: 2}, &UnreadData{}))
	r.SetUnreadDataLifespan(time.Hour)
	keep := &versionOne{ID: 3}
	require.True(t, r.PutUnreadData(keep, &UnreadData{}))

	require.Zero(t, r.ExpireUnreadData(base))
	require.Equal(t, 2, r.ExpireUnreadData(base.Add(time.Second)))
	require.Equal(t, 1, r.UnreadDataLen())
	require.NotNil(t, r.UnreadData(keep))
	require.Equal(t, 2.0, testutil.ToFloat64(col.UnreadDataExpired))
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, 2, hook.LastEntry().Data["count"])
}

func TestClearRefetches(t *testing.T) {
	source := NewMemoryTypeSource()
	r := newTestTypeRegistry(source)
	defined, err := r.DefineType(newTestType(t, "C", "a", INT))
	require.NoError(t, err)
	r.SetLocalType(defined)
	require.True(t, r.PutUnreadData(&versionOne{}, &UnreadData{}))

	r.Clear()
	require.Empty(t, r.Types())
	require.Nil(t, r.LocalType("C"))
	require.Zero(t, r.UnreadDataLen())

	fetched, err := r.Type(defined.TypeID())
	require.NoError(t, err)
	require.NotSame(t, defined, fetched)
	require.True(t, defined.Equal(fetched))
}

func TestConcurrentDefineAndFetch(t *testing.T) {
	source := NewMemoryTypeSource()
	r := newTestTypeRegistry(source)

	ids := make([]int32, 16)
	var g errgroup.Group
	for i := range ids {
		i := i
		g.Go(func() error {
			pt := NewPdxType("C")
			if _, err := pt.AddField("a", INT); err != nil {
				return err
			}
			defined, err := r.DefineType(pt)
			if err != nil {
				return err
			}
			ids[i] = defined.TypeID()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, id := range ids {
		require.Equal(t, int32(1), id)
	}
	require.Equal(t, 1, source.Len())
	require.Len(t, r.Types(), 1)

	fresh := newTestTypeRegistry(source)
	fetched := make([]*PdxType, 16)
	var fetches errgroup.Group
	for i := range fetched {
		i := i
		fetches.Go(func() error {
			var err error
			fetched[i], err = fresh.Type(1)
			return err
		})
	}
	require.NoError(t, fetches.Wait())
	for _, pt := range fetched {
		require.Same(t, fetched[0], pt)
	}
}

func TestUnreadDataKeyedByIdentity(t *testing.T) {
	r := newTestTypeRegistry(NewMemoryTypeSource())

	type point struct{ X, Y int32 }
	type note struct {
		X    int32
		Note any
	}
	values := []any{
		nil,
		point{X: 1, Y: 2},
		note{X: 1, Note: []any{"a"}},
		int32(7),
		"text",
		(*versionOne)(nil),
		&struct{}{},
	}
	for _, v := range values {
		require.NotPanics(t, func() {
			require.False(t, r.PutUnreadData(v, &UnreadData{}), "%#v", v)
			require.Nil(t, r.UnreadData(v))
		})
	}
	require.Zero(t, r.UnreadDataLen())

	m := map[string]int{"a": 1}
	ud := &UnreadData{}
	require.True(t, r.PutUnreadData(m, ud))
	require.Same(t, ud, r.UnreadData(m))
	require.Nil(t, r.UnreadData(map[string]int{"a": 1}))

	ch := make(chan int)
	require.True(t, r.PutUnreadData(ch, &UnreadData{}))
	require.NotNil(t, r.UnreadData(ch))
	require.Equal(t, 2, r.UnreadDataLen())
}
