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

func TestMemoryTypeSource(t *testing.T) {
	s := NewMemoryTypeSource()
	pt := newTestType(t, "C", "a", INT, "s", STRING)

	id, err := s.IDForType(pt)
	require.NoError(t, err)
	require.Equal(t, int32(1), id)
	require.Zero(t, pt.TypeID(), "the source does not stamp the caller's type")
	require.False(t, pt.Initialized())

	id, err = s.IDForType(newTestType(t, "C", "a", INT, "s", STRING))
	require.NoError(t, err)
	require.Equal(t, int32(1), id)

	noDomain := newTestType(t, "C", "a", INT, "s", STRING)
	noDomain.SetNoDomainClass(true)
	id, err = s.IDForType(noDomain)
	require.NoError(t, err)
	require.Equal(t, int32(2), id)
	require.Equal(t, 2, s.Len())

	first, err := s.TypeByID(1)
	require.NoError(t, err)
	second, err := s.TypeByID(1)
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.Equal(t, "PdxType[C id=1](a:INT, s:STRING)", first.String())
	require.True(t, first.Initialized())

	_, err = s.TypeByID(3)
	require.Equal(t, ErrKindUnknownPdxType, KindOf(err))
}

func TestEncodeTypeDefinition(t *testing.T) {
	pt := newTestType(t, "C", "a", INT)
	pt.Field("a").Identity = true
	def := EncodeTypeDefinition(pt, 9)
	require.Zero(t, pt.TypeID())

	decoded, err := ReadPdxType(NewByteBuffer(def))
	require.NoError(t, err)
	require.Equal(t, int32(9), decoded.TypeID())
	require.True(t, decoded.Field("a").Identity)
	require.True(t, decoded.Equal(pt))
}
