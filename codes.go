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

// DSCode is the one-byte dispatch code that prefixes every serialized value.
type DSCode uint8

const (
	FixedIDByte  DSCode = 1
	FixedIDShort DSCode = 2
	FixedIDInt   DSCode = 3

	BooleanArray DSCode = 26
	CharArray    DSCode = 27

	CacheableUserData4 DSCode = 37
	CacheableUserData2 DSCode = 38
	CacheableUserData  DSCode = 39

	NullObj              DSCode = 41
	CacheableString      DSCode = 42
	Class                DSCode = 43
	DataSerializableCode DSCode = 45

	CacheableBytes       DSCode = 46
	CacheableInt16Array  DSCode = 47
	CacheableInt32Array  DSCode = 48
	CacheableInt64Array  DSCode = 49
	CacheableFloatArray  DSCode = 50
	CacheableDoubleArray DSCode = 51
	CacheableObjectArray DSCode = 52

	CacheableBoolean   DSCode = 53
	CacheableCharacter DSCode = 54
	CacheableByte      DSCode = 55
	CacheableInt16     DSCode = 56
	CacheableInt32     DSCode = 57
	CacheableInt64     DSCode = 58
	CacheableFloat     DSCode = 59
	CacheableDouble    DSCode = 60
	CacheableDate      DSCode = 61

	CacheableStringArray DSCode = 64

	CacheableNullString      DSCode = 69
	CacheableASCIIString     DSCode = 87
	CacheableASCIIStringHuge DSCode = 88
	CacheableStringHuge      DSCode = 89

	ArrayOfByteArrays DSCode = 91

	PDX DSCode = 93
)

// Internal fixed ids bound in the system-type map.
const (
	FixedIDCacheableUndefined int32 = 31
)

const (
	// pdxTypeJavaClass is the Java class a PdxType definition claims to be
	// when it is shipped to a peer.
	pdxTypeJavaClass = "org.apache.geode.pdx.internal.PdxType"
	// objectArrayComponentClass is the component class written for
	// heterogeneous object arrays.
	objectArrayComponentClass = "java.lang.Object"

	// pdxHeaderSize is the length and type id that follow the PDX code.
	pdxHeaderSize = 8
)
