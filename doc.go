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

/*
Package pdx implements the Geode Portable Data eXchange (PDX) serialization
format: self-describing, schema-evolving records shared between processes
that need not have the same version of a class.

# Quick Start

A Cache owns the registries. Domain types either implement PdxSerializable
or are plain structs handled by the AutoSerializer:

	type Order struct {
		ID     int64   `pdx:"orderId,identity"`
		Amount float64
		Lines  []string
	}

	cache := pdx.NewCache()
	defer cache.Close()

	if err := cache.RegisterAutoSerializable("com.example.Order", &Order{}); err != nil {
		panic(err)
	}
	data, err := cache.Serialize(&Order{ID: 7, Amount: 12.5})
	if err != nil {
		panic(err)
	}
	v, err := cache.Deserialize(data) // *Order

# Wire format

A PDX payload is

	[93][int32 length][int32 typeId][field data][offset table]

where length excludes the first nine bytes. Fixed-width fields are located
from the type definition; variable-width fields through the offset table,
whose entries are 1, 2 or 4 bytes wide depending on the payload length.
The first variable field never needs an entry.

# Types

A PdxType is the ordered field list of one version of a class. Type ids
are assigned by a TypeSource, which plays the role of the server-side type
registry; MemoryTypeSource is process local and typestore.Store persists to
bbolt. A payload is always read with the type it was written with (the
remote type); fields the local version lacks are kept as UnreadData and
written back when the same object is serialized again.

# Instances

With WithReadSerialized, or for classes without a factory, Deserialize
returns an *Instance: a read-only view over the payload with typed getters,
structural equality and a Java compatible hash. CreateWriter yields a
WritableInstance whose edits are kept copy-on-write. InstanceFactory builds
instances of classes that have no Go type at all.

# Configuration Options

	cache := pdx.NewCache(
		pdx.WithLogger(logrus.New()),
		pdx.WithTypeSource(store),
		pdx.WithReadSerialized(true),
		pdx.WithUnreadDataLifespan(time.Minute),
		pdx.WithMetrics(metrics.NewCollector("pdx")),
	)
*/
package pdx
