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

	"github.com/sirupsen/logrus"
)

func newBenchCache(b *testing.B) *Cache {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := NewCache(WithLogger(logger), WithUnreadDataSweepInterval(0))
	b.Cleanup(func() { c.Close() })
	if err := c.RegisterPdxType(orderClass, func() PdxSerializable { return &testOrder{} }); err != nil {
		b.Fatal(err)
	}
	return c
}

var benchOrder = &testOrder{
	ID:      1001,
	Name:    "bench order",
	Lines:   []string{"apple", "pear", "plum", "cherry"},
	Total:   99.5,
	Created: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	Flags:   []byte{1, 2, 3, 4, 5, 6, 7, 8},
}

func BenchmarkSerializeOrder(b *testing.B) {
	c := newBenchCache(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Serialize(benchOrder); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeserializeOrder(b *testing.B) {
	c := newBenchCache(b)
	data, err := c.Serialize(benchOrder)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Deserialize(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInstanceField(b *testing.B) {
	c := newBenchCache(b)
	f := c.CreateInstanceFactory("com.example.BenchRow")
	f.WriteInt("id", 1001).
		WriteString("name", "bench order").
		WriteStringArray("lines", benchOrder.Lines).
		WriteDouble("total", benchOrder.Total)
	inst, err := f.Create()
	if err != nil {
		b.Fatal(err)
	}
	data, err := c.Serialize(inst)
	if err != nil {
		b.Fatal(err)
	}
	v, err := c.Deserialize(data)
	if err != nil {
		b.Fatal(err)
	}
	read := v.(*Instance)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := read.GetDoubleField("total"); err != nil {
			b.Fatal(err)
		}
	}
}
