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

// Package metrics exposes PDX serialization counters to prometheus.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricSerializations    = "serializations_total"
	MetricSerializedBytes   = "serialized_bytes_total"
	MetricDeserializations  = "deserializations_total"
	MetricInstancesCreated  = "instances_created_total"
	MetricTypeFetches       = "type_fetches_total"
	MetricUnreadDataExpired = "unread_data_expired_total"
)

// Results for the type fetch counter.
const (
	FetchHit   = "hit"
	FetchMiss  = "miss"
	FetchError = "error"
)

// Collector holds the counters of one cache. A nil *Collector is valid and
// records nothing.
type Collector struct {
	Serializations    prometheus.Counter
	SerializedBytes   prometheus.Counter
	Deserializations  prometheus.Counter
	InstancesCreated  prometheus.Counter
	TypeFetches       *prometheus.CounterVec
	UnreadDataExpired prometheus.Counter
}

// NewCollector creates unregistered counters under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		Serializations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricSerializations,
			Help:      "Number of objects serialized as PDX.",
		}),
		SerializedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricSerializedBytes,
			Help:      "Bytes of PDX payload written, headers included.",
		}),
		Deserializations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricDeserializations,
			Help:      "Number of PDX payloads deserialized.",
		}),
		InstancesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricInstancesCreated,
			Help:      "Number of PDX instances created from payloads or factories.",
		}),
		TypeFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricTypeFetches,
			Help:      "PDX type lookups by id, by result.",
		}, []string{"result"}),
		UnreadDataExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricUnreadDataExpired,
			Help:      "Preserved unread field sets dropped after their lifespan.",
		}),
	}
}

// Collectors lists every counter, for registration.
func (c *Collector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.Serializations,
		c.SerializedBytes,
		c.Deserializations,
		c.InstancesCreated,
		c.TypeFetches,
		c.UnreadDataExpired,
	}
}

// Register registers every counter with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range c.Collectors() {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) IncSerialization(bytes int) {
	if c == nil {
		return
	}
	c.Serializations.Inc()
	c.SerializedBytes.Add(float64(bytes))
}

func (c *Collector) IncDeserialization() {
	if c == nil {
		return
	}
	c.Deserializations.Inc()
}

func (c *Collector) IncInstanceCreated() {
	if c == nil {
		return
	}
	c.InstancesCreated.Inc()
}

func (c *Collector) IncTypeFetch(result string) {
	if c == nil {
		return
	}
	c.TypeFetches.WithLabelValues(result).Inc()
}

func (c *Collector) AddUnreadDataExpired(n int) {
	if c == nil || n == 0 {
		return
	}
	c.UnreadDataExpired.Add(float64(n))
}
