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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/apache/geode-native/pdx/metrics"
)

// Config holds the serialization settings of a Cache.
type Config struct {
	// ReadSerialized makes Deserialize return *Instance for every PDX
	// payload instead of building domain objects.
	ReadSerialized bool
	// IgnoreUnreadFields disables tracking of fields a domain type does
	// not read, so they are lost when the object is written back.
	IgnoreUnreadFields bool
	// UnreadDataLifespan is how long unread data is kept for an object.
	UnreadDataLifespan time.Duration
	// UnreadDataSweepInterval is the period of the expiry sweep; zero
	// disables the background sweep.
	UnreadDataSweepInterval time.Duration
	// MaxRetries bounds the rewrites after the type source reports an
	// unknown type id.
	MaxRetries int
}

// defaultConfig returns the default configuration
func defaultConfig() Config {
	return Config{
		UnreadDataLifespan:      DefaultUnreadDataLifespan,
		UnreadDataSweepInterval: DefaultUnreadDataLifespan,
		MaxRetries:              1,
	}
}

// Option is a function that configures a Cache
type Option func(*Cache)

// WithLogger sets the logger used by the cache and its registries
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithTypeSource sets the authority that assigns and resolves type ids
func WithTypeSource(source TypeSource) Option {
	return func(c *Cache) {
		c.source = source
	}
}

// WithReadSerialized sets read-serialized mode
func WithReadSerialized(enabled bool) Option {
	return func(c *Cache) {
		c.config.ReadSerialized = enabled
	}
}

// WithIgnoreUnreadFields disables unread field preservation
func WithIgnoreUnreadFields(enabled bool) Option {
	return func(c *Cache) {
		c.config.IgnoreUnreadFields = enabled
	}
}

// WithUnreadDataLifespan sets how long unread data is retained
func WithUnreadDataLifespan(d time.Duration) Option {
	return func(c *Cache) {
		c.config.UnreadDataLifespan = d
	}
}

// WithUnreadDataSweepInterval sets the expiry sweep period, 0 to disable it
func WithUnreadDataSweepInterval(d time.Duration) Option {
	return func(c *Cache) {
		c.config.UnreadDataSweepInterval = d
	}
}

// WithMaxRetries sets the retry bound for unknown type ids
func WithMaxRetries(n int) Option {
	return func(c *Cache) {
		c.config.MaxRetries = n
	}
}

// WithMetrics sets the prometheus counters the cache records into. The
// collector is not registered; see metrics.Collector.Register.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}
