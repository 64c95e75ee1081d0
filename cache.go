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
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/apache/geode-native/pdx/metrics"
)

// Cache bundles the registries of one process view of a distributed
// system. It is safe for concurrent use.
type Cache struct {
	config  Config
	logger  logrus.FieldLogger
	source  TypeSource
	metrics *metrics.Collector

	types    *TypeRegistry
	registry *SerializationRegistry
	buffers  *bufferPool

	autoMu sync.Mutex
	auto   *AutoSerializer

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewCache creates a cache. Without WithTypeSource, type ids are assigned
// by an in-memory source private to the cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{config: defaultConfig()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	if c.source == nil {
		c.source = NewMemoryTypeSource()
	}
	c.types = NewTypeRegistry(c.source, c.logger)
	c.types.metrics = c.metrics
	if c.config.UnreadDataLifespan > 0 {
		c.types.SetUnreadDataLifespan(c.config.UnreadDataLifespan)
	}
	c.registry = NewSerializationRegistry(c.types, c.logger, c.config)
	c.buffers = newBufferPool()
	if c.config.UnreadDataSweepInterval > 0 && !c.config.IgnoreUnreadFields {
		c.stop = make(chan struct{})
		c.done = make(chan struct{})
		go c.sweep(c.config.UnreadDataSweepInterval)
	}
	return c
}

func (c *Cache) sweep(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.types.ExpireUnreadData(now)
		}
	}
}

// Close stops the unread data sweep. The cache stays usable.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() {
		if c.stop != nil {
			close(c.stop)
			<-c.done
		}
	})
	return nil
}

// Registry returns the serialization registry for binding factories.
func (c *Cache) Registry() *SerializationRegistry {
	return c.registry
}

// TypeRegistry returns the registry of known PDX types.
func (c *Cache) TypeRegistry() *TypeRegistry {
	return c.types
}

// Config returns the settings the cache was created with.
func (c *Cache) Config() Config {
	return c.config
}

// Serialize returns the encoding of v, including its leading DS code.
func (c *Cache) Serialize(v any) ([]byte, error) {
	buf := c.buffers.acquire()
	defer c.buffers.release(buf)
	if err := c.registry.Serialize(buf, v); err != nil {
		return nil, err
	}
	out := make([]byte, buf.WriterIndex())
	copy(out, buf.Bytes())
	c.metrics.IncSerialization(len(out))
	return out, nil
}

// Deserialize decodes one value written by Serialize. Primitive values are
// returned as plain Go values; PDX payloads as domain objects or *Instance.
func (c *Cache) Deserialize(data []byte) (any, error) {
	v, err := c.registry.Deserialize(NewByteBuffer(data), -1)
	if err != nil {
		return nil, err
	}
	c.metrics.IncDeserialization()
	return v, nil
}

// CreateInstanceFactory starts building an Instance of className.
func (c *Cache) CreateInstanceFactory(className string) *InstanceFactory {
	return newInstanceFactory(c.registry, className)
}

// RegisterPdxType binds className to factory.
func (c *Cache) RegisterPdxType(className string, factory PdxTypeFactory) error {
	return c.registry.BindPdxType(className, factory)
}

// RegisterAutoSerializable serializes the struct type of sample as
// className through the cache's AutoSerializer, which is installed as the
// registry's PdxSerializer on first use.
func (c *Cache) RegisterAutoSerializable(className string, sample any) error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()
	if c.auto == nil {
		if c.registry.PdxSerializer() != nil {
			return InvalidStateError("a PdxSerializer is already installed")
		}
		c.auto = NewAutoSerializer()
		c.registry.SetPdxSerializer(c.auto)
	}
	return c.auto.Register(className, sample)
}
