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
	"fmt"
	"reflect"
	"sync"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/apache/geode-native/pdx/metrics"
)

const (
	// DefaultUnreadDataLifespan is how long unread data captured on
	// deserialization is kept for an object that is not re-serialized.
	DefaultUnreadDataLifespan = 20 * time.Second
	// unreadDataRefresh is the lifespan granted when unread data for an
	// object is replaced.
	unreadDataRefresh = 5 * time.Second
)

// TypeRegistry holds every PdxType this process knows: remote versions by
// type id, the current local version per class, and the merges between
// them. Type ids come from a TypeSource, which is the single authority for
// the distributed system.
type TypeRegistry struct {
	source  TypeSource
	logger  logrus.FieldLogger
	metrics *metrics.Collector

	mu      sync.RWMutex
	byID    map[int32]*PdxType
	byShape map[uint64][]*PdxType
	local   map[string]*PdxType
	merged  map[int32]*PdxType

	fetches singleflight.Group
	defines singleflight.Group

	unreadMu       sync.Mutex
	unread         map[identityKey]*UnreadData
	unreadLifespan time.Duration
	now            func() time.Time
}

func NewTypeRegistry(source TypeSource, logger logrus.FieldLogger) *TypeRegistry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TypeRegistry{
		source:         source,
		logger:         logger,
		byID:           make(map[int32]*PdxType),
		byShape:        make(map[uint64][]*PdxType),
		local:          make(map[string]*PdxType),
		merged:         make(map[int32]*PdxType),
		unread:         make(map[identityKey]*UnreadData),
		unreadLifespan: DefaultUnreadDataLifespan,
		now:            time.Now,
	}
}

// Source returns the type-id authority backing the registry.
func (r *TypeRegistry) Source() TypeSource {
	return r.source
}

// Type returns the type registered under id, fetching it from the source
// on first use. Concurrent fetches of one id share a single source call.
func (r *TypeRegistry) Type(id int32) (*PdxType, error) {
	r.mu.RLock()
	t := r.byID[id]
	r.mu.RUnlock()
	if t != nil {
		r.metrics.IncTypeFetch(metrics.FetchHit)
		return t, nil
	}
	v, err, _ := r.fetches.Do(fmt.Sprint(id), func() (any, error) {
		fetched, err := r.source.TypeByID(id)
		if err != nil {
			return nil, err
		}
		fetched.SetTypeID(id)
		return r.insert(fetched), nil
	})
	if err != nil {
		r.metrics.IncTypeFetch(metrics.FetchError)
		return nil, err
	}
	r.metrics.IncTypeFetch(metrics.FetchMiss)
	r.logger.WithFields(logrus.Fields{"typeId": id, "className": v.(*PdxType).ClassName()}).Debug("fetched pdx type")
	return v.(*PdxType), nil
}

// insert stores t under its id and shape unless an equal type is already
// stored under that id, in which case the stored one is returned. The
// first insert wins.
func (r *TypeRegistry) insert(t *PdxType) *PdxType {
	r.mu.Lock()
	defer r.mu.Unlock()
	if known := r.byID[t.TypeID()]; known != nil {
		return known
	}
	r.byID[t.TypeID()] = t
	fp := t.Fingerprint()
	r.byShape[fp] = append(r.byShape[fp], t)
	return t
}

func (r *TypeRegistry) lookupShape(t *PdxType) *PdxType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, known := range r.byShape[t.Fingerprint()] {
		if known.Equal(t) {
			return known
		}
	}
	return nil
}

// DefineType returns the registered type with t's shape, asking the source
// for an id when the shape is new. t is initialized if it is not already.
// The returned type may be another object than t: callers must use it.
func (r *TypeRegistry) DefineType(t *PdxType) (*PdxType, error) {
	t.Initialize()
	if known := r.lookupShape(t); known != nil {
		return known, nil
	}
	key := fmt.Sprintf("%s/%x", t.ClassName(), t.Fingerprint())
	v, err, _ := r.defines.Do(key, func() (any, error) {
		return r.define(t)
	})
	if err != nil {
		return nil, err
	}
	defined := v.(*PdxType)
	if !defined.Equal(t) {
		// fingerprint collision between concurrent defines
		return r.define(t)
	}
	return defined, nil
}

func (r *TypeRegistry) define(t *PdxType) (*PdxType, error) {
	if known := r.lookupShape(t); known != nil {
		return known, nil
	}
	id, err := r.source.IDForType(t)
	if err != nil {
		return nil, err
	}
	t.SetTypeID(id)
	defined := r.insert(t)
	r.logger.WithFields(logrus.Fields{"typeId": id, "className": t.ClassName()}).Debug("defined pdx type")
	return defined, nil
}

// LocalType returns the current local version of className, or nil.
func (r *TypeRegistry) LocalType(className string) *PdxType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.local[className]
}

// SetLocalType makes t the local version of its class.
func (r *TypeRegistry) SetLocalType(t *PdxType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[t.ClassName()] = t
}

// MergedType returns the type that holds the fields of both remote and
// local, defining it when neither version contains the other. The result
// becomes the local type of the class and is cached by remote type id.
func (r *TypeRegistry) MergedType(remote, local *PdxType) (*PdxType, error) {
	if local == nil {
		return remote, nil
	}
	r.mu.RLock()
	m := r.merged[remote.TypeID()]
	r.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	m = local.MergeVersion(remote)
	if m != local && m != remote {
		var err error
		if m, err = r.DefineType(m); err != nil {
			return nil, err
		}
		r.logger.WithFields(logrus.Fields{
			"className":    remote.ClassName(),
			"remoteTypeId": remote.TypeID(),
			"mergedTypeId": m.TypeID(),
		}).Debug("merged pdx type versions")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if known := r.merged[remote.TypeID()]; known != nil {
		return known, nil
	}
	r.merged[remote.TypeID()] = m
	if m != local {
		r.local[m.ClassName()] = m
	}
	return m, nil
}

// Types returns every type known by id, in no particular order.
func (r *TypeRegistry) Types() []*PdxType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*PdxType, 0, len(r.byID))
	for _, t := range r.byID {
		result = append(result, t)
	}
	return result
}

// Clear forgets every cached type and all unread data. Types are fetched
// or defined again through the source on next use.
func (r *TypeRegistry) Clear() {
	r.clearTypes()
	r.unreadMu.Lock()
	r.unread = make(map[identityKey]*UnreadData)
	r.unreadMu.Unlock()
}

func (r *TypeRegistry) clearTypes() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[int32]*PdxType)
	r.byShape = make(map[uint64][]*PdxType)
	r.local = make(map[string]*PdxType)
	r.merged = make(map[int32]*PdxType)
}

// SetUnreadDataLifespan sets how long new unread data is kept.
func (r *TypeRegistry) SetUnreadDataLifespan(d time.Duration) {
	r.unreadMu.Lock()
	defer r.unreadMu.Unlock()
	r.unreadLifespan = d
}

// identityKey names one object by its address. Holding the pointer keeps
// the object alive while its unread data is kept.
type identityKey struct {
	typ reflect.Type
	ptr unsafe.Pointer
}

// unreadKey returns the identity of obj. Only reference values (pointers,
// maps, channels) have one; values are copied freely and two equal values
// are not the same object, so they cannot carry unread data.
func unreadKey(obj any) (identityKey, bool) {
	if obj == nil {
		return identityKey{}, false
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer:
		// zero-size allocations may share one address
		if v.Type().Elem().Size() == 0 {
			return identityKey{}, false
		}
	case reflect.Map, reflect.Chan, reflect.UnsafePointer:
	default:
		return identityKey{}, false
	}
	if v.IsNil() {
		return identityKey{}, false
	}
	return identityKey{typ: v.Type(), ptr: v.UnsafePointer()}, true
}

// PutUnreadData keeps ud for obj until it expires. Replacing existing
// unread data shortens the lifespan to a few seconds. It reports whether
// obj can carry unread data at all.
func (r *TypeRegistry) PutUnreadData(obj any, ud *UnreadData) bool {
	key, ok := unreadKey(obj)
	if !ok {
		return false
	}
	r.unreadMu.Lock()
	defer r.unreadMu.Unlock()
	lifespan := r.unreadLifespan
	if _, exists := r.unread[key]; exists && unreadDataRefresh < lifespan {
		lifespan = unreadDataRefresh
	}
	ud.expiresAt = r.now().Add(lifespan)
	r.unread[key] = ud
	return true
}

// UnreadData returns the unread data kept for obj, or nil.
func (r *TypeRegistry) UnreadData(obj any) *UnreadData {
	key, ok := unreadKey(obj)
	if !ok {
		return nil
	}
	r.unreadMu.Lock()
	defer r.unreadMu.Unlock()
	ud := r.unread[key]
	if ud == nil {
		return nil
	}
	if !r.now().Before(ud.expiresAt) {
		delete(r.unread, key)
		return nil
	}
	return ud
}

// ExpireUnreadData drops unread data whose lifespan ended before now and
// returns how many entries were dropped.
func (r *TypeRegistry) ExpireUnreadData(now time.Time) int {
	r.unreadMu.Lock()
	n := 0
	for key, ud := range r.unread {
		if !now.Before(ud.expiresAt) {
			delete(r.unread, key)
			n++
		}
	}
	r.unreadMu.Unlock()
	if n > 0 {
		r.metrics.AddUnreadDataExpired(n)
		r.logger.WithField("count", n).Warn("dropped expired pdx unread data")
	}
	return n
}

// UnreadDataLen returns the number of objects holding unread data.
func (r *TypeRegistry) UnreadDataLen() int {
	r.unreadMu.Lock()
	defer r.unreadMu.Unlock()
	return len(r.unread)
}
