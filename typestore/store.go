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

// Package typestore persists PDX type definitions in a bbolt file so that
// type ids survive restarts and can be shared by tools reading stored
// payloads.
package typestore

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/apache/geode-native/pdx"
)

var (
	bucketTypes  = []byte("types")
	bucketShapes = []byte("shapes")
)

// Store is a pdx.TypeSource backed by bbolt. Definitions are kept in the
// Geode wire layout under their id; a second bucket maps the hash of a
// definition with its id zeroed to the ids carrying that shape.
type Store struct {
	path string
	db   *bolt.DB
}

var _ pdx.TypeSource = (*Store)(nil)

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening type store %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketTypes); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketShapes)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing type store")
	}
	return &Store{path: path, db: db}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return errors.Wrap(s.db.Close(), "closing type store")
}

func idKey(id int32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], uint32(id))
	return k[:]
}

func shapeKey(t *pdx.PdxType) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], xxhash.Sum64(pdx.EncodeTypeDefinition(t, 0)))
	return k[:]
}

// IDForType returns the id stored for t's definition, assigning the next
// bucket sequence to a definition not seen before.
func (s *Store) IDForType(t *pdx.PdxType) (int32, error) {
	key := shapeKey(t)
	var id int32
	err := s.db.Update(func(tx *bolt.Tx) error {
		types := tx.Bucket(bucketTypes)
		shapes := tx.Bucket(bucketShapes)
		ids := shapes.Get(key)
		for i := 0; i+4 <= len(ids); i += 4 {
			candidate := int32(binary.BigEndian.Uint32(ids[i:]))
			known, err := pdx.ReadPdxType(pdx.NewByteBuffer(types.Get(idKey(candidate))))
			if err != nil {
				return errors.Wrapf(err, "decoding type %d", candidate)
			}
			if known.Equal(t) {
				id = candidate
				return nil
			}
		}
		seq, err := types.NextSequence()
		if err != nil {
			return err
		}
		if seq > math.MaxInt32 {
			return errors.New("type id space exhausted")
		}
		id = int32(seq)
		if err := types.Put(idKey(id), pdx.EncodeTypeDefinition(t, id)); err != nil {
			return err
		}
		updated := make([]byte, len(ids), len(ids)+4)
		copy(updated, ids)
		return shapes.Put(key, append(updated, idKey(id)...))
	})
	if err != nil {
		return 0, errors.Wrapf(err, "assigning id to %s", t.ClassName())
	}
	return id, nil
}

// TypeByID decodes the definition stored under id.
func (s *Store) TypeByID(id int32) (*pdx.PdxType, error) {
	var def []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketTypes).Get(idKey(id)); v != nil {
			def = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, errors.Wrapf(err, "reading type %d", id)
	}
	if def == nil {
		return nil, pdx.UnknownPdxTypeError(id)
	}
	t, err := pdx.ReadPdxType(pdx.NewByteBuffer(def))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding type %d", id)
	}
	return t, nil
}

// Types returns every stored definition in id order.
func (s *Store) Types() ([]*pdx.PdxType, error) {
	var out []*pdx.PdxType
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTypes).ForEach(func(k, v []byte) error {
			t, err := pdx.ReadPdxType(pdx.NewByteBuffer(v))
			if err != nil {
				return errors.Wrapf(err, "decoding type %d", int32(binary.BigEndian.Uint32(k)))
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
