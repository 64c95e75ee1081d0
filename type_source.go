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

import "sync"

// TypeSource is the distributed-system authority for PDX type ids. Every
// peer that defines the same type gets the same id, and any peer can fetch
// a definition by id.
type TypeSource interface {
	// IDForType returns the id assigned to t's definition, assigning a new
	// one if the definition has not been seen.
	IDForType(t *PdxType) (int32, error)
	// TypeByID returns a freshly decoded definition. Unknown ids yield an
	// ErrKindUnknownPdxType error.
	TypeByID(id int32) (*PdxType, error)
}

// MemoryTypeSource is an in-process TypeSource. Definitions are kept in
// their wire form, so every fetch decodes a new *PdxType just as a fetch
// from a server would.
type MemoryTypeSource struct {
	mu      sync.Mutex
	nextID  int32
	defs    map[int32][]byte
	byShape map[uint64][]int32
}

func NewMemoryTypeSource() *MemoryTypeSource {
	return &MemoryTypeSource{
		nextID:  1,
		defs:    make(map[int32][]byte),
		byShape: make(map[uint64][]int32),
	}
}

func (s *MemoryTypeSource) IDForType(t *PdxType) (int32, error) {
	fp := t.Fingerprint()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.byShape[fp] {
		known, err := ReadPdxType(NewByteBuffer(s.defs[id]))
		if err != nil {
			return 0, err
		}
		if known.Equal(t) {
			return id, nil
		}
	}
	id := s.nextID
	s.nextID++
	s.defs[id] = EncodeTypeDefinition(t, id)
	s.byShape[fp] = append(s.byShape[fp], id)
	return id, nil
}

func (s *MemoryTypeSource) TypeByID(id int32) (*PdxType, error) {
	s.mu.Lock()
	def, ok := s.defs[id]
	s.mu.Unlock()
	if !ok {
		return nil, UnknownPdxTypeError(id)
	}
	return ReadPdxType(NewByteBuffer(def))
}

// Len returns the number of stored definitions.
func (s *MemoryTypeSource) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.defs)
}

// EncodeTypeDefinition returns t's definition bytes stamped with id, without
// modifying t.
func EncodeTypeDefinition(t *PdxType, id int32) []byte {
	def := t.clone()
	def.Initialize()
	def.SetTypeID(id)
	buf := NewOutputBuffer(64 + 32*t.NumFields())
	def.ToData(buf)
	return buf.Bytes()
}
