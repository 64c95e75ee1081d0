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

// MappingKind tags how a field of one version of a type relates to another
// version of the same class.
type MappingKind uint8

const (
	// Identical: the peer type has an equal field (for local-to-remote maps,
	// at the same position, so the field can be read as is).
	Identical MappingKind = iota
	// MissingLocally: a remote field the local type does not know.
	MissingLocally
	// MissingRemotely: a local field the remote payload carries no data for.
	MissingRemotely
	// RemoteIndex: a local field found at another position in the remote type.
	RemoteIndex
)

func (k MappingKind) String() string {
	switch k {
	case Identical:
		return "Identical"
	case MissingLocally:
		return "MissingLocally"
	case MissingRemotely:
		return "MissingRemotely"
	case RemoteIndex:
		return "RemoteIndex"
	default:
		return "MappingKind(?)"
	}
}

// FieldMapping is one slot of a FieldMap.
type FieldMapping struct {
	Kind MappingKind
	// Variable is set on MissingLocally slots holding a variable-length field.
	Variable bool
	// Index is the remote sequence id of a RemoteIndex slot.
	Index int
}

// FieldMap maps field index to its mapping in a peer version.
type FieldMap []FieldMapping

// Get returns the mapping of the field at index.
func (m FieldMap) Get(index int) (FieldMapping, bool) {
	if index < 0 || index >= len(m) {
		return FieldMapping{}, false
	}
	return m[index], true
}

func (t *PdxType) hasEqualField(f *PdxFieldType) bool {
	own := t.fieldMap[f.Name]
	return own != nil && own.Equal(f)
}

// RemoteToLocal maps every field of t, a type received from a peer, against
// local. Fields the local type lacks are MissingLocally; replaying them
// needs to know whether they take an offset table slot. A nil local means
// the remote type is the only version known, so every field is Identical.
func (t *PdxType) RemoteToLocal(local *PdxType) FieldMap {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remoteToLocal != nil && t.r2lPeer == local {
		return t.remoteToLocal
	}
	m := make(FieldMap, len(t.fields))
	missing := 0
	for i, f := range t.fields {
		if local == nil || local.hasEqualField(f) {
			m[i] = FieldMapping{Kind: Identical}
			continue
		}
		m[i] = FieldMapping{Kind: MissingLocally, Variable: f.IsVariable}
		missing++
	}
	t.r2lPeer = local
	t.remoteToLocal = m
	t.unreadCount = missing
	return m
}

// UnreadCount returns how many fields of t the local type lacks.
func (t *PdxType) UnreadCount(local *PdxType) int {
	t.RemoteToLocal(local)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unreadCount
}

// LocalToRemote maps every field of t, the local type, against remote. The
// leading run of fields equal position by position is Identical; later
// fields are either found elsewhere in remote or MissingRemotely.
func (t *PdxType) LocalToRemote(remote *PdxType) FieldMap {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.localToRemote != nil && t.l2rPeer == remote {
		return t.localToRemote
	}
	m := make(FieldMap, len(t.fields))
	i := 0
	for ; i < len(t.fields) && i < len(remote.fields); i++ {
		if !t.fields[i].Equal(remote.fields[i]) {
			break
		}
		m[i] = FieldMapping{Kind: Identical}
	}
	for ; i < len(t.fields); i++ {
		rf := remote.fieldMap[t.fields[i].Name]
		if rf != nil && rf.Equal(t.fields[i]) {
			m[i] = FieldMapping{Kind: RemoteIndex, Index: int(rf.SequenceID)}
		} else {
			m[i] = FieldMapping{Kind: MissingRemotely}
		}
	}
	t.l2rPeer = remote
	t.localToRemote = m
	return m
}

// contains reports whether every field of second appears in first,
// regardless of position.
func contains(first, second *PdxType) bool {
	if len(first.fields) < len(second.fields) {
		return false
	}
	for _, f := range second.fields {
		if !first.hasEqualField(f) {
			return false
		}
	}
	return true
}

// IsLocalTypeContains reports whether t has every field of other.
func (t *PdxType) IsLocalTypeContains(other *PdxType) bool {
	return contains(t, other)
}

// IsRemoteTypeContains reports whether other has every field of t.
func (t *PdxType) IsRemoteTypeContains(other *PdxType) bool {
	return contains(other, t)
}

// MergeVersion returns a type holding the fields of both versions. If one
// side already contains the other it is returned as is; otherwise the
// result is a new, unregistered type: a copy of t followed by the fields
// only other has, in other's order. Registering the result is up to the
// caller (see TypeRegistry.MergedType).
func (t *PdxType) MergeVersion(other *PdxType) *PdxType {
	if t.IsLocalTypeContains(other) {
		return t
	}
	if t.IsRemoteTypeContains(other) {
		return other
	}
	merged := t.clone()
	merged.appendMissing(other)
	merged.Initialize()
	return merged
}

// appendMissing adds the fields of other that t lacks, keeping their
// identity flags. t must not be initialized.
func (t *PdxType) appendMissing(other *PdxType) {
	for _, f := range other.fields {
		if t.hasEqualField(f) {
			continue
		}
		if _, clash := t.fieldMap[f.Name]; clash {
			// same name, different kind: the local definition wins
			continue
		}
		nf, err := t.AddField(f.Name, f.Kind)
		if err == nil {
			nf.Identity = f.Identity
		}
	}
}
