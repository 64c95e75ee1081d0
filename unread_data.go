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

import "time"

// UnreadData holds the fields of a received payload that the local code
// did not read. Writing the same object again replays them byte for byte,
// so fields added by newer versions of a class survive a round trip
// through older code.
type UnreadData struct {
	remote       *PdxType
	indexes      []int
	fields       [][]byte
	variable     []bool
	mergedTypeID int32
	expiresAt    time.Time
}

// captureUnreadData copies the bytes of every field of r not marked in
// visited.
func captureUnreadData(r *pdxReader, visited []bool) *UnreadData {
	var m FieldMap
	if r.local != nil {
		m = r.ptype.RemoteToLocal(r.local)
	}
	ud := &UnreadData{remote: r.ptype}
	for i, seen := range visited {
		if seen {
			continue
		}
		f := r.ptype.FieldAt(i)
		pos := r.position(f)
		end := r.ptype.NextFieldPosition(i, r.offsets, r.offsetSize, len(r.data))
		if pos < 0 || end < pos || end > len(r.data) {
			return nil
		}
		variable := f.IsVariable
		if mapping, ok := m.Get(i); ok && mapping.Kind == MissingLocally {
			variable = mapping.Variable
		}
		ud.indexes = append(ud.indexes, i)
		ud.fields = append(ud.fields, append([]byte(nil), r.data[pos:end]...))
		ud.variable = append(ud.variable, variable)
	}
	if len(ud.indexes) == 0 {
		return nil
	}
	return ud
}

// Type returns the type of the payload the data was read from.
func (ud *UnreadData) Type() *PdxType {
	return ud.remote
}

// FieldNames returns the names of the unread fields in payload order.
func (ud *UnreadData) FieldNames() []string {
	names := make([]string, len(ud.indexes))
	for i, idx := range ud.indexes {
		names[i] = ud.remote.FieldAt(idx).Name
	}
	return names
}

// Raw returns the encoded bytes of an unread field, nil if name was read.
func (ud *UnreadData) Raw(name string) []byte {
	for i, idx := range ud.indexes {
		if ud.remote.FieldAt(idx).Name == name {
			return ud.fields[i]
		}
	}
	return nil
}

func (ud *UnreadData) Len() int {
	return len(ud.indexes)
}

// MergedTypeID is the id of the type holding both the local fields and the
// unread ones.
func (ud *UnreadData) MergedTypeID() int32 {
	return ud.mergedTypeID
}

func (ud *UnreadData) ExpiresAt() time.Time {
	return ud.expiresAt
}

// replay appends the unread fields after the fields written so far.
func (ud *UnreadData) replay(w *pdxWriter) {
	for i, idx := range ud.indexes {
		w.appendRaw(ud.remote.FieldAt(idx), ud.fields[i], ud.variable[i])
	}
}
