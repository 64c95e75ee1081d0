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
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spaolacci/murmur3"
)

// PdxType is the schema of one version of one class: an ordered set of
// named fields plus the geometry that lets a reader seek to any field of a
// payload without scanning the fields before it.
//
// A PdxType is built with AddField, frozen with Initialize and read-only
// afterwards, apart from its type id and the fields' identity flags.
type PdxType struct {
	className     string
	noDomainClass bool
	typeID        atomic.Int32

	fields         []*PdxFieldType
	fieldMap       map[string]*PdxFieldType
	lastVarFieldID int32
	initialized    bool
	fingerprint    uint64

	// version reconciliation caches, keyed by the peer type they were
	// computed against
	mu            sync.Mutex
	r2lPeer       *PdxType
	remoteToLocal FieldMap
	unreadCount   int
	l2rPeer       *PdxType
	localToRemote FieldMap
}

// NewPdxType returns an empty type for className. Its type id is 0 until the
// type is defined through a TypeRegistry.
func NewPdxType(className string) *PdxType {
	return &PdxType{
		className:      className,
		fieldMap:       make(map[string]*PdxFieldType),
		lastVarFieldID: -1,
	}
}

func (t *PdxType) ClassName() string {
	return t.className
}

// TypeID returns the distributed-system id of the type, 0 if unassigned.
func (t *PdxType) TypeID() int32 {
	return t.typeID.Load()
}

func (t *PdxType) SetTypeID(id int32) {
	t.typeID.Store(id)
}

// NoDomainClass reports whether the type was built without a domain class,
// e.g. by an InstanceFactory.
func (t *PdxType) NoDomainClass() bool {
	return t.noDomainClass
}

func (t *PdxType) SetNoDomainClass(v bool) {
	t.noDomainClass = v
}

// AddField appends a field. Variable-length fields are numbered in order of
// appearance; fixed fields get VarID 0.
func (t *PdxType) AddField(name string, kind FieldKind) (*PdxFieldType, error) {
	if t.initialized {
		return nil, InvalidStateErrorf("type %s is initialized, cannot add field %s", t.className, name)
	}
	if !kind.Valid() {
		return nil, InvalidStateErrorf("field %s has unknown type id %d", name, int8(kind))
	}
	if _, ok := t.fieldMap[name]; ok {
		return nil, InvalidStateErrorf("Field: %s is already added to PdxWriter", name)
	}
	var varID int32
	if kind.IsVariable() {
		t.lastVarFieldID++
		varID = t.lastVarFieldID
	}
	f := newPdxFieldType(name, kind, int32(len(t.fields)), varID)
	t.fields = append(t.fields, f)
	t.fieldMap[name] = f
	return f, nil
}

// Initialize computes each field's RelativeOffset and VarLenOffsetIndex.
//
// Walking back to front, a variable field is addressed through its own
// offset table slot, a fixed field behind a variable field is addressed
// relative to that field's slot, and a fixed field behind every variable
// field is addressed relative to the end of the field data (slot -1).
// A second walk front to back places every field up to and including the
// first variable field at a direct offset from the start of the data.
func (t *PdxType) Initialize() {
	if t.initialized {
		return
	}
	foundVar := false
	var lastVarID int32
	var prev *PdxFieldType
	for i := len(t.fields) - 1; i >= 0; i-- {
		f := t.fields[i]
		if f.IsVariable {
			f.VarLenOffsetIndex = f.VarID
			f.RelativeOffset = 0
			foundVar = true
			lastVarID = f.VarID
		} else if foundVar {
			f.VarLenOffsetIndex = lastVarID
			f.RelativeOffset = prev.RelativeOffset - f.FixedSize
		} else {
			f.VarLenOffsetIndex = -1
			f.RelativeOffset = -f.FixedSize
			if prev != nil {
				f.RelativeOffset = prev.RelativeOffset - f.FixedSize
			}
		}
		prev = f
	}

	var fixed int32
	for _, f := range t.fields {
		if f.IsVariable {
			f.VarLenOffsetIndex = -1
			f.RelativeOffset = fixed
			break
		}
		f.VarLenOffsetIndex = 0
		f.RelativeOffset = fixed
		fixed += f.FixedSize
	}

	t.fingerprint = t.computeFingerprint()
	t.initialized = true
}

func (t *PdxType) Initialized() bool {
	return t.initialized
}

// Field returns the named field or nil when the type has no such field.
func (t *PdxType) Field(name string) *PdxFieldType {
	return t.fieldMap[name]
}

func (t *PdxType) FieldAt(index int) *PdxFieldType {
	return t.fields[index]
}

// Fields returns the fields in declaration order. The slice must not be
// modified.
func (t *PdxType) Fields() []*PdxFieldType {
	return t.fields
}

func (t *PdxType) NumFields() int {
	return len(t.fields)
}

func (t *PdxType) NumVarFields() int {
	return int(t.lastVarFieldID + 1)
}

// OffsetsCount is the number of offset table entries in a payload of this
// type; the first variable field needs none.
func (t *PdxType) OffsetsCount() int {
	if t.lastVarFieldID < 0 {
		return 0
	}
	return int(t.lastVarFieldID)
}

// FieldPosition returns where a field's bytes start within the field data
// of a payload whose offset table is offsets, with entries of offsetSize
// bytes, and whose field data is length bytes long.
func (t *PdxType) FieldPosition(f *PdxFieldType, offsets []byte, offsetSize, length int) int {
	if f.IsVariable {
		if f.VarLenOffsetIndex == -1 {
			return int(f.RelativeOffset)
		}
		return t.readOffset(offsets, f.VarLenOffsetIndex, offsetSize)
	}
	switch {
	case f.RelativeOffset >= 0:
		return int(f.RelativeOffset)
	case f.VarLenOffsetIndex == -1:
		return length + int(f.RelativeOffset)
	default:
		return t.readOffset(offsets, f.VarLenOffsetIndex, offsetSize) + int(f.RelativeOffset)
	}
}

// NextFieldPosition returns where the bytes of the field at index end.
func (t *PdxType) NextFieldPosition(index int, offsets []byte, offsetSize, length int) int {
	if index+1 >= len(t.fields) {
		return length
	}
	return t.FieldPosition(t.fields[index+1], offsets, offsetSize, length)
}

// offsets are written back to front, so the slot of variable field varID
// is lastVarFieldID - varID entries from the start of the table.
func (t *PdxType) readOffset(offsets []byte, varID int32, offsetSize int) int {
	pos := int(t.lastVarFieldID-varID) * offsetSize
	if pos < 0 || pos+offsetSize > len(offsets) {
		return -1
	}
	switch offsetSize {
	case 1:
		return int(offsets[pos])
	case 2:
		return int(uint16(offsets[pos])<<8 | uint16(offsets[pos+1]))
	default:
		return int(int32(uint32(offsets[pos])<<24 | uint32(offsets[pos+1])<<16 |
			uint32(offsets[pos+2])<<8 | uint32(offsets[pos+3])))
	}
}

// IdentityFields returns the fields marked identity, sorted by name. When
// no field is marked, every field takes part in identity.
func (t *PdxType) IdentityFields() []*PdxFieldType {
	var result []*PdxFieldType
	for _, f := range t.fields {
		if f.Identity {
			result = append(result, f)
		}
	}
	if len(result) == 0 {
		result = append(result, t.fields...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// HasIdentityFields reports whether any field is explicitly marked identity.
func (t *PdxType) HasIdentityFields() bool {
	for _, f := range t.fields {
		if f.Identity {
			return true
		}
	}
	return false
}

// Fingerprint hashes the class name and the ordered (name, kind) list. Two
// types with the same fingerprint are candidates for Equal.
func (t *PdxType) Fingerprint() uint64 {
	if t.initialized {
		return t.fingerprint
	}
	return t.computeFingerprint()
}

func (t *PdxType) computeFingerprint() uint64 {
	buf := NewOutputBuffer(64)
	buf.WriteBinary([]byte(t.className))
	buf.WriteByte_(0)
	for _, f := range t.fields {
		buf.WriteBinary([]byte(f.Name))
		buf.WriteByte_(0)
		buf.WriteInt8(int8(f.Kind))
	}
	return murmur3.Sum64WithSeed(buf.Bytes(), 47)
}

// Equal reports whether both types describe the same class with the same
// fields in the same order. Type ids are not compared.
func (t *PdxType) Equal(other *PdxType) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.className != other.className || t.noDomainClass != other.noDomainClass ||
		len(t.fields) != len(other.fields) {
		return false
	}
	for i, f := range t.fields {
		if !f.Equal(other.fields[i]) {
			return false
		}
	}
	return true
}

// clone copies the type and its fields, leaving it open for AddField.
func (t *PdxType) clone() *PdxType {
	c := NewPdxType(t.className)
	c.noDomainClass = t.noDomainClass
	c.lastVarFieldID = t.lastVarFieldID
	c.fields = make([]*PdxFieldType, len(t.fields))
	for i, f := range t.fields {
		cf := f.clone()
		c.fields[i] = cf
		c.fieldMap[cf.Name] = cf
	}
	return c
}

func (t *PdxType) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PdxType[%s id=%d](", t.className, t.TypeID())
	for i, f := range t.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteByte(':')
		sb.WriteString(f.Kind.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// ============================================================================
// Definition wire format
// ============================================================================

// ToData writes the type definition as the Java PdxType DataSerializable so
// it can be shipped to a peer that has not seen this class version.
func (t *PdxType) ToData(buf *ByteBuffer) {
	buf.WriteByte_(byte(DataSerializableCode))
	buf.WriteByte_(byte(Class))
	buf.WriteString(pdxTypeJavaClass)
	buf.WriteString(t.className)
	buf.WriteBool(t.noDomainClass)
	buf.WriteInt32(t.TypeID())
	buf.WriteInt32(int32(t.OffsetsCount()))
	buf.WriteArrayLen(int32(len(t.fields)))
	for _, f := range t.fields {
		f.ToData(buf)
	}
}

// FromData reads a definition written by ToData and initializes the type.
func (t *PdxType) FromData(buf *ByteBuffer) error {
	var err Error
	if code := DSCode(buf.ReadByte(&err)); err.Ok() && code != DataSerializableCode {
		return InvalidStateErrorf("pdx type definition starts with code %d", code)
	}
	if code := DSCode(buf.ReadByte(&err)); err.Ok() && code != Class {
		return InvalidStateErrorf("pdx type definition has class code %d", code)
	}
	buf.ReadString(&err)
	t.className = buf.ReadString(&err)
	t.noDomainClass = buf.ReadBool(&err)
	t.SetTypeID(buf.ReadInt32(&err))
	buf.ReadInt32(&err) // offsets count, derived from the fields
	n := buf.ReadArrayLen(&err)
	if e := err.CheckError(); e != nil {
		return e
	}
	if n < 0 || int(n) > buf.Remaining() {
		return InvalidStateErrorf("pdx type %s declares %d fields", t.className, n)
	}
	t.fields = make([]*PdxFieldType, 0, n)
	t.fieldMap = make(map[string]*PdxFieldType, n)
	t.lastVarFieldID = -1
	t.initialized = false
	for i := int32(0); i < n; i++ {
		f := &PdxFieldType{}
		if e := f.FromData(buf); e != nil {
			return e
		}
		if f.IsVariable && f.VarID > t.lastVarFieldID {
			t.lastVarFieldID = f.VarID
		}
		t.fields = append(t.fields, f)
		t.fieldMap[f.Name] = f
	}
	t.Initialize()
	return nil
}

// ReadPdxType decodes a type definition written by PdxType.ToData.
func ReadPdxType(buf *ByteBuffer) (*PdxType, error) {
	t := NewPdxType("")
	if err := t.FromData(buf); err != nil {
		return nil, err
	}
	return t, nil
}
