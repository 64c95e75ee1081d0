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

import "fmt"

// FieldKind is the wire type of a PDX field.
type FieldKind int8

const (
	BOOLEAN FieldKind = iota
	BYTE
	CHAR
	SHORT
	INT
	LONG
	FLOAT
	DOUBLE
	DATE
	STRING
	OBJECT
	BOOLEAN_ARRAY
	CHAR_ARRAY
	BYTE_ARRAY
	SHORT_ARRAY
	INT_ARRAY
	LONG_ARRAY
	FLOAT_ARRAY
	DOUBLE_ARRAY
	STRING_ARRAY
	OBJECT_ARRAY
	ARRAY_OF_BYTE_ARRAYS
)

var fieldKindNames = [...]string{
	BOOLEAN:              "BOOLEAN",
	BYTE:                 "BYTE",
	CHAR:                 "CHAR",
	SHORT:                "SHORT",
	INT:                  "INT",
	LONG:                 "LONG",
	FLOAT:                "FLOAT",
	DOUBLE:               "DOUBLE",
	DATE:                 "DATE",
	STRING:               "STRING",
	OBJECT:               "OBJECT",
	BOOLEAN_ARRAY:        "BOOLEAN_ARRAY",
	CHAR_ARRAY:           "CHAR_ARRAY",
	BYTE_ARRAY:           "BYTE_ARRAY",
	SHORT_ARRAY:          "SHORT_ARRAY",
	INT_ARRAY:            "INT_ARRAY",
	LONG_ARRAY:           "LONG_ARRAY",
	FLOAT_ARRAY:          "FLOAT_ARRAY",
	DOUBLE_ARRAY:         "DOUBLE_ARRAY",
	STRING_ARRAY:         "STRING_ARRAY",
	OBJECT_ARRAY:         "OBJECT_ARRAY",
	ARRAY_OF_BYTE_ARRAYS: "ARRAY_OF_BYTE_ARRAYS",
}

// Valid reports whether k is one of the defined kinds.
func (k FieldKind) Valid() bool {
	return k >= BOOLEAN && k <= ARRAY_OF_BYTE_ARRAYS
}

func (k FieldKind) String() string {
	if k.Valid() {
		return fieldKindNames[k]
	}
	return fmt.Sprintf("FieldKind(%d)", int8(k))
}

// IsVariable reports whether values of this kind have no fixed width and
// are therefore addressed through the offset table.
func (k FieldKind) IsVariable() bool {
	return k >= STRING
}

// FixedSize returns the encoded width of a fixed kind, -1 for variable kinds.
func (k FieldKind) FixedSize() int32 {
	switch k {
	case BOOLEAN, BYTE:
		return 1
	case CHAR, SHORT:
		return 2
	case INT, FLOAT:
		return 4
	case LONG, DOUBLE, DATE:
		return 8
	default:
		return -1
	}
}

// defaultBytes is what a writer emits for a field holding the kind's
// default value. Instance equality compares absent fields against it.
func (k FieldKind) defaultBytes() []byte {
	switch k {
	case BOOLEAN, BYTE:
		return []byte{0}
	case CHAR, SHORT:
		return []byte{0, 0}
	case INT, FLOAT:
		return []byte{0, 0, 0, 0}
	case LONG, DOUBLE:
		return []byte{0, 0, 0, 0, 0, 0, 0, 0}
	case DATE:
		return []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	case STRING:
		return []byte{byte(CacheableNullString)}
	case OBJECT:
		return []byte{byte(NullObj)}
	default:
		// null array
		return []byte{0xFF}
	}
}

// PdxFieldType describes one field of a PdxType: its name, kind and the
// geometry used to locate its bytes inside a payload.
type PdxFieldType struct {
	Name       string
	Kind       FieldKind
	SequenceID int32
	// VarID is the index among variable-length fields, 0 for fixed fields.
	VarID      int32
	IsVariable bool
	FixedSize  int32
	Identity   bool

	// RelativeOffset and VarLenOffsetIndex are computed by PdxType.Initialize.
	RelativeOffset    int32
	VarLenOffsetIndex int32
}

func newPdxFieldType(name string, kind FieldKind, sequenceID, varID int32) *PdxFieldType {
	return &PdxFieldType{
		Name:       name,
		Kind:       kind,
		SequenceID: sequenceID,
		VarID:      varID,
		IsVariable: kind.IsVariable(),
		FixedSize:  kind.FixedSize(),
	}
}

// Equal reports whether both descriptors have the same name and kind.
func (f *PdxFieldType) Equal(other *PdxFieldType) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Kind == other.Kind && f.Name == other.Name
}

func (f *PdxFieldType) clone() *PdxFieldType {
	c := *f
	return &c
}

func (f *PdxFieldType) String() string {
	return fmt.Sprintf("%s:%s#%d", f.Name, f.Kind, f.SequenceID)
}

// ToData writes the descriptor in the Geode field definition layout.
func (f *PdxFieldType) ToData(buf *ByteBuffer) {
	buf.WriteString(f.Name)
	buf.WriteInt32(f.SequenceID)
	buf.WriteInt32(f.VarID)
	buf.WriteInt8(int8(f.Kind))
	buf.WriteInt32(f.RelativeOffset)
	buf.WriteInt32(f.VarLenOffsetIndex)
	buf.WriteBool(f.Identity)
}

// FromData reads a descriptor written by ToData.
func (f *PdxFieldType) FromData(buf *ByteBuffer) error {
	var err Error
	f.Name = buf.ReadString(&err)
	f.SequenceID = buf.ReadInt32(&err)
	f.VarID = buf.ReadInt32(&err)
	kind := FieldKind(buf.ReadInt8(&err))
	f.RelativeOffset = buf.ReadInt32(&err)
	f.VarLenOffsetIndex = buf.ReadInt32(&err)
	f.Identity = buf.ReadBool(&err)
	if e := err.CheckError(); e != nil {
		return e
	}
	if !kind.Valid() {
		return InvalidStateErrorf("field %q has unknown type id %d", f.Name, int8(kind))
	}
	f.Kind = kind
	f.IsVariable = kind.IsVariable()
	f.FixedSize = kind.FixedSize()
	return nil
}
