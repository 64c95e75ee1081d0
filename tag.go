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
	"reflect"
	"strings"
)

// PdxTag represents parsed pdx struct tag options.
//
// Tag format: `pdx:"name,identity"` or `pdx:"-"`
//
// Options:
//   - name: PDX field name. Empty (default) uses the Go field name
//   - identity: the field takes part in instance equality and hashing
//
// Examples:
//
//	type Order struct {
//	    ID     int64   `pdx:"orderId,identity"` // renamed identity field
//	    Amount float64 `pdx:",identity"`        // identity, Go name
//	    Note   string                           // plain field
//	    Cache  []byte  `pdx:"-"`                // skipped
//	}
type PdxTag struct {
	Name     string // PDX field name, "" for the Go field name
	Identity bool
	Ignore   bool
	HasTag   bool
}

// ParsePdxTag parses the pdx struct tag of field.
func ParsePdxTag(field reflect.StructField) PdxTag {
	var tag PdxTag
	tagValue, ok := field.Tag.Lookup("pdx")
	if !ok {
		return tag
	}
	tag.HasTag = true
	if tagValue == "-" {
		tag.Ignore = true
		return tag
	}
	parts := strings.Split(tagValue, ",")
	tag.Name = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		switch strings.TrimSpace(part) {
		case "identity":
			tag.Identity = true
		case "ignore":
			tag.Ignore = true
		}
	}
	return tag
}

// FieldName returns the PDX name of field.
func (t PdxTag) FieldName(field reflect.StructField) string {
	if t.Name != "" {
		return t.Name
	}
	return field.Name
}

// ShouldIncludeField reports whether field is serialized: it must be
// exported and not tagged `pdx:"-"`.
func ShouldIncludeField(field reflect.StructField) bool {
	if !field.IsExported() {
		return false
	}
	return !ParsePdxTag(field).Ignore
}

// ValidatePdxTags checks that no two serialized fields of struct type t
// share a PDX name.
func ValidatePdxTags(t reflect.Type) error {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	names := make(map[string]string)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !ShouldIncludeField(field) {
			continue
		}
		name := ParsePdxTag(field).FieldName(field)
		if existing, ok := names[name]; ok {
			return InvalidStateErrorf("pdx field name %q is used by fields %s and %s", name, existing, field.Name)
		}
		names[name] = field.Name
	}
	return nil
}
