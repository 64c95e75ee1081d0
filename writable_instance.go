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

// WritableInstance is an Instance whose fields can be replaced. Every
// SetField swaps in a new Instance that shares the payload and earlier
// edits with the previous one, so Instances handed out before stay as they
// were. The edits reach the wire when the instance is serialized.
type WritableInstance struct {
	*Instance
}

// SetField replaces the value of a field. value must match the field's
// kind, except that nil clears a variable-length field and any value can
// be stored in an OBJECT field.
func (w *WritableInstance) SetField(name string, value any) error {
	f := w.ptype.Field(name)
	if f == nil {
		return InvalidStateErrorf("PdxInstance doesn't have field %s", name)
	}
	var fv FieldValue
	switch {
	case f.Kind == OBJECT:
		if ov, ok := value.(ObjectValue); ok {
			fv = ov
		} else {
			fv = ObjectValue{V: value}
		}
	case value == nil && f.IsVariable:
		fv = ZeroValue(f.Kind)
	default:
		fv = ValueOf(value)
	}
	if fv.Kind() != f.Kind {
		return InvalidStateErrorf("PdxInstance doesn't have field %s or type of field not matched: field is %s, value is %s",
			name, f.Kind, fv.Kind())
	}
	w.Instance = w.Instance.withEdit(int(f.SequenceID), fv)
	return nil
}

// Snapshot returns the instance as it is now. Later SetField calls do not
// affect it.
func (w *WritableInstance) Snapshot() *Instance {
	return w.Instance
}
