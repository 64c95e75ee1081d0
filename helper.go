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

import "github.com/sirupsen/logrus"

// serializePdx writes obj as a PDX payload through toData. Unread data kept
// for obj is replayed after the fields toData writes. When the type source
// reports an unknown type the cached types are dropped and the write is
// retried from the start, at most Config.MaxRetries times.
func (r *SerializationRegistry) serializePdx(buf *ByteBuffer, obj any, className string, toData func(PdxWriter) error) error {
	start := buf.WriterIndex()
	var unread *UnreadData
	if !r.config.IgnoreUnreadFields {
		unread = r.types.UnreadData(obj)
	}
	for attempt := 0; ; attempt++ {
		err := r.writePdx(buf, className, unread, toData)
		if err == nil || KindOf(err) != ErrKindUnknownPdxType || attempt >= r.config.MaxRetries {
			return err
		}
		r.logger.WithFields(logrus.Fields{
			"className": className,
			"attempt":   attempt + 1,
		}).WithError(err).Debug("retrying pdx serialization")
		r.types.clearTypes()
		buf.SetWriterIndex(start)
	}
}

func (r *SerializationRegistry) writePdx(buf *ByteBuffer, className string, unread *UnreadData, toData func(PdxWriter) error) error {
	w := newPdxWriter(r, buf, className)
	w.unread = unread
	if err := toData(w); err != nil {
		return err
	}
	_, err := w.complete()
	return err
}

// registerWrittenType returns the registered type with the shape of a type
// collected by a writer. The local type of the class is reused when it has
// the same shape; identity marks made by the writer are carried over.
func (r *SerializationRegistry) registerWrittenType(collected *PdxType) (*PdxType, error) {
	collected.Initialize()
	local := r.types.LocalType(collected.ClassName())
	if local != nil && local.TypeID() != 0 && local.Equal(collected) {
		copyIdentity(local, collected)
		return local, nil
	}
	t, err := r.types.DefineType(collected)
	if err != nil {
		return nil, err
	}
	if t != collected {
		copyIdentity(t, collected)
	}
	// types built without a domain class never become the local version
	if !t.NoDomainClass() && (local == nil || t.IsLocalTypeContains(local)) {
		r.types.SetLocalType(t)
	}
	return t, nil
}

func copyIdentity(dst, src *PdxType) {
	for _, f := range src.Fields() {
		if !f.Identity {
			continue
		}
		if d := dst.Field(f.Name); d != nil && !d.Identity {
			d.Identity = true
		}
	}
}

// deserializePdx reads a PDX payload; the PDX code has been consumed. The
// result is an *Instance when asInstance is set or nothing can build the
// domain object, otherwise the domain object read through a tracking
// reader, whose unread fields are kept for the next write of the object.
func (r *SerializationRegistry) deserializePdx(buf *ByteBuffer, asInstance bool) (any, error) {
	var err Error
	length := int(buf.ReadInt32(&err))
	typeID := buf.ReadInt32(&err)
	if e := err.TakeError(); e != nil {
		return nil, e
	}
	payload := buf.ReadBinary(length, &err)
	if e := err.TakeError(); e != nil {
		return nil, e
	}

	remote, e := r.types.Type(typeID)
	if e != nil {
		return nil, e
	}
	className := remote.ClassName()
	factory := r.PdxFactory(className)
	serializer := r.PdxSerializer()
	if asInstance || (factory == nil && serializer == nil) {
		return r.instanceOf(remote, payload)
	}

	local := r.types.LocalType(className)
	pr := newPdxReader(r, remote, local, payload)
	var reader PdxReader = pr
	var tracker *trackingReader
	if !r.config.IgnoreUnreadFields {
		tracker = newTrackingReader(pr)
		reader = tracker
	}
	var obj any
	if factory != nil {
		o := factory()
		e = o.FromData(reader)
		obj = o
	} else {
		obj, e = serializer.FromData(className, reader)
		if KindOf(e) == ErrKindUnregisteredType {
			return r.instanceOf(remote, payload)
		}
	}
	if e == nil {
		e = reader.Err()
	}
	if e != nil {
		return nil, e
	}

	if tracker != nil {
		if ud := tracker.ReadUnreadFields(); ud != nil {
			merged, e := r.types.MergedType(remote, local)
			if e != nil {
				return nil, e
			}
			ud.mergedTypeID = merged.TypeID()
			if !r.types.PutUnreadData(obj, ud) {
				r.logger.WithField("className", className).Debug("unread pdx fields dropped for a value without identity")
			}
		}
	}
	return obj, nil
}

// instanceOf wraps a copy of payload, which may belong to a reused buffer.
func (r *SerializationRegistry) instanceOf(t *PdxType, payload []byte) (any, error) {
	inst, err := newInstance(r, t, append([]byte(nil), payload...))
	if err != nil {
		return nil, err
	}
	return inst, nil
}
