// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tdp

import (
	"fmt"

	"buf.build/go/minipb/internal/xunsafe"
)

// Type is the field table for one message type.
//
// Size is the number of bytes of field storage a message of this type needs,
// not counting the message header. Field offsets, hasbit bytes and oneof case
// cells all index into that region.
type Type struct {
	_ xunsafe.NoCopy

	Size uint32

	fields []Field
}

// Len returns the number of fields in this type.
func (t *Type) Len() int { return len(t.fields) }

// Field returns the ith field of this type.
//
// The returned pointer is into the type's field table and stays valid for the
// lifetime of the type.
func (t *Type) Field(i int) *Field { return &t.fields[i] }

// TypeBuilder assembles a [Type] from explicitly laid-out fields.
//
// The builder is the trust boundary for every invariant the accessor layer
// assumes but never re-checks: offsets in range, one presence mechanism per
// field, disjoint hasbits, and tracked presence for any field with a non-zero
// default. It does not compute layouts; offsets come from the caller, usually
// a codegen step.
type TypeBuilder struct {
	size     uint32
	fields   []Field
	defaults [][]byte
	err      error
}

// NewTypeBuilder returns a builder for a type with the given field-region
// size in bytes.
func NewTypeBuilder(size int) *TypeBuilder {
	b := &TypeBuilder{size: uint32(size)}
	if size < 0 {
		b.fail("negative size %d", size)
	}
	return b
}

// Field adds a field with an all-zero default value.
func (b *TypeBuilder) Field(f Field) *TypeBuilder {
	return b.FieldWithDefault(f, nil)
}

// FieldWithDefault adds a field whose default value is the raw bit pattern
// def. A nil def means the zero value; otherwise len(def) must equal the
// field's rep width.
//
// The default bytes are only used for validation: callers of the accessor
// layer pass the same default again on every get, and the builder's job is to
// reject the one combination the get path cannot tolerate, a non-zero default
// on a field with no tracked presence.
func (b *TypeBuilder) FieldWithDefault(f Field, def []byte) *TypeBuilder {
	if b.err != nil {
		return b
	}

	switch {
	case f.Number == 0:
		b.fail("field number must be non-zero")
	case f.IsExtension():
		b.fail("field %d: extensions do not belong to a type's fixed layout", f.Number)
	case f.Rep >= numReps:
		b.fail("field %d: invalid rep %d", f.Number, f.Rep)
	case f.IsMap() && f.Rep != Rep8Byte:
		b.fail("field %d: map fields must have pointer rep", f.Number)
	case !f.IsMap() && f.Rep != RepForKind(f.Kind):
		b.fail("field %d: rep %v does not match kind %v", f.Number, f.Rep, f.Kind)
	case uint64(f.Offset)+uint64(f.Rep.Size()) > uint64(b.size):
		b.fail("field %d: storage [%d:%d] outside region of %d bytes",
			f.Number, f.Offset, int(f.Offset)+f.Rep.Size(), b.size)
	}
	if b.err != nil {
		return b
	}

	for i := range b.fields {
		prev := &b.fields[i]
		if prev.Number == f.Number {
			b.fail("duplicate field number %d", f.Number)
			return b
		}
		if f.Presence > 0 && prev.Presence == f.Presence {
			b.fail("field %d: hasbit %d already used by field %d",
				f.Number, f.Presence, prev.Number)
			return b
		}
	}

	switch {
	case f.Presence > 0 && f.HasbitIndex()/8 >= b.size:
		b.fail("field %d: hasbit %d outside region of %d bytes",
			f.Number, f.Presence, b.size)
	case f.Presence < 0 && (uint64(f.OneofCaseOffset())+4 > uint64(b.size) ||
		f.OneofCaseOffset()%4 != 0):
		b.fail("field %d: bad oneof case cell offset %d", f.Number, f.OneofCaseOffset())
	}
	if b.err != nil {
		return b
	}

	if def != nil {
		if len(def) != f.Rep.Size() {
			b.fail("field %d: default is %d bytes, want %d", f.Number, len(def), f.Rep.Size())
			return b
		}
		if IsNonZero(&def[0], f.Rep) && !f.HasPresence() {
			b.fail("field %d: non-zero default requires tracked presence", f.Number)
			return b
		}
	}

	b.fields = append(b.fields, f)
	b.defaults = append(b.defaults, def)
	return b
}

// Build validates the accumulated fields and returns the finished type.
func (b *TypeBuilder) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Type{Size: b.size, fields: b.fields}, nil
}

func (b *TypeBuilder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("minipb: "+format, args...)
	}
}

// NewExtension validates and allocates an extension descriptor.
//
// Extension values live out-of-line, so f.Offset and f.Presence must be zero;
// presence for an extension is the existence of its entry.
func NewExtension(f Field) (*Extension, error) {
	f.Flags |= FlagExtension
	switch {
	case f.Number == 0:
		return nil, fmt.Errorf("minipb: extension number must be non-zero")
	case f.Rep >= numReps:
		return nil, fmt.Errorf("minipb: extension %d: invalid rep %d", f.Number, f.Rep)
	case f.Offset != 0 || f.Presence != 0:
		return nil, fmt.Errorf("minipb: extension %d: offset and presence must be zero", f.Number)
	case f.IsMap():
		return nil, fmt.Errorf("minipb: extension %d: map extensions are not supported", f.Number)
	case f.Rep != RepForKind(f.Kind):
		return nil, fmt.Errorf("minipb: extension %d: rep %v does not match kind %v", f.Number, f.Rep, f.Kind)
	}
	return &Extension{Field: f}, nil
}
