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

package minipb

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/dynamic"
	"buf.build/go/minipb/internal/rawmap"
	"buf.build/go/minipb/internal/tdp"
)

// Arena owns the memory of every message, extension entry and map container
// allocated against it. Nothing is ever freed individually; dropping all
// pointers into the arena releases everything at once.
//
// A zero Arena is empty and ready to use.
type Arena struct {
	raw arena.Arena
}

// NewArena returns a fresh arena.
func NewArena() *Arena { return new(Arena) }

// SetLimit caps the total bytes this arena may request from the Go allocator.
// Once the cap is hit, allocating operations report failure. Zero removes the
// cap.
func (a *Arena) SetLimit(n int) { a.raw.SetLimit(n) }

// Free resets the arena for reuse. Nothing allocated from it may be touched
// afterwards.
func (a *Arena) Free() { a.raw.Free() }

// Type is an immutable field table describing one message type.
type Type struct {
	raw *tdp.Type
}

// Size returns the type's field-region size in bytes.
func (t Type) Size() int { return int(t.raw.Size) }

// FieldCount returns the number of fields in the table.
func (t Type) FieldCount() int { return t.raw.Len() }

// Field returns the ith field in table order.
func (t Type) Field(i int) Field { return Field{t.raw.Field(i)} }

// New allocates a fresh, all-unset message of this type on a.
//
// Returns false if the arena's budget is exhausted.
func (t Type) New(a *Arena) (Message, bool) {
	m := dynamic.New(t.raw, &a.raw)
	if m == nil {
		return Message{}, false
	}
	return Message{m}, true
}

// Field identifies one field of a message type. It is freely copyable; two
// Fields obtained from the same table entry are interchangeable.
type Field struct {
	raw *tdp.Field
}

// Number returns the field's number.
func (f Field) Number() uint32 { return f.raw.Number }

// Kind returns the field's logical kind.
func (f Field) Kind() protoreflect.Kind { return f.raw.Kind }

// Extension identifies an extension field. Unlike [Field], an Extension's
// identity matters: it is the lookup key into each message's extension
// storage.
type Extension struct {
	raw *tdp.Extension
}

// Field returns the extension's field descriptor, for use with the unified
// accessors.
func (x Extension) Field() Field { return Field{&x.raw.Field} }

// Number returns the extension's field number.
func (x Extension) Number() uint32 { return x.raw.Field.Number }

// NewExtension creates an extension descriptor for a scalar or string field
// of the given kind.
func NewExtension(number uint32, kind protoreflect.Kind) (Extension, error) {
	x, err := tdp.NewExtension(tdp.Field{
		Number: number,
		Rep:    tdp.RepForKind(kind),
		Kind:   kind,
	})
	if err != nil {
		return Extension{}, err
	}
	return Extension{x}, nil
}

// Message is a dynamic message value on some arena.
type Message struct {
	raw *dynamic.Message
}

// Map is the container behind a map-valued field: fixed-width keys and values
// compared as raw bit patterns, in unspecified order.
type Map struct {
	raw *rawmap.Map
}

// Len returns the number of entries in the map.
func (m Map) Len() int { return m.raw.Len() }

// Presence encodings for [TypeBuilder] fields.

// Implicit is the presence encoding of fields with no tracked presence: the
// field reads as set whenever its stored bytes are non-zero.
const Implicit int32 = 0

// Hasbit returns the presence encoding for a field tracked by the hasbit with
// the given bit index.
func Hasbit(idx uint32) int32 { return int32(idx) }

// OneofCase returns the presence encoding for a member of the oneof group
// whose 4-byte case cell sits at the given byte offset. Every member of one
// group uses the same offset.
func OneofCase(offset uint32) int32 { return ^int32(offset) }

// TypeBuilder assembles a message type from an explicit layout.
//
// The builder enforces every invariant the accessors assume: offsets and
// presence cells in range, hasbits disjoint, field numbers unique and
// non-zero, and tracked presence wherever a non-zero default is declared.
// Errors stick; Build reports the first one.
type TypeBuilder struct {
	raw tdp.TypeBuilder
}

// NewTypeBuilder returns a builder for a type whose field region is size
// bytes.
func NewTypeBuilder(size int) *TypeBuilder {
	b := new(TypeBuilder)
	b.raw = *tdp.NewTypeBuilder(size)
	return b
}

// Field adds a field with an all-zero default.
func (b *TypeBuilder) Field(number uint32, kind protoreflect.Kind, offset uint32, presence int32) *TypeBuilder {
	b.raw.Field(tdp.Field{
		Offset:   offset,
		Presence: presence,
		Number:   number,
		Rep:      tdp.RepForKind(kind),
		Kind:     kind,
	})
	return b
}

// FieldWithDefault adds a field whose default is the raw bit pattern def,
// which must be the field's rep width. Declaring a non-zero default requires
// tracked presence.
func (b *TypeBuilder) FieldWithDefault(number uint32, kind protoreflect.Kind, offset uint32, presence int32, def []byte) *TypeBuilder {
	b.raw.FieldWithDefault(tdp.Field{
		Offset:   offset,
		Presence: presence,
		Number:   number,
		Rep:      tdp.RepForKind(kind),
		Kind:     kind,
	}, def)
	return b
}

// MapField adds a map-valued field. Map fields have implicit presence and
// store a pointer to their container, created lazily by [GetOrCreateMap].
func (b *TypeBuilder) MapField(number uint32, offset uint32) *TypeBuilder {
	b.raw.Field(tdp.Field{
		Offset: offset,
		Number: number,
		Flags:  tdp.FlagMap,
		Rep:    tdp.Rep8Byte,
		Kind:   protoreflect.MessageKind,
	})
	return b
}

// Build returns the finished type, or the first error the builder hit.
func (b *TypeBuilder) Build() (Type, error) {
	t, err := b.raw.Build()
	if err != nil {
		return Type{}, err
	}
	return Type{t}, nil
}
