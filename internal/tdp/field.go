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
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/xunsafe"
)

// Flags are boolean properties of a [Field].
type Flags uint8

const (
	// FlagExtension marks a field stored out-of-line in the message's
	// extension window rather than at a fixed offset.
	FlagExtension Flags = 1 << iota

	// FlagMap marks a field whose value is a pointer to a map container.
	FlagMap
)

// Field is the compact descriptor for one field of a message type.
//
// Exactly one presence mechanism applies to a field, encoded in Presence:
//
//   - Presence > 0: the field has a hasbit, and Presence is its bit index
//     within the message's field region.
//   - Presence < 0: the field is a oneof member, and ^Presence is the byte
//     offset of the 4-byte oneof case cell it shares with the rest of its
//     group.
//   - Presence == 0: implicit presence; the field is "set" whenever its
//     stored bytes are non-zero.
type Field struct {
	// Byte offset of the field's storage within the message's field region.
	// Unused for extension fields.
	Offset uint32

	// Presence encoding; see above.
	Presence int32

	// The field's number. Never zero. For oneof members this doubles as the
	// discriminant value written into the group's case cell.
	Number uint32

	Flags Flags

	// The fixed-width shape used to copy and zero-test the field's value.
	Rep Rep

	// The logical field kind. The accessors never inspect this beyond having
	// used it to pick Rep and a default value.
	Kind protoreflect.Kind
}

// IsExtension reports whether this field lives in the extension window.
func (f *Field) IsExtension() bool { return f.Flags&FlagExtension != 0 }

// IsMap reports whether this field's value is a map container pointer.
func (f *Field) IsMap() bool { return f.Flags&FlagMap != 0 }

// InOneof reports whether this field is a member of a oneof group.
func (f *Field) InOneof() bool { return f.Presence < 0 }

// HasPresence reports whether this field's "is set" state is tracked at all.
func (f *Field) HasPresence() bool { return f.Presence != 0 }

// HasbitIndex returns the bit index of this field's hasbit.
//
// Only meaningful when Presence > 0.
func (f *Field) HasbitIndex() uint32 {
	debug.Assert(f.Presence > 0, "field %d has no hasbit", f.Number)
	return uint32(f.Presence)
}

// OneofCaseOffset returns the byte offset of this field's oneof case cell.
//
// Only meaningful when Presence < 0.
func (f *Field) OneofCaseOffset() uint32 {
	debug.Assert(f.Presence < 0, "field %d is not in a oneof", f.Number)
	return uint32(^f.Presence)
}

// Extension is the descriptor for an extension field.
//
// Its pointer identity is the lookup key into a message's extension window,
// so extensions must not be copied once in use.
type Extension struct {
	// Must remain the first member: [AsExtension] casts between a *Field
	// pointing at this member and the containing *Extension.
	Field Field

	_ xunsafe.NoCopy
}

// AsExtension recovers the extension descriptor a field descriptor is
// embedded in.
//
// Calling this on a field that is not the Field member of an [Extension] is
// undefined behavior; debug builds assert the extension flag.
func AsExtension(f *Field) *Extension {
	debug.Assert(f.IsExtension(), "field %d is not an extension", f.Number)
	return xunsafe.Cast[Extension](f)
}
