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

package dynamic

import (
	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/rawmap"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
	"buf.build/go/minipb/internal/xunsafe/layout"
)

// These are the universal accessors for message fields. They look branchy,
// but every branch is on descriptor state: when the descriptor is a
// compile-time constant (a struct literal in generated code) the branches
// fold away and ideal code remains. Reflection and generated code alike call
// the unified Get/Set/Clear/Has entry points; only a wire codec would need to
// be cleverer.
//
// Raw values move through untyped def/val/out pointers, each of which must
// point at the field's rep width of bytes. For the typed, monomorphized
// variants, see the accessors in the root package.

// Has reports whether f is present in m.
//
// Requires a field with tracked presence; for extensions, presence is entry
// existence.
func (m *Message) Has(f *tdp.Field) bool {
	if f.IsExtension() {
		return m.HasExtension(tdp.AsExtension(f))
	}
	return m.HasField(f)
}

// Get copies f's value into out, or def if f is not present.
func (m *Message) Get(f *tdp.Field, def, out *byte) {
	if f.IsExtension() {
		m.GetExtension(tdp.AsExtension(f), def, out)
	} else {
		m.GetField(f, def, out)
	}
}

// Set writes the value at val into f and records its presence.
//
// The arena may be nil for non-extension fields, and the result may then be
// ignored: setting a plain field always succeeds. For extensions a false
// return means the arena's budget was exhausted and nothing changed.
func (m *Message) Set(f *tdp.Field, val *byte, a *arena.Arena) bool {
	if f.IsExtension() {
		return m.SetExtension(tdp.AsExtension(f), val, a)
	}
	m.SetField(f, val)
	return true
}

// Clear removes f's presence and resets its storage.
func (m *Message) Clear(f *tdp.Field) {
	if f.IsExtension() {
		m.ClearExtension(tdp.AsExtension(f))
	} else {
		m.ClearField(f)
	}
}

// HasField reports whether the plain field f is present in m.
//
// Asking this of an implicit-presence field is a programming error; the
// answer would depend on bytes this layer defines no meaning for.
func (m *Message) HasField(f *tdp.Field) bool {
	debug.Assert(f.HasPresence(), "has() on presenceless field %d", f.Number)
	if f.InOneof() {
		return *m.oneofCase(f) == f.Number
	}
	return m.getHas(f)
}

// GetField copies the plain field f's value into out, or def if f is not
// present.
//
// The has-check runs only when it can matter: always for oneof members,
// whose storage may alias another active member's bytes, and for fields with
// a non-zero default, whose unset storage does not equal that default. An
// implicit-presence field with a zero default skips the bitmap entirely,
// since its unset storage already is the default. A non-zero default on a
// presenceless field would make the has-check assert; the table builder
// rejects that combination.
func (m *Message) GetField(f *tdp.Field, def, out *byte) {
	if (f.InOneof() || tdp.IsNonZero(def, f.Rep)) && !m.HasField(f) {
		tdp.CopyValue(out, def, f.Rep)
		return
	}
	tdp.CopyValue(out, m.fieldPtr(f.Offset), f.Rep)
}

// SetField writes the value at val into the plain field f and records its
// presence. Never fails, never allocates.
func (m *Message) SetField(f *tdp.Field, val *byte) {
	m.setPresence(f)
	tdp.CopyValue(m.fieldPtr(f.Offset), val, f.Rep)
}

// ClearField removes the plain field f's presence and zero-fills its
// storage.
//
// Clearing a oneof member that is not the group's active member is a total
// no-op: the shared storage holds another member's live value.
func (m *Message) ClearField(f *tdp.Field) {
	if f.Presence > 0 {
		m.clearHas(f)
	} else if f.InOneof() {
		c := m.oneofCase(f)
		if *c != f.Number {
			return
		}
		*c = 0
	}

	var zeros [tdp.MaxRepSize]byte
	tdp.CopyValue(m.fieldPtr(f.Offset), &zeros[0], f.Rep)
}

// GetOrCreateMap returns the map container stored in f, constructing one on
// the given arena if the slot is still nil.
//
// A second call on the same field returns the same container without
// allocating. Returns nil if construction exhausted the arena's budget.
func (m *Message) GetOrCreateMap(f *tdp.Field, keySize, valSize int, a *arena.Arena) *rawmap.Map {
	debug.Assert(f.IsMap() && !f.IsExtension(), "field %d is not a map field", f.Number)
	debug.Assert(f.Rep.Size() == layout.Size[*rawmap.Map](), "field %d has non-pointer rep %v", f.Number, f.Rep)

	var mp, def *rawmap.Map
	m.GetField(f, xunsafe.Cast[byte](&def), xunsafe.Cast[byte](&mp))

	// A placeholder in the slot means a table-construction layer pre-filled
	// it and never materialized the real container; treating it as a live
	// map would scribble on shared state.
	debug.Assert(mp != rawmap.Placeholder(), "placeholder map in field %d", f.Number)

	if mp == nil {
		mp = rawmap.New(a, keySize, valSize)
		if mp == nil {
			return nil
		}
		m.SetField(f, xunsafe.Cast[byte](&mp))
	}
	return mp
}
