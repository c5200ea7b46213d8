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
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
)

// Hasbits are a bitmap embedded in the field region; the table builder
// guarantees every hasbit byte is in range and that no two fields of a type
// share a bit. Oneof case cells are 4-byte words shared by every member of a
// group: zero means no member is set, otherwise the cell holds the active
// member's field number.

func hasbitOffset(idx uint32) uint32 { return idx / 8 }

func hasbitMask(idx uint32) byte { return 1 << (idx % 8) }

// getHas reads f's hasbit. Requires f.Presence > 0.
func (m *Message) getHas(f *tdp.Field) bool {
	idx := f.HasbitIndex()
	return *m.fieldPtr(hasbitOffset(idx))&hasbitMask(idx) != 0
}

// setHas sets f's hasbit. Requires f.Presence > 0.
func (m *Message) setHas(f *tdp.Field) {
	idx := f.HasbitIndex()
	*m.fieldPtr(hasbitOffset(idx)) |= hasbitMask(idx)
}

// clearHas clears f's hasbit. Requires f.Presence > 0.
func (m *Message) clearHas(f *tdp.Field) {
	idx := f.HasbitIndex()
	*m.fieldPtr(hasbitOffset(idx)) &^= hasbitMask(idx)
}

// oneofCase returns a pointer to the case cell of f's oneof group. Requires
// f.Presence < 0.
func (m *Message) oneofCase(f *tdp.Field) *uint32 {
	return xunsafe.Cast[uint32](m.fieldPtr(f.OneofCaseOffset()))
}

// setPresence records that f has been set: its hasbit if it has one, its
// number into the group's case cell if it is a oneof member, and nothing for
// implicit-presence fields, whose presence is the value write that always
// accompanies a set.
func (m *Message) setPresence(f *tdp.Field) {
	if f.Presence > 0 {
		m.setHas(f)
	} else if f.InOneof() {
		*m.oneofCase(f) = f.Number
	}
}
