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
	"unsafe"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
)

// Extension values live out-of-line in an arena-owned entry array hanging off
// the message header. The live entries are the window [begin, end) of that
// array; entry order within the window carries no meaning. A message holds at
// most one entry per extension descriptor.

// Entry is one (descriptor, raw value) pair in a message's extension window.
type Entry struct {
	// The descriptor this entry belongs to; pointer identity is the key.
	ext *tdp.Extension

	// The value's raw bytes, sized for the widest rep.
	data [tdp.MaxRepSize]byte
}

// Data returns a pointer to the entry's value storage.
func (e *Entry) Data() *byte { return &e.data[0] }

const entrySize = int(unsafe.Sizeof(Entry{}))

// extHeader is the extension window bookkeeping a message's header word
// points at. It lives on the message's arena.
type extHeader struct {
	entries *Entry // arena-owned array of cap entries
	begin   uint32 // first live entry
	end     uint32 // one past the last live entry
	cap     uint32
}

// findExtension returns x's entry in the live window, or nil.
func (m *Message) findExtension(x *tdp.Extension) *Entry {
	in := m.internal
	if in == nil {
		return nil
	}
	for i := in.begin; i < in.end; i++ {
		e := xunsafe.Add(in.entries, i)
		if e.ext == x {
			return e
		}
	}
	return nil
}

// getOrCreateExtension returns x's entry, reserving a zeroed one at the end
// of the window if none exists.
//
// Returns nil if the arena's budget is exhausted; in that case nothing
// observable has changed.
func (m *Message) getOrCreateExtension(x *tdp.Extension, a *arena.Arena) *Entry {
	if e := m.findExtension(x); e != nil {
		return e
	}

	in := m.internal
	if in == nil {
		in = arena.New(a, extHeader{})
		if in == nil {
			return nil
		}
		m.internal = in
	}

	if in.end == in.cap {
		newCap := max(4, in.cap*2)
		p := a.Alloc(int(newCap) * entrySize)
		if p == nil {
			return nil
		}

		// Compact the live window to the front of the new array. Order is
		// unspecified, so sliding the window down is fair game.
		entries := xunsafe.Cast[Entry](p)
		xunsafe.Copy(entries, xunsafe.Add(in.entries, in.begin), in.end-in.begin)
		in.entries = entries
		in.end -= in.begin
		in.begin = 0
		in.cap = newCap
	}

	e := xunsafe.Add(in.entries, in.end)
	in.end++

	*e = Entry{ext: x}
	// The entry holds a pointer to the descriptor in memory the GC does not
	// scan; pin the descriptor to the arena's lifetime.
	a.KeepAlive(x)
	return e
}

// HasExtension reports whether x has an entry in m's extension window.
func (m *Message) HasExtension(x *tdp.Extension) bool {
	return m.findExtension(x) != nil
}

// GetExtension copies x's value into out, or def if x is absent.
//
// def and out must point at x's rep width of bytes.
func (m *Message) GetExtension(x *tdp.Extension, def, out *byte) {
	if e := m.findExtension(x); e != nil {
		tdp.CopyValue(out, e.Data(), x.Field.Rep)
	} else {
		tdp.CopyValue(out, def, x.Field.Rep)
	}
}

// SetExtension copies the value at val into x's entry, creating the entry if
// needed.
//
// Returns false if creating the entry exhausted the arena's budget, in which
// case prior state is unchanged.
func (m *Message) SetExtension(x *tdp.Extension, val *byte, a *arena.Arena) bool {
	debug.Assert(a != nil, "setting extension %d with no arena", x.Field.Number)
	e := m.getOrCreateExtension(x, a)
	if e == nil {
		return false
	}
	tdp.CopyValue(e.Data(), val, x.Field.Rep)
	return true
}

// ClearExtension removes x's entry from m's extension window, if present.
//
// Removal is O(1): the target entry is overwritten with a copy of the
// window's front entry and the window's begin cursor advances past the
// original front. The duplicated front entry falls outside the new window.
// This reorders entries, which is fine, since window order is unspecified.
func (m *Message) ClearExtension(x *tdp.Extension) {
	in := m.internal
	if in == nil {
		return
	}
	e := m.findExtension(x)
	if e == nil {
		return
	}

	*e = *xunsafe.Add(in.entries, in.begin)
	in.begin++
}
