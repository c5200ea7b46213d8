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

// Package dynamic contains minipb's dynamic message representation and the
// accessor layer over it.
//
// A message is a fixed-size, type-specific memory region on an arena. The
// region opens with a one-word header (the extension window, nil until the
// first extension is set) followed by the field region: hasbit bytes, oneof
// case cells and field storage at the offsets recorded in the type's field
// table. Descriptor offsets are relative to the field region, not to the
// header.
//
// Nothing here locks. Mutating one message from two goroutines at once is
// undefined; concurrent reads of a message nobody is mutating are safe, since
// reads only touch committed bytes.
package dynamic

import (
	"unsafe"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
)

// Message is a dynamic message value.
//
// A *Message lives on some arena, and all of the memory it references does
// too. Because arenas are designed such that if a pointer to any of their
// allocated data is reachable, the whole arena is reachable, simply holding a
// *Message will keep everything it points at alive.
type Message struct {
	_ xunsafe.NoCopy

	// Extension bookkeeping; nil until the first extension is created.
	// Points back into the same arena as the message.
	internal *extHeader

	// The field region follows this header.
}

// HeaderSize is the size of the message header that precedes the field
// region.
const HeaderSize = int(unsafe.Sizeof(Message{}))

// New allocates a zeroed message of the given type on the given arena.
//
// Returns nil if the arena's budget is exhausted.
func New(ty *tdp.Type, a *arena.Arena) *Message {
	n := HeaderSize + int(ty.Size)
	p := a.Alloc(n)
	if p == nil {
		return nil
	}
	return xunsafe.Cast[Message](p)
}

// fieldPtr returns a pointer to the given byte offset in the field region.
//
// No bounds check happens here; offsets were validated against the type's
// size when its table was built.
func (m *Message) fieldPtr(off uint32) *byte {
	return xunsafe.ByteAdd[byte](m, HeaderSize+int(off))
}

// FieldPointer returns a pointer to f's storage.
//
// Callers that know a field's shape statically can load through this pointer
// directly instead of round-tripping through [Message.Get]'s byte buffers.
func (m *Message) FieldPointer(f *tdp.Field) *byte {
	return m.fieldPtr(f.Offset)
}
