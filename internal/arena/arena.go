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

// Package arena provides a low-level, relatively unsafe arena allocation
// abstraction.
//
// Arenas are designed to only return pointers to data with pointer-free
// shape. However, we would like to store pointers in this data, so that the
// arena can point to itself (and to no other memory).
//
// We ensure this by making it so that holding a pointer onto any memory
// allocated by an [Arena] will keep all memory reachable from it alive.
// We achieve this by having the shape of each chunk allocated for the arena
// contain a pointer to the arena as a footer; each chunk thus must have the
// shape
//
//	type chunk struct {
//	  memory [N]uint64
//	  arena *Arena
//	}
//
// By holding a pointer into chunk.memory anywhere reachable by a GC root
// (such as in a local variable) the GC will mark the allocation for the whole
// chunk as live, and therefore mark the [*Arena] field as live. Tracing
// through chunk.arena.blocks will mark all the other chunks as alive.
//
// Memory not directly allocated by an arena can be tied to it using
// [Arena.KeepAlive].
package arena

import (
	"unsafe"

	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/xunsafe"
	"buf.build/go/minipb/internal/xunsafe/layout"
)

// Arena is an arena for holding values of any type which does not contain
// pointers.
//
// A zero Arena is empty and ready to use.
type Arena struct {
	_ xunsafe.NoCopy

	next, end xunsafe.Addr[byte]
	cap       int // Always a power of 2.

	// Total bytes of chunk memory requested so far, and the budget for it.
	// A zero limit means no budget.
	allocated, limit int

	// Blocks of memory allocated by this arena. Indexed by their size log 2.
	blocks []*byte

	// Data to keep around for the GC to mark whenever it marks an arena.
	// Holding any pointer to the arena will keep anything here alive, too.
	keep []unsafe.Pointer
}

// Align is the alignment of all objects on the arena.
const Align = int(unsafe.Sizeof(uintptr(0)))

// New allocates a new value of type T on an arena.
//
// Returns nil if the arena's budget is exhausted.
func New[T any](a *Arena, value T) *T {
	size, align := layout.Size[T](), layout.Align[T]()
	if align > Align {
		panic("minipb: over-aligned object")
	}

	p := a.Alloc(size)
	if p == nil {
		return nil
	}

	q := xunsafe.Cast[T](p)
	*q = value
	return q
}

// SetLimit caps the total number of chunk bytes this arena may request from
// the Go allocator. Once the cap is reached, [Arena.Alloc] returns nil.
//
// A limit of zero removes the cap.
func (a *Arena) SetLimit(n int) {
	a.limit = n
}

// KeepAlive ensures that v is not swept by the GC until all pointers into the
// arena go away.
func (a *Arena) KeepAlive(v any) {
	a.keep = append(a.keep, xunsafe.AnyData(v))
}

// Alloc allocates memory with the given size.
//
// All memory is pointer-aligned and zeroed. Returns nil if the arena's budget
// is exhausted; this is the only failure mode.
func (a *Arena) Alloc(size int) *byte {
	size = layout.RoundUp(size, Align)

	if a.next.Add(size) > a.end {
		if !a.grow(size) {
			return nil
		}
	}

	p := a.next.AssertValid()
	a.next = a.next.Add(size)
	a.log("alloc", "%v:%v, %d:%d", p, a.next, size, Align)

	return p
}

// Free resets this arena to an "empty" state, allowing all memory allocated
// by it to be re-used.
//
// Although this can be used to amortize trips into Go's allocator, doing so
// trades off safety: any memory allocated by the arena must not be referenced
// after a call to Free.
func (a *Arena) Free() {
	a.next, a.end, a.cap = 0, 0, 0
	a.allocated = 0

	// Write nil rather than clear(a.keep): clearing walks us into a bulk
	// write barrier, while a nil store only pays for a single-pointer one.
	a.keep = nil

	for log, block := range a.blocks {
		if block != nil {
			xunsafe.Clear(block, 1<<log)
		}
	}
}

// grow allocates fresh memory onto next of at least the given size.
//
// Returns false if doing so would exceed the arena's budget.
func (a *Arena) grow(size int) bool {
	p, n, ok := a.allocChunk(max(size, a.cap*2))
	if !ok {
		return false
	}

	// No need to KeepAlive(p): allocChunk sticks it in the dedicated block
	// array.
	a.next = xunsafe.AddrOf(p)
	a.end = a.next.Add(n)
	a.cap = n
	a.log("grow", "%v:%v:%d", a.next, a.end, a.cap)
	return true
}

func (a *Arena) log(op, format string, args ...any) {
	debug.Log([]any{"%p %v:%v", a, a.next, a.end}, op, format, args...)
}
