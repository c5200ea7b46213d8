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

package arena

import (
	"math/bits"
	"reflect"
	"unsafe"

	"buf.build/go/minipb/internal/xunsafe"
)

// suggestSizeLog snaps a byte count to the log of the next power of two, with
// a floor of 64 bytes.
func suggestSizeLog(bytes int) uint {
	return max(6, uint(bits.Len(uint(bytes)-1)))
}

// allocChunk obtains a chunk of at least the given size, re-using a
// previously freed block when one of the right size class exists.
//
// Returns false if obtaining the chunk would exceed the arena's budget.
func (a *Arena) allocChunk(size int) (*byte, int, bool) {
	log := suggestSizeLog(size)
	n := 1 << log

	if int(log) < len(a.blocks) && a.blocks[log] != nil {
		if !a.charge(n) {
			return nil, 0, false
		}
		return a.blocks[log], n, true
	}

	if !a.charge(n) {
		return nil, 0, false
	}

	p := allocTraceable(n, unsafe.Pointer(a))
	if int(log) >= len(a.blocks) {
		a.blocks = append(a.blocks, make([]*byte, int(log+1)-len(a.blocks))...)
	}
	a.blocks[log] = p

	return p, n, true
}

// charge debits n bytes against the arena's budget.
func (a *Arena) charge(n int) bool {
	if a.limit > 0 && a.allocated+n > a.limit {
		return false
	}
	a.allocated += n
	return true
}

// allocTraceable allocates size bytes of garbage-collected memory and returns
// a pointer to them.
//
// This function will also store ptr in the same allocation in such a way that
// as long as any pointer into the allocated memory is live, ptr will be
// marked as live by the garbage collector.
func allocTraceable(size int, ptr unsafe.Pointer) *byte {
	// This needs to be done with reflection, because we need a weirdly-shaped
	// allocation: a bunch of bytes followed by a pointer.
	//
	// To avoid the overhead of hammering reflection, we cache the shape for
	// each power of two size; allocChunk only ever asks for powers of two.
	var shape reflect.Type
	if isPow2(size) {
		shape = shapes[bits.TrailingZeros(uint(size))]
	} else {
		shape = chunkShape(size)
	}

	p := (*byte)(reflect.New(shape).UnsafePointer())
	xunsafe.ByteStore(p, size, ptr)

	return p
}

// Pre-allocate a shape for every power of 2.
var shapes [bits.UintSize - 1]reflect.Type

func init() {
	for i := range shapes {
		shapes[i] = chunkShape(1 << i)
	}
}

func chunkShape(size int) reflect.Type {
	return reflect.StructOf([]reflect.StructField{
		{Name: "Data", Type: reflect.ArrayOf(size, reflect.TypeOf(byte(0)))},
		{Name: "Arena", Type: reflect.TypeOf((*Arena)(nil))},
	})
}

func isPow2(n int) bool {
	return n&(n-1) == 0
}
