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

package arena_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/xunsafe"
)

func TestAlloc(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)

	p := a.Alloc(1)
	require.NotNil(t, p)
	q := a.Alloc(1)
	require.NotNil(t, q)

	// Every allocation is pointer-aligned, so two one-byte allocations are
	// one word apart.
	assert.Equal(t, arena.Align, xunsafe.Sub(q, p))
	assert.Zero(t, uintptr(unsafe.Pointer(p))%uintptr(arena.Align))

	// Fresh memory is zeroed.
	for i, b := range xunsafe.Slice(p, arena.Align) {
		assert.Zero(t, b, "byte %d", i)
	}
}

func TestAllocLarge(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)

	// Larger than any chunk the arena has; forces a dedicated grow.
	p := a.Alloc(1 << 16)
	require.NotNil(t, p)

	s := xunsafe.Slice(p, 1<<16)
	s[0], s[len(s)-1] = 0xaa, 0xbb
	assert.Equal(t, byte(0xaa), s[0])
	assert.Equal(t, byte(0xbb), s[len(s)-1])
}

func TestNew(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)

	p := arena.New(a, int64(42))
	require.NotNil(t, p)
	assert.Equal(t, int64(42), *p)
}

func TestLimit(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	a.SetLimit(64)

	p := a.Alloc(32)
	require.NotNil(t, p)

	// The first chunk was 64 bytes; anything that needs another chunk now
	// fails, and keeps failing.
	assert.Nil(t, a.Alloc(128))
	assert.Nil(t, arena.New(a, [64]byte{}))

	// Small allocations still fit in the current chunk.
	assert.NotNil(t, a.Alloc(16))

	// Removing the limit unsticks it.
	a.SetLimit(0)
	assert.NotNil(t, a.Alloc(128))
}

func TestFree(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)

	p := a.Alloc(16)
	require.NotNil(t, p)
	xunsafe.Slice(p, 16)[3] = 0xff

	a.Free()

	// The same block comes back, zeroed.
	q := a.Alloc(16)
	require.NotNil(t, q)
	for i, b := range xunsafe.Slice(q, 16) {
		assert.Zero(t, b, "byte %d", i)
	}
}
