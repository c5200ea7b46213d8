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

package rawmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/rawmap"
	"buf.build/go/minipb/internal/xunsafe"
)

func put(t *testing.T, m *rawmap.Map, a *arena.Arena, k int32, v int64) {
	t.Helper()
	require.True(t, m.Set(xunsafe.Cast[byte](&k), xunsafe.Cast[byte](&v), a))
}

func get(m *rawmap.Map, k int32) (int64, bool) {
	p := m.Get(xunsafe.Cast[byte](&k))
	if p == nil {
		return 0, false
	}
	return xunsafe.ByteLoad[int64](p, 0), true
}

func TestMap(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	m := rawmap.New(a, 4, 8)
	require.NotNil(t, m)

	assert.Equal(t, 4, m.KeySize())
	assert.Equal(t, 8, m.ValueSize())
	assert.Zero(t, m.Len())

	_, ok := get(m, 1)
	assert.False(t, ok)

	// Enough entries to force at least two growths.
	for i := int32(0); i < 32; i++ {
		put(t, m, a, i, int64(i)*10)
	}
	assert.Equal(t, 32, m.Len())

	for i := int32(0); i < 32; i++ {
		v, ok := get(m, i)
		assert.True(t, ok, "key %d", i)
		assert.Equal(t, int64(i)*10, v, "key %d", i)
	}

	// Overwrites do not grow the map.
	put(t, m, a, 7, -1)
	assert.Equal(t, 32, m.Len())
	v, ok := get(m, 7)
	assert.True(t, ok)
	assert.Equal(t, int64(-1), v)
}

func TestMapAllocFailure(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	a.SetLimit(64)

	m := rawmap.New(a, 4, 8)
	require.NotNil(t, m)

	// Growing the entry array needs a fresh chunk the budget no longer
	// covers; the map must be left unchanged.
	k, v := int32(1), int64(2)
	assert.False(t, m.Set(xunsafe.Cast[byte](&k), xunsafe.Cast[byte](&v), a))
	assert.Zero(t, m.Len())

	a.SetLimit(0)
	assert.True(t, m.Set(xunsafe.Cast[byte](&k), xunsafe.Cast[byte](&v), a))
	assert.Equal(t, 1, m.Len())
}

func TestNewFailure(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	a.SetLimit(1)
	assert.Nil(t, rawmap.New(a, 4, 4))
}
