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

package zc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/zc"
)

func TestZero(t *testing.T) {
	t.Parallel()

	var v zc.View
	assert.Zero(t, v.Len())
	assert.Empty(t, v.String())
	assert.Nil(t, v.Bytes())

	// A zero-length view is the zero value even when built from a live
	// pointer.
	b := []byte{1, 2, 3}
	v = zc.Of(&b[0], 0)
	assert.Equal(t, zc.View{}, v)
}

func TestOfString(t *testing.T) {
	t.Parallel()

	v := zc.OfString("hello")
	assert.Equal(t, 5, v.Len())
	assert.Equal(t, "hello", v.String())
	assert.Equal(t, []byte("hello"), v.Bytes())
}

func TestCopy(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)

	v, ok := zc.Copy(a, "blue")
	require.True(t, ok)
	assert.Equal(t, "blue", v.String())

	// Empty strings never allocate.
	v, ok = zc.Copy(a, "")
	require.True(t, ok)
	assert.Equal(t, zc.View{}, v)
}

func TestCopyFailure(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	a.SetLimit(1)

	_, ok := zc.Copy(a, "too big")
	assert.False(t, ok)
}
