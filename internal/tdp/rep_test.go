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

package tdp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
	"buf.build/go/minipb/internal/zc"
)

func TestCopyValue(t *testing.T) {
	t.Parallel()

	// Values with asymmetric bit patterns, so a partial or shifted copy
	// cannot sneak through.
	tests := []struct {
		name string
		rep  tdp.Rep
		src  []byte
	}{
		{"1byte", tdp.Rep1Byte, []byte{0xa5}},
		{"4byte", tdp.Rep4Byte, []byte{0x01, 0x02, 0x03, 0x04}},
		{"8byte", tdp.Rep8Byte, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, len(tt.src), tt.rep.Size())

			dst := make([]byte, tt.rep.Size())
			tdp.CopyValue(&dst[0], &tt.src[0], tt.rep)
			assert.Equal(t, tt.src, dst)
		})
	}
}

func TestCopyValueStringView(t *testing.T) {
	t.Parallel()

	src := zc.OfString("view contents")
	var dst zc.View
	tdp.CopyValue(xunsafe.Cast[byte](&dst), xunsafe.Cast[byte](&src), tdp.RepStringView)
	assert.Equal(t, src, dst)
	assert.Equal(t, "view contents", dst.String())
}

func TestIsNonZero(t *testing.T) {
	t.Parallel()

	for _, rep := range []tdp.Rep{tdp.Rep1Byte, tdp.Rep4Byte, tdp.Rep8Byte} {
		buf := make([]byte, rep.Size())
		assert.False(t, tdp.IsNonZero(&buf[0], rep), "%v all-zero", rep)

		// The topmost byte alone must be seen.
		buf[rep.Size()-1] = 0x80
		assert.True(t, tdp.IsNonZero(&buf[0], rep), "%v high byte", rep)
	}
}

func TestIsNonZeroStringView(t *testing.T) {
	t.Parallel()

	var v zc.View
	assert.False(t, tdp.IsNonZero(xunsafe.Cast[byte](&v), tdp.RepStringView))

	v = zc.OfString("x")
	assert.True(t, tdp.IsNonZero(xunsafe.Cast[byte](&v), tdp.RepStringView))

	// Zero length wins over a live address: this view is the zero value.
	b := []byte{1}
	v = zc.Of(&b[0], 0)
	assert.False(t, tdp.IsNonZero(xunsafe.Cast[byte](&v), tdp.RepStringView))
}

func TestRepForKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, tdp.Rep1Byte, tdp.RepForKind(protoreflect.BoolKind))
	assert.Equal(t, tdp.Rep4Byte, tdp.RepForKind(protoreflect.Int32Kind))
	assert.Equal(t, tdp.Rep4Byte, tdp.RepForKind(protoreflect.FloatKind))
	assert.Equal(t, tdp.Rep4Byte, tdp.RepForKind(protoreflect.EnumKind))
	assert.Equal(t, tdp.Rep8Byte, tdp.RepForKind(protoreflect.Uint64Kind))
	assert.Equal(t, tdp.Rep8Byte, tdp.RepForKind(protoreflect.DoubleKind))
	assert.Equal(t, tdp.Rep8Byte, tdp.RepForKind(protoreflect.MessageKind))
	assert.Equal(t, tdp.RepStringView, tdp.RepForKind(protoreflect.StringKind))
	assert.Equal(t, tdp.RepStringView, tdp.RepForKind(protoreflect.BytesKind))
}
