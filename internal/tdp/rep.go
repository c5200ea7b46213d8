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

package tdp

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/xunsafe"
	"buf.build/go/minipb/internal/zc"
)

// Rep is a field's representation class: the fixed byte width used to copy
// and zero-test its value, independent of the field's logical kind.
//
// These functions look very branchy, but as long as the Rep is known at the
// callsite (a compile-time constant in generated code, or a monomorphized
// generic parameter) the switches fold away and we are left with a single
// fixed-width load or store.
type Rep uint8

const (
	Rep1Byte Rep = iota
	Rep4Byte
	Rep8Byte
	RepStringView

	numReps = iota
)

// MaxRepSize is the size of the widest representation class.
const MaxRepSize = zc.Size

// Size returns the number of bytes a value of this class occupies.
func (r Rep) Size() int {
	switch r {
	case Rep1Byte:
		return 1
	case Rep4Byte:
		return 4
	case Rep8Byte:
		return 8
	case RepStringView:
		return zc.Size
	default:
		debug.Assert(false, "invalid rep: %d", r)
		return 0
	}
}

// String implements [fmt.Stringer].
func (r Rep) String() string {
	switch r {
	case Rep1Byte:
		return "1byte"
	case Rep4Byte:
		return "4byte"
	case Rep8Byte:
		return "8byte"
	case RepStringView:
		return "stringview"
	default:
		return "invalid"
	}
}

// CopyValue copies exactly one value of class r from src to dst.
//
// The copy is an exact bit-pattern copy; no type interpretation happens
// beyond the width.
func CopyValue(dst, src *byte, r Rep) {
	switch r {
	case Rep1Byte:
		*dst = *src
	case Rep4Byte:
		xunsafe.ByteStore(dst, 0, xunsafe.ByteLoad[uint32](src, 0))
	case Rep8Byte:
		xunsafe.ByteStore(dst, 0, xunsafe.ByteLoad[uint64](src, 0))
	case RepStringView:
		xunsafe.ByteStore(dst, 0, xunsafe.ByteLoad[zc.View](src, 0))
	default:
		debug.Assert(false, "invalid rep: %d", r)
	}
}

// IsNonZero reports whether the value of class r at p differs from the zero
// value of its width.
//
// String views are special: a view with length zero is the zero value no
// matter what its address bytes hold, so only the length is tested.
func IsNonZero(p *byte, r Rep) bool {
	switch r {
	case Rep1Byte:
		return *p != 0
	case Rep4Byte:
		return xunsafe.ByteLoad[uint32](p, 0) != 0
	case Rep8Byte:
		return xunsafe.ByteLoad[uint64](p, 0) != 0
	case RepStringView:
		return xunsafe.ByteLoad[zc.View](p, 0).Len() != 0
	default:
		debug.Assert(false, "invalid rep: %d", r)
		return false
	}
}

// RepForKind returns the representation class for a logical field kind.
//
// Message- and group-kind fields store an arena pointer, which on every
// platform we support is eight bytes. Map fields likewise store a pointer to
// their container.
func RepForKind(k protoreflect.Kind) Rep {
	switch k {
	case protoreflect.BoolKind:
		return Rep1Byte
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Uint32Kind,
		protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind,
		protoreflect.EnumKind:
		return Rep4Byte
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Uint64Kind,
		protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind,
		protoreflect.MessageKind, protoreflect.GroupKind:
		return Rep8Byte
	case protoreflect.StringKind, protoreflect.BytesKind:
		return RepStringView
	default:
		debug.Assert(false, "unknown kind: %v", k)
		return Rep8Byte
	}
}
