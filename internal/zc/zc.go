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

// Package zc provides zero-copy string views.
//
// A [View] is the fixed-width value shape used for string- and bytes-typed
// message fields: a raw address plus a length. Views do not own their bytes;
// the referenced memory must be kept alive externally, which in practice
// means it lives on the same arena as the message holding the view.
package zc

import (
	"unsafe"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/xunsafe"
)

// View is a length-delimited window onto bytes owned by someone else.
//
// The zero View is an empty string. A View with a zero length is the zero
// value no matter what its address holds.
type View struct {
	ptr xunsafe.Addr[byte]
	n   int
}

// Size is the size of a View in bytes.
const Size = int(unsafe.Sizeof(View{}))

// Of constructs a View over n bytes at p.
func Of(p *byte, n int) View {
	if n == 0 {
		return View{}
	}
	return View{xunsafe.AddrOf(p), n}
}

// OfString constructs a View over the contents of s.
//
// The view aliases s; it is only valid while s is reachable.
func OfString(s string) View {
	return Of(unsafe.StringData(s), len(s))
}

// Copy copies s onto the given arena and returns a View over the copy.
//
// Returns false if the arena's budget is exhausted.
func Copy(a *arena.Arena, s string) (View, bool) {
	if len(s) == 0 {
		return View{}, true
	}

	p := a.Alloc(len(s))
	if p == nil {
		return View{}, false
	}
	xunsafe.Copy(p, unsafe.StringData(s), len(s))
	return View{xunsafe.AddrOf(p), len(s)}, true
}

// Len returns the length of this view.
func (v View) Len() int { return v.n }

// Bytes converts this view into a byte slice.
func (v View) Bytes() []byte {
	if v.n == 0 {
		return nil
	}
	return xunsafe.Slice(v.ptr.AssertValid(), v.n)
}

// String converts this view into a string.
func (v View) String() string {
	if v.n == 0 {
		return ""
	}
	return xunsafe.String(v.ptr.AssertValid(), v.n)
}
