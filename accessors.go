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

package minipb

import (
	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
	"buf.build/go/minipb/internal/xunsafe/layout"
	"buf.build/go/minipb/internal/zc"
)

// Typed views over the unified accessor layer. Each generic function is
// monomorphized per value type, so the rep-class switch the untyped layer
// would take disappears from the hot path; the compiler cannot be trusted to
// fold it on its own across package boundaries.

// Scalar is any fixed-width value type a field can hold.
type Scalar interface {
	~bool | ~uint8 | ~int32 | ~uint32 | ~float32 |
		~int64 | ~uint64 | ~float64
}

// Has reports whether f is present in m.
//
// For extension fields this is entry existence; for plain fields it requires
// tracked presence (hasbit or oneof).
func Has(m Message, f Field) bool {
	return m.raw.Has(f.raw)
}

// Clear removes f's presence from m and resets its storage.
func Clear(m Message, f Field) {
	m.raw.Clear(f.raw)
}

// GetScalar returns f's value in m, or def if f is not present.
//
// def must be the field's declared default; T must match the field's rep
// width.
func GetScalar[T Scalar](m Message, f Field, def T) T {
	debug.Assert(layout.Size[T]() == f.raw.Rep.Size(),
		"field %d: rep %v does not hold a %d-byte scalar", f.raw.Number, f.raw.Rep, layout.Size[T]())

	if f.raw.IsExtension() {
		var out T
		m.raw.GetExtension(tdp.AsExtension(f.raw), xunsafe.Cast[byte](&def), xunsafe.Cast[byte](&out))
		return out
	}

	var zero T
	if (f.raw.InOneof() || def != zero) && !m.raw.HasField(f.raw) {
		return def
	}
	return xunsafe.ByteLoad[T](m.raw.FieldPointer(f.raw), 0)
}

// SetScalar writes v into f and records its presence.
//
// The arena may be nil for plain fields, whose sets always succeed. For
// extension fields it must be the message's arena, and a false return means
// its budget was exhausted.
func SetScalar[T Scalar](m Message, f Field, v T, a *Arena) bool {
	debug.Assert(layout.Size[T]() == f.raw.Rep.Size(),
		"field %d: rep %v does not hold a %d-byte scalar", f.raw.Number, f.raw.Rep, layout.Size[T]())

	var raw *arena.Arena
	if a != nil {
		raw = &a.raw
	}
	return m.raw.Set(f.raw, xunsafe.Cast[byte](&v), raw)
}

// GetString returns f's value in m as a string, or def if f is not present.
//
// The returned string aliases message memory; it is valid as long as it is
// reachable, since holding it keeps the arena alive.
func GetString(m Message, f Field, def string) string {
	dv := zc.OfString(def)
	var out zc.View
	m.raw.Get(f.raw, xunsafe.Cast[byte](&dv), xunsafe.Cast[byte](&out))
	return out.String()
}

// GetBytes is [GetString] for bytes-typed fields.
func GetBytes(m Message, f Field, def []byte) []byte {
	var dv zc.View
	if len(def) != 0 {
		dv = zc.Of(&def[0], len(def))
	}
	var out zc.View
	m.raw.Get(f.raw, xunsafe.Cast[byte](&dv), xunsafe.Cast[byte](&out))
	return out.Bytes()
}

// SetString copies s onto the arena and points f at the copy.
//
// Returns false if the arena's budget was exhausted; the field is then
// unchanged.
func SetString(m Message, f Field, s string, a *Arena) bool {
	v, ok := zc.Copy(&a.raw, s)
	if !ok {
		return false
	}
	return m.raw.Set(f.raw, xunsafe.Cast[byte](&v), &a.raw)
}

// GetOrCreateMap returns the map container stored in f, constructing one for
// keySize-byte keys and valSize-byte values if the slot is still empty.
//
// Idempotent: a second call returns the same container without allocating.
// Returns false if construction exhausted the arena's budget.
func GetOrCreateMap(m Message, f Field, keySize, valSize int, a *Arena) (Map, bool) {
	mp := m.raw.GetOrCreateMap(f.raw, keySize, valSize, &a.raw)
	if mp == nil {
		return Map{}, false
	}
	return Map{mp}, true
}

// MapGet looks up k in the map, returning the stored value and whether it was
// present.
func MapGet[K, V Scalar](mp Map, k K) (V, bool) {
	debug.Assert(layout.Size[K]() == mp.raw.KeySize() && layout.Size[V]() == mp.raw.ValueSize(),
		"map key/value width mismatch: %d/%d", layout.Size[K](), layout.Size[V]())

	p := mp.raw.Get(xunsafe.Cast[byte](&k))
	if p == nil {
		var zero V
		return zero, false
	}
	return xunsafe.ByteLoad[V](p, 0), true
}

// MapSet inserts or overwrites the value stored for k.
//
// Returns false if growing the map exhausted the arena's budget.
func MapSet[K, V Scalar](mp Map, k K, v V, a *Arena) bool {
	debug.Assert(layout.Size[K]() == mp.raw.KeySize() && layout.Size[V]() == mp.raw.ValueSize(),
		"map key/value width mismatch: %d/%d", layout.Size[K](), layout.Size[V]())

	return mp.raw.Set(xunsafe.Cast[byte](&k), xunsafe.Cast[byte](&v), &a.raw)
}
