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

// Package rawmap provides the untyped map container that map-valued message
// fields point at.
//
// Keys and values are fixed-width bit patterns whose widths are chosen at
// construction time; the container neither hashes nor interprets them beyond
// byte equality. Entries live on the map's arena and are never individually
// freed. Iteration order is unspecified.
package rawmap

import (
	"bytes"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/xunsafe"
)

// Map is an arena-backed container of fixed-width key/value entries.
type Map struct {
	_ xunsafe.NoCopy

	keySize, valSize uint32
	len, cap         uint32

	// cap entries of keySize+valSize bytes each. An address rather than a
	// pointer: the entry memory lives on the same arena as the Map header,
	// so the header reaching the arena keeps it alive.
	entries xunsafe.Addr[byte]
}

// New constructs an empty map for keys and values of the given widths on the
// given arena.
//
// Returns nil if the arena's budget is exhausted.
func New(a *arena.Arena, keySize, valSize int) *Map {
	debug.Assert(keySize > 0 && valSize > 0, "invalid entry widths %d/%d", keySize, valSize)
	return arena.New(a, Map{
		keySize: uint32(keySize),
		valSize: uint32(valSize),
	})
}

// Placeholder returns the reserved placeholder map.
//
// Table-construction layers may pre-fill map slots with this sentinel to mark
// "present but not yet materialized" values. The accessor layer asserts it
// never leaks into a map slot it reads, and the placeholder itself must never
// be inserted into.
func Placeholder() *Map { return &placeholder }

var placeholder Map

// KeySize returns the key width in bytes.
func (m *Map) KeySize() int { return int(m.keySize) }

// ValueSize returns the value width in bytes.
func (m *Map) ValueSize() int { return int(m.valSize) }

// Len returns the number of entries in this map.
func (m *Map) Len() int { return int(m.len) }

// Get returns a pointer to the value stored for key, or nil if absent.
//
// key must point at KeySize bytes.
func (m *Map) Get(key *byte) *byte {
	k := xunsafe.Slice(key, m.keySize)
	for i := uint32(0); i < m.len; i++ {
		e := m.entry(i)
		if bytes.Equal(xunsafe.Slice(e, m.keySize), k) {
			return xunsafe.Add(e, m.keySize)
		}
	}
	return nil
}

// Set inserts or overwrites the value stored for key.
//
// Returns false if growing the map exceeded the arena's budget, in which case
// the map is unchanged.
func (m *Map) Set(key, val *byte, a *arena.Arena) bool {
	debug.Assert(m != &placeholder, "insert into the placeholder map")

	if p := m.Get(key); p != nil {
		xunsafe.Copy(p, val, m.valSize)
		return true
	}

	if m.len == m.cap {
		newCap := max(4, m.cap*2)
		p := a.Alloc(int(newCap) * m.entrySize())
		if p == nil {
			return false
		}
		xunsafe.Copy(p, m.entries.AssertValid(), int(m.len)*m.entrySize())
		m.entries = xunsafe.AddrOf(p)
		m.cap = newCap
	}

	e := m.entry(m.len)
	m.len++
	xunsafe.Copy(e, key, m.keySize)
	xunsafe.Copy(xunsafe.Add(e, m.keySize), val, m.valSize)
	return true
}

func (m *Map) entrySize() int {
	return int(m.keySize + m.valSize)
}

func (m *Map) entry(i uint32) *byte {
	debug.Assert(i < m.cap, "entry %d out of range", i)
	return m.entries.ByteAdd(int(i) * m.entrySize()).AssertValid()
}
