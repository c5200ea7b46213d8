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

// Package minipb is a table-driven field-access engine for dynamically-typed,
// arena-allocated messages.
//
// A message type is described at runtime by a compact field table: per field,
// a byte offset, a presence encoding (hasbit index, oneof case-cell offset,
// or implicit), a field number, and one of four fixed-width representation
// classes. The accessors in this package read, write and clear fields of any
// message given nothing but such a descriptor; no per-type generated code is
// involved. Extension fields live out-of-line in an arena-owned side array,
// and map-valued fields are materialized lazily on first mutable access.
//
// This package is the accessor core only. It deliberately excludes a wire
// codec, schema-driven table compilation, and any reflection surface; those
// layers are expected to sit on top and to hand this one descriptors it can
// trust. Descriptors are not validated on the hot path: misuse such as
// querying presence of a presenceless field is a programming error, caught by
// assertions in builds with the debug tag and undefined otherwise.
//
// Nothing in this package synchronizes. All mutations of one message must be
// serialized by the caller; reads of a message nobody is mutating need no
// coordination.
package minipb
