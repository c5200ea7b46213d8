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

// Package tdp contains the table-driven-access descriptor structures:
// compact per-field metadata that the accessor layer in package dynamic
// consumes to read and write message memory without per-type generated code.
//
// Descriptors are immutable once built and shared by every message instance
// of a type. They are trusted: the accessors assume descriptors were produced
// by [TypeBuilder] (or an equivalent codegen step) and do not re-validate
// them outside of debug builds.
package tdp
