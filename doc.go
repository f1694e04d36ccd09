// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package confnode models configuration as a tree of nodes and maps it to
// and from Go values.
//
// # Nodes
//
// A [Node] holds either nothing, a scalar, a list of child nodes or an
// ordered map of child nodes. Navigating to a path that does not exist
// returns a virtual node; writing a value to it attaches it and every
// virtual ancestor to the tree:
//
//	root := confnode.MustNew()
//	root.Node("server", "port").SetRaw(8080)
//	root.Node("server", "port").SetComment("listen port")
//	port := root.Node("server", "port").Int()
//
// Nodes also carry representation hints, typed out-of-band values such as
// the YAML emission style. A hint created with [NewInheritableHint] is
// visible to descendants through [HintOf].
//
// # Serializers
//
// [Serializers] maps Go types to [Serializer] implementations. Lookups
// prefer an exact type registration, then the most specific interface
// registration, then predicates in registration order, then the parent
// collection. [DefaultSerializers]
// covers scalars, durations, times, URLs, UUIDs, regular expressions,
// slices, maps, pointers and structs.
//
//	serializers := confnode.Register[Color](confnode.DefaultSerializers().Child(), colorSerializer{}).Build()
//	root := confnode.MustNew(confnode.WithSerializers(serializers))
//
// # Object mapping
//
// Structs are mapped field by field by a [MapperFactory]. Field keys come
// from the "setting" tag or the naming scheme (lower-case-dashed by
// default). The "comment" tag sets node comments on save, "default" gives
// a value for absent fields, and constraint tags such as "required",
// "matches" and "validate" are checked after loading:
//
//	type Server struct {
//		Host string        `setting:"host" required:""`
//		Port int           `default:"8080" validate:"min=1"`
//		Idle time.Duration `default:"30s" comment:"Keep-alive timeout"`
//	}
//
//	server, err := confnode.Get[Server](root.Node("server"))
//
// # Errors
//
// Every failure is an [*Error] carrying the node path, the target type and
// the operation. Use errors.Is with [ErrMissingValue], [ErrNoSerializer],
// [ErrTypeMismatch], [ErrMalformed] or [ErrConstraint] to tell the cases
// apart.
package confnode
