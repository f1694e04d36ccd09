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

// Package bridge connects representation-agnostic codecs with node
// serializers.
//
// A [Codec] is written once against the [Ops] interface and can then read
// and write plain Go values ([JSON]) or node trees ([NodeOps]). [Serializer]
// turns a codec into a confnode.Serializer, and [CodecFor] goes the other
// way, exposing any registered serializer as a codec.
//
//	vec := bridge.Xmap(bridge.IntStream,
//		func(v []int) Vec3 { return Vec3{v[0], v[1], v[2]} },
//		func(v Vec3) []int { return []int{v.X, v.Y, v.Z} })
//
//	serializers := confnode.Register[Vec3](
//		confnode.DefaultSerializers().Child(), bridge.Serializer(vec)).Build()
//
//	codec, ok := bridge.CodecFor[Settings](serializers)
//	plain, err := codec.Encode(bridge.JSON, settings)
package bridge
