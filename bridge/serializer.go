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

package bridge

import (
	"fmt"
	"reflect"

	"rivaas.dev/confnode"
)

// Serializer adapts a codec to a [confnode.Serializer] for V.
//
// Example:
//
//	serializers := confnode.DefaultSerializers().Child()
//	confnode.Register[Vec3](serializers, bridge.Serializer(vec3Codec))
func Serializer[V any](c Codec[V]) confnode.Serializer {
	return codecSerializer[V]{codec: c}
}

type codecSerializer[V any] struct {
	codec Codec[V]
}

func (s codecSerializer[V]) Deserialize(typ reflect.Type, node *confnode.Node) (any, error) {
	v, err := s.codec.Decode(NodeOps{Options: node.Options()}, node)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", confnode.ErrTypeMismatch, err)
	}
	if typ == reflect.TypeFor[V]() {
		return v, nil
	}
	return reflect.ValueOf(v).Convert(typ).Interface(), nil
}

func (s codecSerializer[V]) Serialize(_ reflect.Type, value any, node *confnode.Node) error {
	v, ok := value.(V)
	if !ok {
		rv := reflect.ValueOf(value)
		if !rv.CanConvert(reflect.TypeFor[V]()) {
			return fmt.Errorf("%w: cannot convert %T to %s", confnode.ErrTypeMismatch, value, reflect.TypeFor[V]())
		}
		v = rv.Convert(reflect.TypeFor[V]()).Interface().(V)
	}
	out, err := s.codec.Encode(NodeOps{Options: node.Options()}, v)
	if err != nil {
		return err
	}
	encoded, ok := out.(*confnode.Node)
	if !ok {
		return fmt.Errorf("codec returned %T, not a node", out)
	}
	node.SetRaw(encoded)
	return nil
}

// CodecFor exposes the serializer registered for V in serializers as a
// codec. It reports false when no serializer handles V.
func CodecFor[V any](serializers *confnode.Serializers) (Codec[V], bool) {
	typ := reflect.TypeFor[V]()
	s := serializers.Get(typ)
	if s == nil {
		return nil, false
	}
	opts, err := confnode.NewOptions(confnode.WithSerializers(serializers))
	if err != nil {
		return nil, false
	}
	nodes := NodeOps{Options: opts}
	return Of(
		func(ops Ops, v V) (any, error) {
			root := nodes.root()
			if err := root.Set(typ, v); err != nil {
				return nil, err
			}
			return Convert(nodes, ops, root)
		},
		func(ops Ops, in any) (V, error) {
			var zero V
			converted, err := Convert(ops, nodes, in)
			if err != nil {
				return zero, err
			}
			return confnode.Get[V](converted.(*confnode.Node))
		},
	), true
}
