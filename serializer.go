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

package confnode

import (
	"errors"
	"reflect"
)

// Serializer converts between a node and a Go value of a given type.
// Serializers are stateless strategies registered in a [Serializers]
// collection; typ is the type being requested, which may be a named or
// more specific type than the one the serializer was registered for.
type Serializer interface {
	// Deserialize reads a value of type typ from node. The node is never null.
	Deserialize(typ reflect.Type, node *Node) (any, error)

	// Serialize writes value, assignable to typ, into node.
	Serialize(typ reflect.Type, value any, node *Node) error
}

// EmptyValuer is implemented by serializers that can supply a value for an
// absent node when implicit initialization is enabled.
type EmptyValuer interface {
	EmptyValue(typ reflect.Type, opts *Options) any
}

// Unmarshaler is implemented by types that read themselves from a node.
type Unmarshaler interface {
	UnmarshalNode(node *Node) error
}

// Marshaler is implemented by types that write themselves into a node.
type Marshaler interface {
	MarshalNode(node *Node) error
}

// SerializerFunc adapts a pair of typed functions to a [Serializer].
//
// Example:
//
//	s := confnode.SerializerFunc[Point]{
//	    DeserializeFunc: func(_ reflect.Type, n *confnode.Node) (Point, error) { ... },
//	    SerializeFunc:   func(_ reflect.Type, p Point, n *confnode.Node) error { ... },
//	}
type SerializerFunc[T any] struct {
	DeserializeFunc func(typ reflect.Type, node *Node) (T, error)
	SerializeFunc   func(typ reflect.Type, value T, node *Node) error
	// EmptyFunc is optional and supplies implicit-initialization values.
	EmptyFunc func(typ reflect.Type) T
}

// Deserialize implements [Serializer].
func (f SerializerFunc[T]) Deserialize(typ reflect.Type, node *Node) (any, error) {
	if f.DeserializeFunc == nil {
		return nil, errors.New("serializer does not support deserialization")
	}
	return f.DeserializeFunc(typ, node)
}

// Serialize implements [Serializer].
func (f SerializerFunc[T]) Serialize(typ reflect.Type, value any, node *Node) error {
	if f.SerializeFunc == nil {
		return errors.New("serializer does not support serialization")
	}
	v, ok := value.(T)
	if !ok {
		return mismatch(reflect.TypeFor[T](), value)
	}
	return f.SerializeFunc(typ, v, node)
}

// EmptyValue implements [EmptyValuer].
func (f SerializerFunc[T]) EmptyValue(typ reflect.Type, _ *Options) any {
	if f.EmptyFunc == nil {
		return nil
	}
	return f.EmptyFunc(typ)
}

// unmarshalerSerializer serves types implementing [Unmarshaler] and [Marshaler].
type unmarshalerSerializer struct{}

func (unmarshalerSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	ptr, elem := newTarget(typ)
	u, ok := ptr.Interface().(Unmarshaler)
	if !ok {
		return nil, mismatch(typ, node.Raw())
	}
	if err := u.UnmarshalNode(node); err != nil {
		return nil, err
	}
	return elem(), nil
}

func (unmarshalerSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	m, ok := value.(Marshaler)
	if !ok {
		return errors.New("type does not implement MarshalNode")
	}
	return m.MarshalNode(node)
}

// newTarget allocates a value for typ. It returns a pointer suitable for
// calling pointer-receiver methods and a function producing the value of
// type typ (the pointer itself when typ is a pointer type).
func newTarget(typ reflect.Type) (reflect.Value, func() any) {
	if typ.Kind() == reflect.Pointer {
		ptr := reflect.New(typ.Elem())
		return ptr, func() any { return ptr.Interface() }
	}
	ptr := reflect.New(typ)
	return ptr, func() any { return ptr.Elem().Interface() }
}
