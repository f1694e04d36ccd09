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
	"fmt"
	"reflect"
)

// Get deserializes the node into a value of type typ using the serializer
// registered for typ in the node's options.
//
// An absent or null node yields nil, or the serializer's empty value when
// implicit initialization is enabled.
//
// Errors:
//   - Returns [Error] wrapping [ErrNoSerializer] if no serializer handles typ
//   - Returns [Error] with the failing node path if deserialization fails
func (n *Node) Get(typ reflect.Type) (any, error) {
	if typ == nil {
		return nil, NewPathError(n, nil, "deserialize", fmt.Errorf("%w: nil type", ErrTypeMismatch))
	}
	s := n.options.serializers.Get(typ)
	if n.kind == KindNull {
		if n.options.implicitInit && s != nil {
			if ev, ok := s.(EmptyValuer); ok {
				return ev.EmptyValue(typ, n.options), nil
			}
		}
		return nil, nil
	}
	if s == nil {
		return nil, NewPathError(n, typ, "deserialize", ErrNoSerializer)
	}
	v, err := s.Deserialize(typ, n)
	if err != nil {
		return nil, NewPathError(n, typ, "deserialize", err)
	}
	return v, nil
}

// Set serializes value into the node using the serializer registered for
// typ. A nil typ uses the dynamic type of value. Values without a serializer
// are stored as-is when the options accept their type natively.
//
// Errors:
//   - Returns [Error] wrapping [ErrTypeMismatch] if value is not assignable to typ
//   - Returns [Error] wrapping [ErrNoSerializer] if the value cannot be stored
func (n *Node) Set(typ reflect.Type, value any) error {
	if isNil(value) {
		n.SetRaw(nil)
		return nil
	}
	vt := reflect.TypeOf(value)
	if typ == nil {
		typ = vt
	}
	if !vt.AssignableTo(typ) {
		return NewPathError(n, typ, "serialize", mismatch(typ, value))
	}
	if s := n.options.serializers.Get(typ); s != nil {
		if err := s.Serialize(typ, value, n); err != nil {
			return NewPathError(n, typ, "serialize", err)
		}
		return nil
	}
	if n.options.AcceptsType(vt) {
		n.SetRaw(value)
		return nil
	}
	return NewPathError(n, typ, "serialize", ErrNoSerializer)
}

// Get deserializes node into a T.
//
// Example:
//
//	port, err := confnode.Get[int](root.Node("server", "port"))
func Get[T any](n *Node) (T, error) {
	var zero T
	v, err := n.Get(reflect.TypeFor[T]())
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, NewPathError(n, reflect.TypeFor[T](), "deserialize", mismatch(reflect.TypeFor[T](), v))
	}
	return out, nil
}

// GetOr deserializes node into a T, returning def when the node is absent.
// With copy-defaults enabled the default is written into the node.
//
// Example:
//
//	host, err := confnode.GetOr(root.Node("server", "host"), "localhost")
func GetOr[T any](n *Node, def T) (T, error) {
	if n.kind == KindNull {
		if n.options.copyDefaults && !isNil(def) {
			if err := Set(n, def); err != nil {
				return def, err
			}
		}
		return def, nil
	}
	return Get[T](n)
}

// Set serializes value into node as a T.
func Set[T any](n *Node, value T) error {
	return n.Set(reflect.TypeFor[T](), value)
}

// SetValue serializes value into the node using its dynamic type.
func (n *Node) SetValue(value any) error {
	return n.Set(nil, value)
}

// isNil reports whether v is nil or a nil pointer, map, slice, func or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
