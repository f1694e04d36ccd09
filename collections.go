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
	"slices"
	"strings"
)

// assignable converts v to typ for storage in a container or field.
func assignable(typ reflect.Type, v any) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(typ), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(typ) {
		return rv.Convert(typ), nil
	}
	return reflect.Value{}, mismatch(typ, v)
}

// listSerializer serves slices and arrays. A scalar node is read as a
// single-element list.
type listSerializer struct{}

func (listSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	var children []*Node
	switch node.Kind() {
	case KindList:
		children = node.ChildrenList()
	case KindScalar:
		children = []*Node{node}
	default:
		return nil, fmt.Errorf("%w: expected a list for %s, got %s", ErrTypeMismatch, typ, node.Kind())
	}

	elemType := typ.Elem()
	var out reflect.Value
	if typ.Kind() == reflect.Array {
		if len(children) > typ.Len() {
			return nil, fmt.Errorf("%w: %d elements do not fit in %s", ErrTypeMismatch, len(children), typ)
		}
		out = reflect.New(typ).Elem()
	} else {
		out = reflect.MakeSlice(typ, len(children), len(children))
	}

	for i, child := range children {
		v, err := child.Get(elemType)
		if err != nil {
			return nil, err
		}
		ev, err := assignable(elemType, v)
		if err != nil {
			return nil, NewPathError(child, elemType, "deserialize", err)
		}
		out.Index(i).Set(ev)
	}
	return out.Interface(), nil
}

func (listSerializer) Serialize(typ reflect.Type, value any, node *Node) error {
	rv := reflect.ValueOf(value)
	node.SetRaw([]any{})
	elemType := typ.Elem()
	for i := range rv.Len() {
		if err := node.AppendListNode().Set(elemType, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (listSerializer) EmptyValue(typ reflect.Type, _ *Options) any {
	if typ.Kind() == reflect.Array {
		return reflect.New(typ).Elem().Interface()
	}
	return reflect.MakeSlice(typ, 0, 0).Interface()
}

// mapSerializer serves Go maps. Keys go through the serializer of the key
// type, so any scalar-backed key type is supported.
type mapSerializer struct{}

func (mapSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	if node.Kind() != KindMap {
		return nil, fmt.Errorf("%w: expected a map for %s, got %s", ErrTypeMismatch, typ, node.Kind())
	}
	keyType, valType := typ.Key(), typ.Elem()
	out := reflect.MakeMapWithSize(typ, node.Len())
	for _, k := range node.Keys() {
		child := node.Node(k)

		keyNode := Root(node.Options())
		keyNode.SetRaw(k)
		kv, err := keyNode.Get(keyType)
		if err != nil {
			return nil, NewPathError(child, keyType, "deserialize key", err)
		}
		key, err := assignable(keyType, kv)
		if err != nil {
			return nil, NewPathError(child, keyType, "deserialize key", err)
		}

		v, err := child.Get(valType)
		if err != nil {
			return nil, err
		}
		val, err := assignable(valType, v)
		if err != nil {
			return nil, NewPathError(child, valType, "deserialize", err)
		}
		out.SetMapIndex(key, val)
	}
	return out.Interface(), nil
}

// Serialize writes the map entries in key order. Existing children whose key
// is still present are updated in place so their comments survive.
func (mapSerializer) Serialize(typ reflect.Type, value any, node *Node) error {
	rv := reflect.ValueOf(value)
	if !node.IsMap() {
		node.SetRaw(map[string]any{})
	}

	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})

	seen := make(map[any]struct{}, len(keys))
	for _, k := range keys {
		keyNode := Root(node.Options())
		if err := keyNode.Set(typ.Key(), k.Interface()); err != nil {
			return err
		}
		if keyNode.Kind() != KindScalar {
			return fmt.Errorf("%w: map key %v is not a scalar", ErrTypeMismatch, k.Interface())
		}
		key := normalizeKey(keyNode.Raw())
		seen[key] = struct{}{}
		if err := node.Node(key).Set(typ.Elem(), rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	for _, k := range node.Keys() {
		if _, ok := seen[k]; !ok {
			node.RemoveChild(k)
		}
	}
	return nil
}

func (mapSerializer) EmptyValue(typ reflect.Type, _ *Options) any {
	return reflect.MakeMap(typ).Interface()
}

// pointerSerializer dereferences pointers and delegates to the element type.
type pointerSerializer struct{}

func (pointerSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	elemType := typ.Elem()
	v, err := node.Get(elemType)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(elemType)
	ev, err := assignable(elemType, v)
	if err != nil {
		return nil, err
	}
	ptr.Elem().Set(ev)
	return ptr.Interface(), nil
}

func (pointerSerializer) Serialize(typ reflect.Type, value any, node *Node) error {
	rv := reflect.ValueOf(value)
	if rv.IsNil() {
		node.SetRaw(nil)
		return nil
	}
	return node.Set(typ.Elem(), rv.Elem().Interface())
}
