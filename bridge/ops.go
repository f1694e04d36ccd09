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
	"slices"

	"github.com/spf13/cast"

	"rivaas.dev/confnode"
)

// Kind classifies a dynamic value.
type Kind int

// Dynamic value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Ops reads and builds values of one dynamic representation, such as plain
// Go values or node trees. Codecs are written against Ops so the same codec
// works with every representation.
type Ops interface {
	Kind(v any) Kind
	Empty() any

	CreateBool(b bool) any
	CreateNumber(n any) any
	CreateString(s string) any
	CreateList(items []any) any
	CreateMap(keys []string, values []any) any

	Bool(v any) (bool, error)
	Number(v any) (any, error)
	String(v any) (string, error)
	List(v any) ([]any, error)
	Map(v any) (keys []string, values []any, err error)
}

// Convert copies v from one representation into another.
func Convert(from, to Ops, v any) (any, error) {
	switch from.Kind(v) {
	case KindNull:
		return to.Empty(), nil
	case KindBool:
		b, err := from.Bool(v)
		if err != nil {
			return nil, err
		}
		return to.CreateBool(b), nil
	case KindNumber:
		n, err := from.Number(v)
		if err != nil {
			return nil, err
		}
		return to.CreateNumber(n), nil
	case KindString:
		s, err := from.String(v)
		if err != nil {
			return nil, err
		}
		return to.CreateString(s), nil
	case KindList:
		items, err := from.List(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = Convert(from, to, item); err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return to.CreateList(out), nil
	case KindMap:
		keys, values, err := from.Map(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(values))
		for i, value := range values {
			if out[i], err = Convert(from, to, value); err != nil {
				return nil, fmt.Errorf("%s: %w", keys[i], err)
			}
		}
		return to.CreateMap(keys, out), nil
	}
	return nil, fmt.Errorf("cannot convert %T", v)
}

// JSON is the [Ops] of plain Go values as produced by encoding/json-style
// decoders: nil, bool, numbers, string, []any and map[string]any. Other
// slices, arrays and maps are read through reflection.
var JSON Ops = jsonOps{}

type jsonOps struct{}

func (jsonOps) Kind(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case []any:
		return KindList
	case map[string]any:
		return KindMap
	}
	if isNumber(v) {
		return KindNumber
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		return KindMap
	case reflect.Pointer, reflect.Interface:
		if reflect.ValueOf(v).IsNil() {
			return KindNull
		}
	}
	return KindString
}

func (jsonOps) Empty() any                { return nil }
func (jsonOps) CreateBool(b bool) any     { return b }
func (jsonOps) CreateNumber(n any) any    { return n }
func (jsonOps) CreateString(s string) any { return s }
func (jsonOps) CreateList(items []any) any {
	return slices.Clone(items)
}

func (jsonOps) CreateMap(keys []string, values []any) any {
	out := make(map[string]any, len(keys))
	for i, k := range keys {
		if values[i] != nil {
			out[k] = values[i]
		}
	}
	return out
}

func (jsonOps) Bool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("not a bool: %T", v)
	}
	return b, nil
}

func (jsonOps) Number(v any) (any, error) {
	if !isNumber(v) {
		return nil, fmt.Errorf("not a number: %T", v)
	}
	return v, nil
}

func (o jsonOps) String(v any) (string, error) {
	if o.Kind(v) != KindString {
		return "", fmt.Errorf("not a string: %T", v)
	}
	return cast.ToStringE(v)
}

func (jsonOps) List(v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("not a list: %T", v)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func (jsonOps) Map(v any) ([]string, []any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, nil, fmt.Errorf("not a map: %T", v)
	}
	byKey := make(map[string]any, rv.Len())
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := cast.ToString(iter.Key().Interface())
		keys = append(keys, k)
		byKey[k] = iter.Value().Interface()
	}
	slices.Sort(keys)
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = byKey[k]
	}
	return keys, values, nil
}

// NodeOps is the [Ops] of node trees. Created values are detached roots
// sharing Options; a nil Options selects the defaults.
type NodeOps struct {
	Options *confnode.Options
}

func (o NodeOps) root() *confnode.Node {
	return confnode.Root(o.Options)
}

func node(v any) (*confnode.Node, error) {
	n, ok := v.(*confnode.Node)
	if !ok {
		return nil, fmt.Errorf("not a node: %T", v)
	}
	return n, nil
}

// Kind classifies a node by its value.
func (o NodeOps) Kind(v any) Kind {
	n, ok := v.(*confnode.Node)
	if !ok || n == nil {
		return KindNull
	}
	switch n.Kind() {
	case confnode.KindList:
		return KindList
	case confnode.KindMap:
		return KindMap
	case confnode.KindScalar:
		raw := n.Raw()
		if _, ok := raw.(bool); ok {
			return KindBool
		}
		if isNumber(raw) {
			return KindNumber
		}
		return KindString
	}
	return KindNull
}

// Empty returns a null root.
func (o NodeOps) Empty() any { return o.root() }

// CreateBool returns a root holding b.
func (o NodeOps) CreateBool(b bool) any { return o.scalar(b) }

// CreateNumber returns a root holding n.
func (o NodeOps) CreateNumber(n any) any { return o.scalar(n) }

// CreateString returns a root holding s.
func (o NodeOps) CreateString(s string) any { return o.scalar(s) }

func (o NodeOps) scalar(v any) *confnode.Node {
	r := o.root()
	r.SetRaw(v)
	return r
}

// CreateList returns a list root holding copies of items.
func (o NodeOps) CreateList(items []any) any {
	r := o.root()
	r.SetRaw([]any{})
	for _, item := range items {
		r.AppendListNode().SetRaw(item)
	}
	return r
}

// CreateMap returns a map root holding copies of values under keys.
func (o NodeOps) CreateMap(keys []string, values []any) any {
	r := o.root()
	r.SetRaw(map[string]any{})
	for i, k := range keys {
		r.Node(k).SetRaw(values[i])
	}
	return r
}

// Bool reads a boolean scalar.
func (o NodeOps) Bool(v any) (bool, error) {
	n, err := node(v)
	if err != nil {
		return false, err
	}
	b, ok := n.Raw().(bool)
	if !ok {
		return false, fmt.Errorf("not a bool at %s: %T", n.Path(), n.Raw())
	}
	return b, nil
}

// Number reads a numeric scalar.
func (o NodeOps) Number(v any) (any, error) {
	n, err := node(v)
	if err != nil {
		return nil, err
	}
	if raw := n.Raw(); isNumber(raw) {
		return raw, nil
	}
	return nil, fmt.Errorf("not a number at %s: %T", n.Path(), n.Raw())
}

// String reads a scalar as a string.
func (o NodeOps) String(v any) (string, error) {
	n, err := node(v)
	if err != nil {
		return "", err
	}
	if n.Kind() != confnode.KindScalar {
		return "", fmt.Errorf("not a string at %s: %s", n.Path(), n.Kind())
	}
	return cast.ToStringE(n.Raw())
}

// List returns the children of a list node.
func (o NodeOps) List(v any) ([]any, error) {
	n, err := node(v)
	if err != nil {
		return nil, err
	}
	if !n.IsList() {
		return nil, fmt.Errorf("not a list at %s: %s", n.Path(), n.Kind())
	}
	children := n.ChildrenList()
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = c
	}
	return out, nil
}

// Map returns the keys and children of a map node in insertion order.
func (o NodeOps) Map(v any) ([]string, []any, error) {
	n, err := node(v)
	if err != nil {
		return nil, nil, err
	}
	if !n.IsMap() {
		return nil, nil, fmt.Errorf("not a map at %s: %s", n.Path(), n.Kind())
	}
	keys := n.Keys()
	names := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		names[i] = cast.ToString(k)
		values[i] = n.Node(k)
	}
	return names, values, nil
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
