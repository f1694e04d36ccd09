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

	"github.com/spf13/cast"
)

// Kind identifies the value type currently held by a [Node].
type Kind int

// Node kinds. A node holds exactly one kind of value at any time.
const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Path is the sequence of keys leading from the root to a node.
type Path []any

// String joins the path elements with dots. List indexes are rendered in brackets.
func (p Path) String() string {
	var b strings.Builder
	for i, k := range p {
		if idx, ok := listIndex(k); ok {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(cast.ToString(k))
	}
	return b.String()
}

// Node is a single addressable value in a configuration tree: a scalar, an
// ordered list of children or an insertion-ordered map of children.
//
// Nodes returned for absent paths are virtual: they know their parent and
// key but are only attached to the tree once a value is written to them.
//
// A Node is not safe for concurrent modification.
type Node struct {
	key      any
	parent   *Node
	options  *Options
	attached bool

	kind     Kind
	value    any
	list     []*Node
	keys     []any
	children map[any]*Node

	comment string
	hints   map[string]any
}

// New creates an empty root node configured with the provided options.
// Option errors are joined and returned together.
func New(opts ...Option) (*Node, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	return Root(o), nil
}

// MustNew creates an empty root node or panics if an option fails.
// Use this in main() or initialization code where panic is acceptable.
func MustNew(opts ...Option) *Node {
	n, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("confnode: failed to create node: %v", err))
	}
	return n
}

// Root creates an empty root node sharing the given options.
// A nil options value selects the defaults.
func Root(o *Options) *Node {
	if o == nil {
		o = defaultOptions()
	}
	return &Node{options: o, attached: true}
}

// Options returns the options shared by the tree.
func (n *Node) Options() *Options {
	return n.options
}

// Key returns the key of the node in its parent, or nil for a root.
func (n *Node) Key() any {
	return n.key
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path returns the keys leading from the root to this node.
func (n *Node) Path() Path {
	var p Path
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		p = append(p, cur.key)
	}
	slices.Reverse(p)
	return p
}

// Virtual reports whether the node is detached from its tree.
func (n *Node) Virtual() bool {
	return !n.attached
}

// Kind returns the kind of value held by the node.
func (n *Node) Kind() Kind {
	return n.kind
}

// IsNull reports whether the node holds no value.
func (n *Node) IsNull() bool {
	return n.kind == KindNull
}

// IsList reports whether the node holds a list.
func (n *Node) IsList() bool {
	return n.kind == KindList
}

// IsMap reports whether the node holds a map.
func (n *Node) IsMap() bool {
	return n.kind == KindMap
}

// Empty reports whether the node holds nothing: null, an empty string,
// an empty list or an empty map.
func (n *Node) Empty() bool {
	switch n.kind {
	case KindScalar:
		s, ok := n.value.(string)
		return ok && s == ""
	case KindList:
		return len(n.list) == 0
	case KindMap:
		return len(n.keys) == 0
	}
	return true
}

// Node returns the descendant at path. Missing descendants are returned as
// virtual nodes.
func (n *Node) Node(path ...any) *Node {
	cur := n
	for _, k := range path {
		cur = cur.child(k)
	}
	return cur
}

// HasChild reports whether a child exists at path.
func (n *Node) HasChild(path ...any) bool {
	return !n.Node(path...).Virtual()
}

func (n *Node) child(key any) *Node {
	key = normalizeKey(key)
	switch n.kind {
	case KindMap:
		if c, ok := n.children[key]; ok {
			return c
		}
	case KindList:
		if i, ok := listIndex(key); ok && i >= 0 && i < len(n.list) {
			return n.list[i]
		}
	}
	return &Node{key: key, parent: n, options: n.options}
}

// attach inserts a virtual node (and its virtual ancestors) into the tree.
func (n *Node) attach() {
	if n.attached {
		return
	}
	p := n.parent
	if p == nil {
		n.attached = true
		return
	}
	p.attach()

	if p.kind == KindList {
		if i, ok := listIndex(n.key); ok && i >= 0 {
			for len(p.list) < i {
				p.list = append(p.list, &Node{key: len(p.list), parent: p, options: p.options, attached: true})
			}
			if i < len(p.list) {
				p.list[i].attached = false
				p.list[i] = n
			} else {
				p.list = append(p.list, n)
			}
			n.attached = true
			return
		}
	}

	p.setKind(KindMap)
	if existing, ok := p.children[n.key]; ok {
		existing.attached = false
	} else {
		p.keys = append(p.keys, n.key)
	}
	p.children[n.key] = n
	n.attached = true
}

// setKind switches the node to kind k, clearing the previous value and
// detaching previous children.
func (n *Node) setKind(k Kind) {
	if n.kind == k {
		return
	}
	n.clear()
	n.kind = k
	if k == KindMap {
		n.children = make(map[any]*Node)
	}
}

func (n *Node) clear() {
	for _, c := range n.list {
		c.attached = false
	}
	for _, c := range n.children {
		c.attached = false
	}
	n.kind = KindNull
	n.value = nil
	n.list = nil
	n.keys = nil
	n.children = nil
}

// Raw returns a plain Go view of the subtree: scalars as stored, lists as
// []any and maps as map[string]any.
func (n *Node) Raw() any {
	switch n.kind {
	case KindScalar:
		return n.value
	case KindList:
		out := make([]any, len(n.list))
		for i, c := range n.list {
			out[i] = c.Raw()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[cast.ToString(k)] = n.children[k].Raw()
		}
		return out
	}
	return nil
}

// SetRaw replaces the value of the node with v.
//
// Go maps become map nodes (keys in sorted order), slices and arrays other
// than []byte become list nodes, a *Node is deep-copied and anything else is
// stored as a scalar. Setting nil clears the node and removes it from a map
// parent.
func (n *Node) SetRaw(v any) {
	switch val := v.(type) {
	case nil:
		n.clear()
		if n.attached && n.parent != nil && n.parent.kind == KindMap {
			n.parent.RemoveChild(n.key)
		}
		return
	case *Node:
		if val == n {
			return
		}
		n.setFrom(val)
		n.attach()
		return
	case map[string]any:
		n.clear()
		n.setKind(KindMap)
		n.attach()
		for _, k := range sortedKeys(val) {
			n.Node(k).SetRaw(val[k])
		}
		return
	case []any:
		n.clear()
		n.setKind(KindList)
		n.attach()
		for _, e := range val {
			n.AppendListNode().SetRaw(e)
		}
		return
	case []byte:
		n.setScalar(slices.Clone(val))
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			n.SetRaw(nil)
			return
		}
	case reflect.Map:
		n.clear()
		n.setKind(KindMap)
		n.attach()
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, k := range keys {
			n.Node(k.Interface()).SetRaw(rv.MapIndex(k).Interface())
		}
		return
	case reflect.Slice, reflect.Array:
		n.clear()
		n.setKind(KindList)
		n.attach()
		for i := range rv.Len() {
			n.AppendListNode().SetRaw(rv.Index(i).Interface())
		}
		return
	}
	n.setScalar(v)
}

func (n *Node) setScalar(v any) {
	n.setKind(KindScalar)
	n.value = v
	n.attach()
}

// setFrom deep-copies the value, comment and hints of src into n.
func (n *Node) setFrom(src *Node) {
	n.clear()
	n.kind = src.kind
	n.value = src.value
	switch src.kind {
	case KindList:
		n.list = make([]*Node, 0, len(src.list))
		for i, c := range src.list {
			cp := &Node{key: i, parent: n, options: n.options, attached: true}
			cp.setFrom(c)
			n.list = append(n.list, cp)
		}
	case KindMap:
		n.children = make(map[any]*Node, len(src.keys))
		n.keys = slices.Clone(src.keys)
		for _, k := range src.keys {
			cp := &Node{key: k, parent: n, options: n.options, attached: true}
			cp.setFrom(src.children[k])
			n.children[k] = cp
		}
	}
	if src.comment != "" {
		n.comment = src.comment
	}
	for k, v := range src.hints {
		if n.hints == nil {
			n.hints = make(map[string]any, len(src.hints))
		}
		n.hints[k] = v
	}
}

// ChildrenList returns the children of a list node.
func (n *Node) ChildrenList() []*Node {
	if n.kind != KindList {
		return nil
	}
	return slices.Clone(n.list)
}

// ChildrenMap returns the children of a map node keyed by their key.
func (n *Node) ChildrenMap() map[any]*Node {
	if n.kind != KindMap {
		return nil
	}
	out := make(map[any]*Node, len(n.children))
	for k, v := range n.children {
		out[k] = v
	}
	return out
}

// Keys returns the keys of a map node in insertion order.
func (n *Node) Keys() []any {
	if n.kind != KindMap {
		return nil
	}
	return slices.Clone(n.keys)
}

// Len returns the number of children of a list or map node.
func (n *Node) Len() int {
	switch n.kind {
	case KindList:
		return len(n.list)
	case KindMap:
		return len(n.keys)
	}
	return 0
}

// AppendListNode appends a new null child to the node and returns it.
// A node that is not a list is converted to an empty list first.
func (n *Node) AppendListNode() *Node {
	n.setKind(KindList)
	n.attach()
	c := &Node{key: len(n.list), parent: n, options: n.options, attached: true}
	n.list = append(n.list, c)
	return c
}

// RemoveChild removes the child with key and reports whether it existed.
func (n *Node) RemoveChild(key any) bool {
	key = normalizeKey(key)
	switch n.kind {
	case KindMap:
		c, ok := n.children[key]
		if !ok {
			return false
		}
		c.attached = false
		delete(n.children, key)
		n.keys = slices.DeleteFunc(n.keys, func(k any) bool { return k == key })
		return true
	case KindList:
		i, ok := listIndex(key)
		if !ok || i < 0 || i >= len(n.list) {
			return false
		}
		n.list[i].attached = false
		n.list = slices.Delete(n.list, i, i+1)
		for j := i; j < len(n.list); j++ {
			n.list[j].key = j
		}
		return true
	}
	return false
}

// Comment returns the comment attached to the node.
func (n *Node) Comment() string {
	return n.comment
}

// SetComment sets the comment of the node, attaching it if virtual.
func (n *Node) SetComment(comment string) {
	n.comment = comment
	n.attach()
}

// SetCommentIfAbsent sets the comment only if the node has none.
func (n *Node) SetCommentIfAbsent(comment string) {
	if n.comment == "" {
		n.SetComment(comment)
	}
}

// MergeFrom fills values absent from n with the values of other.
// Maps are merged key by key; existing values are never overwritten.
func (n *Node) MergeFrom(other *Node) {
	if other == nil {
		return
	}
	if n.comment == "" && other.comment != "" {
		n.comment = other.comment
	}
	switch {
	case n.kind == KindNull:
		if other.kind != KindNull {
			n.setFrom(other)
			n.attach()
		}
	case n.kind == KindMap && other.kind == KindMap:
		for _, k := range other.keys {
			n.Node(k).MergeFrom(other.children[k])
		}
	}
}

// Copy returns a deep copy of the subtree as a new root sharing the same options.
func (n *Node) Copy() *Node {
	cp := &Node{key: n.key, options: n.options, attached: true}
	cp.setFrom(n)
	return cp
}

// Walk visits the node and its descendants depth-first, parents before
// children. Returning an error from fn stops the walk.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	switch n.kind {
	case KindList:
		for _, c := range n.list {
			if err := c.Walk(fn); err != nil {
				return err
			}
		}
	case KindMap:
		for _, k := range n.keys {
			if err := n.children[k].Walk(fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// normalizeKey folds integer keys to int and non-comparable keys to strings.
func normalizeKey(key any) any {
	if i, ok := listIndex(key); ok {
		return i
	}
	if key == nil {
		return ""
	}
	if !reflect.TypeOf(key).Comparable() {
		return fmt.Sprint(key)
	}
	return key
}

func listIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt(k), true
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
