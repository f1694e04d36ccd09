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

// Hint is a typed representation hint: out-of-band metadata attached to a
// node that formats use when emitting it (a quoting style, a flow style).
// Hints never affect the value of a node.
type Hint[T any] struct {
	id          string
	def         T
	hasDefault  bool
	inheritable bool
}

// NewHint creates a hint that applies only to the node it is set on.
func NewHint[T any](id string) *Hint[T] {
	return &Hint[T]{id: id}
}

// NewInheritableHint creates a hint that, when not set on a node, is looked
// up on its ancestors.
func NewInheritableHint[T any](id string) *Hint[T] {
	return &Hint[T]{id: id, inheritable: true}
}

// WithDefault returns a copy of the hint that reports def when unset.
func (h *Hint[T]) WithDefault(def T) *Hint[T] {
	cp := *h
	cp.def = def
	cp.hasDefault = true
	return &cp
}

// ID returns the identifier of the hint.
func (h *Hint[T]) ID() string {
	return h.id
}

// Inheritable reports whether the hint is looked up on ancestors.
func (h *Hint[T]) Inheritable() bool {
	return h.inheritable
}

// SetHint sets hint h on node n.
func SetHint[T any](n *Node, h *Hint[T], v T) {
	if n.hints == nil {
		n.hints = make(map[string]any)
	}
	n.hints[h.id] = v
}

// ClearHint removes hint h from node n.
func ClearHint[T any](n *Node, h *Hint[T]) {
	delete(n.hints, h.id)
}

// OwnHint returns the value of h set directly on n.
func OwnHint[T any](n *Node, h *Hint[T]) (T, bool) {
	v, ok := n.hints[h.id].(T)
	return v, ok
}

// HintOf returns the effective value of h for n: the node's own value, then
// for inheritable hints the closest ancestor's value, then the hint default.
func HintOf[T any](n *Node, h *Hint[T]) (T, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if v, ok := OwnHint(cur, h); ok {
			return v, true
		}
		if !h.inheritable {
			break
		}
	}
	return h.def, h.hasDefault
}

// Hints returns a copy of every hint set on n keyed by hint identifier.
func (n *Node) Hints() map[string]any {
	out := make(map[string]any, len(n.hints))
	for k, v := range n.hints {
		out[k] = v
	}
	return out
}
