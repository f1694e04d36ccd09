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
	"time"

	"github.com/spf13/cast"
)

// The getters below convert the raw value of a node with spf13/cast. They
// never fail: values that cannot be converted yield the zero value, or the
// provided default for the Or variants when the node is null.

// String returns the value of the node as a string.
//
// Example:
//
//	host := root.Node("server", "host").String()
func (n *Node) String() string {
	return cast.ToString(n.Raw())
}

// StringOr returns the value of the node as a string, or def if the node is null.
func (n *Node) StringOr(def string) string {
	if n.IsNull() {
		return def
	}
	return cast.ToString(n.Raw())
}

// Int returns the value of the node as an int.
func (n *Node) Int() int {
	return cast.ToInt(n.Raw())
}

// IntOr returns the value of the node as an int, or def if the node is null.
func (n *Node) IntOr(def int) int {
	if n.IsNull() {
		return def
	}
	return cast.ToInt(n.Raw())
}

// Int64 returns the value of the node as an int64.
func (n *Node) Int64() int64 {
	return cast.ToInt64(n.Raw())
}

// Float64 returns the value of the node as a float64.
func (n *Node) Float64() float64 {
	return cast.ToFloat64(n.Raw())
}

// Float64Or returns the value of the node as a float64, or def if the node is null.
func (n *Node) Float64Or(def float64) float64 {
	if n.IsNull() {
		return def
	}
	return cast.ToFloat64(n.Raw())
}

// Bool returns the value of the node as a bool.
func (n *Node) Bool() bool {
	return cast.ToBool(n.Raw())
}

// BoolOr returns the value of the node as a bool, or def if the node is null.
func (n *Node) BoolOr(def bool) bool {
	if n.IsNull() {
		return def
	}
	return cast.ToBool(n.Raw())
}

// Duration returns the value of the node as a time.Duration.
func (n *Node) Duration() time.Duration {
	return cast.ToDuration(n.Raw())
}

// DurationOr returns the value of the node as a time.Duration, or def if the node is null.
func (n *Node) DurationOr(def time.Duration) time.Duration {
	if n.IsNull() {
		return def
	}
	return cast.ToDuration(n.Raw())
}

// StringSlice returns the value of the node as a slice of strings.
// A scalar yields a single-element slice.
func (n *Node) StringSlice() []string {
	if n.kind == KindScalar {
		return []string{cast.ToString(n.value)}
	}
	return cast.ToStringSlice(n.Raw())
}

// StringMap returns the value of the node as a map[string]any.
func (n *Node) StringMap() map[string]any {
	return cast.ToStringMap(n.Raw())
}
