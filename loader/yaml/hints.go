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

package yaml

import (
	goyaml "go.yaml.in/yaml/v4"

	"rivaas.dev/confnode"
)

// NodeStyle is the presentation of a YAML mapping or sequence.
type NodeStyle int

const (
	// StyleAuto uses flow style for collections holding only scalars and
	// block style otherwise.
	StyleAuto NodeStyle = iota
	// StyleFlow is the compact, JSON-like style: {a: [1, 2]}.
	StyleFlow
	// StyleBlock is the indented, line-per-entry style.
	StyleBlock
)

// String returns the name of the style.
func (s NodeStyle) String() string {
	switch s {
	case StyleFlow:
		return "flow"
	case StyleBlock:
		return "block"
	}
	return "auto"
}

// ScalarStyle is the presentation of a YAML scalar. When a style cannot
// represent a value, the emitter picks a valid one instead.
type ScalarStyle int

// Scalar styles.
const (
	ScalarPlain ScalarStyle = iota
	ScalarDoubleQuoted
	ScalarSingleQuoted
	ScalarLiteral
	ScalarFolded
)

// String returns the name of the style.
func (s ScalarStyle) String() string {
	switch s {
	case ScalarDoubleQuoted:
		return "double-quoted"
	case ScalarSingleQuoted:
		return "single-quoted"
	case ScalarLiteral:
		return "literal"
	case ScalarFolded:
		return "folded"
	}
	return "plain"
}

var (
	// ScalarStyleHint records the quoting of a scalar. It is set on load for
	// every scalar that was not written plain.
	ScalarStyleHint = confnode.NewHint[ScalarStyle]("configurate:yaml/scalarstyle")

	// NodeStyleHint records the style of a mapping or sequence. Descendants
	// without their own value inherit it.
	NodeStyleHint = confnode.NewInheritableHint[NodeStyle]("configurate:yaml/nodestyle")
)

func scalarStyleOf(style goyaml.Style) (ScalarStyle, bool) {
	switch {
	case style&goyaml.DoubleQuotedStyle != 0:
		return ScalarDoubleQuoted, true
	case style&goyaml.SingleQuotedStyle != 0:
		return ScalarSingleQuoted, true
	case style&goyaml.LiteralStyle != 0:
		return ScalarLiteral, true
	case style&goyaml.FoldedStyle != 0:
		return ScalarFolded, true
	}
	return ScalarPlain, false
}

func (s ScalarStyle) yaml() goyaml.Style {
	switch s {
	case ScalarDoubleQuoted:
		return goyaml.DoubleQuotedStyle
	case ScalarSingleQuoted:
		return goyaml.SingleQuotedStyle
	case ScalarLiteral:
		return goyaml.LiteralStyle
	case ScalarFolded:
		return goyaml.FoldedStyle
	}
	return 0
}
