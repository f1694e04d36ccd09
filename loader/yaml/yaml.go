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
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
	goyaml "go.yaml.in/yaml/v4"

	"rivaas.dev/confnode"
	"rivaas.dev/confnode/loader"
)

const (
	// DefaultIndent is the number of spaces per nesting level.
	DefaultIndent = 4
	// DefaultLineLength is the preferred maximum width of emitted lines.
	DefaultLineLength = 150
)

// nativeTypes are the scalar types YAML represents without conversion.
var nativeTypes = []reflect.Type{
	reflect.TypeFor[bool](),
	reflect.TypeFor[int](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[string](),
	reflect.TypeFor[[]byte](),
	reflect.TypeFor[time.Time](),
}

func init() {
	loader.RegisterFormat(MustNew())
}

// Option is a functional option used to configure a [Format].
type Option func(f *Format) error

// Format reads and writes YAML documents through the go.yaml.in/yaml/v4
// node API. Comments are kept as node comments; scalar quoting and
// collection styles are kept as hints.
//
// Every call uses its own parser and emitter, so a Format is safe for
// concurrent use.
type Format struct {
	indent     int
	lineLength int
	style      NodeStyle
	comments   bool
}

// WithIndent sets the number of spaces per nesting level (2 to 9).
func WithIndent(indent int) Option {
	return func(f *Format) error {
		if indent < 2 || indent > 9 {
			return fmt.Errorf("indent must be between 2 and 9, got %d", indent)
		}
		f.indent = indent
		return nil
	}
}

// WithLineLength sets the preferred maximum line width. Zero or a negative
// value disables wrapping.
func WithLineLength(length int) Option {
	return func(f *Format) error {
		if length <= 0 {
			length = -1
		}
		f.lineLength = length
		return nil
	}
}

// WithNodeStyle sets the style of collections that carry no [NodeStyleHint].
func WithNodeStyle(style NodeStyle) Option {
	return func(f *Format) error {
		if style < StyleAuto || style > StyleBlock {
			return fmt.Errorf("invalid node style %d", int(style))
		}
		f.style = style
		return nil
	}
}

// WithComments enables or disables reading and writing node comments.
func WithComments(enabled bool) Option {
	return func(f *Format) error {
		f.comments = enabled
		return nil
	}
}

// New creates a YAML format. All option errors are joined and returned together.
func New(opts ...Option) (*Format, error) {
	f := &Format{
		indent:     DefaultIndent,
		lineLength: DefaultLineLength,
		style:      StyleAuto,
		comments:   true,
	}
	var errs error
	for _, opt := range opts {
		if err := opt(f); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("yaml: %w", errs)
	}
	return f, nil
}

// MustNew creates a YAML format or panics if an option fails.
func MustNew(opts ...Option) *Format {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// NewLoader creates a [loader.Loader] for a YAML format built from opts.
func NewLoader(opts []Option, loaderOpts ...loader.Option) (*loader.Loader, error) {
	f, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return loader.New(f, loaderOpts...)
}

// Name returns "yaml".
func (f *Format) Name() string { return "yaml" }

// Extensions returns ".yaml" and ".yml".
func (f *Format) Extensions() []string { return []string{".yaml", ".yml"} }

// CommentPrefix returns "#".
func (f *Format) CommentPrefix() string { return "#" }

// NativeTypes returns the scalar types stored without conversion.
func (f *Format) NativeTypes() []reflect.Type { return nativeTypes }

// Decode parses the first document of r into root.
func (f *Format) Decode(r io.Reader, root *confnode.Node) error {
	l, err := goyaml.NewLoader(r)
	if err != nil {
		return err
	}
	var doc goyaml.Node
	if err := l.Load(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if doc.Kind != goyaml.DocumentNode {
		return f.decode(&doc, root)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	return f.decode(doc.Content[0], root)
}

func (f *Format) decode(y *goyaml.Node, n *confnode.Node) error {
	for y.Kind == goyaml.AliasNode {
		y = y.Alias
	}

	switch y.Kind {
	case goyaml.MappingNode:
		n.SetRaw(map[string]any{})
		f.decodeStyle(y, n)
		var merges []*goyaml.Node
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != goyaml.ScalarNode {
				return fmt.Errorf("line %d: unsupported non-scalar key at %s", k.Line, n.Path())
			}
			if k.ShortTag() == "!!merge" {
				merges = append(merges, v)
				continue
			}
			child := n.Node(k.Value)
			if err := f.decode(v, child); err != nil {
				return err
			}
			f.decodeComment(child, k, v)
		}
		return f.merge(n, merges)
	case goyaml.SequenceNode:
		n.SetRaw([]any{})
		f.decodeStyle(y, n)
		for _, item := range y.Content {
			child := n.AppendListNode()
			if err := f.decode(item, child); err != nil {
				return err
			}
			f.decodeComment(child, item, nil)
		}
		return nil
	case goyaml.ScalarNode:
		v, err := scalarValue(y)
		if err != nil {
			return fmt.Errorf("line %d: %w", y.Line, err)
		}
		n.SetRaw(v)
		if style, ok := scalarStyleOf(y.Style); ok && v != nil {
			confnode.SetHint(n, ScalarStyleHint, style)
		}
		return nil
	}
	return fmt.Errorf("line %d: unsupported node kind %d", y.Line, y.Kind)
}

// merge applies "<<" merge keys: entries of the referenced mappings fill
// keys the mapping does not define itself.
func (f *Format) merge(n *confnode.Node, merges []*goyaml.Node) error {
	for _, m := range merges {
		sources := []*goyaml.Node{m}
		if m.Kind == goyaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			tmp := confnode.Root(n.Options())
			if err := f.decode(src, tmp); err != nil {
				return err
			}
			if !tmp.IsMap() {
				return fmt.Errorf("line %d: merge value at %s is not a mapping", src.Line, n.Path())
			}
			n.MergeFrom(tmp)
		}
	}
	return nil
}

func (f *Format) decodeStyle(y *goyaml.Node, n *confnode.Node) {
	style := StyleBlock
	if y.Style&goyaml.FlowStyle != 0 {
		style = StyleFlow
	}
	confnode.SetHint(n, NodeStyleHint, style)
}

func (f *Format) decodeComment(n *confnode.Node, nodes ...*goyaml.Node) {
	if !f.comments || n.Virtual() {
		return
	}
	for _, y := range nodes {
		if y != nil && y.HeadComment != "" {
			n.SetComment(uncomment(y.HeadComment))
			return
		}
	}
	for _, y := range nodes {
		if y != nil && y.LineComment != "" {
			n.SetComment(uncomment(y.LineComment))
			return
		}
	}
}

// scalarValue resolves a scalar to bool, int, float64, string, []byte,
// time.Time or nil.
func scalarValue(y *goyaml.Node) (any, error) {
	switch y.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!str":
		return y.Value, nil
	case "!!timestamp":
		var t time.Time
		if err := y.Decode(&t); err != nil {
			return nil, err
		}
		return t, nil
	case "!!binary":
		var b []byte
		if err := y.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	}
	var v any
	if err := y.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode writes root as a single YAML document.
func (f *Format) Encode(w io.Writer, root *confnode.Node) error {
	if root.IsNull() {
		return nil
	}
	body, err := f.encode(root)
	if err != nil {
		return err
	}
	doc := &goyaml.Node{Kind: goyaml.DocumentNode, Content: []*goyaml.Node{body}}

	d, err := goyaml.NewDumper(w,
		goyaml.WithIndent(f.indent),
		goyaml.WithLineWidth(f.lineLength),
		goyaml.WithUnicode(true),
	)
	if err != nil {
		return err
	}
	if err := d.Dump(doc); err != nil {
		return err
	}
	return d.Close()
}

func (f *Format) encode(n *confnode.Node) (*goyaml.Node, error) {
	switch n.Kind() {
	case confnode.KindMap:
		y := &goyaml.Node{Kind: goyaml.MappingNode, Tag: "!!map"}
		for _, k := range n.Keys() {
			child := n.Node(k)
			key := &goyaml.Node{}
			key.SetString(cast.ToString(k))
			key.Style &^= goyaml.LiteralStyle
			value, err := f.encode(child)
			if err != nil {
				return nil, err
			}
			if f.comments {
				key.HeadComment = comment(child.Comment())
			}
			y.Content = append(y.Content, key, value)
		}
		y.Style = f.collectionStyle(n, y)
		return y, nil
	case confnode.KindList:
		y := &goyaml.Node{Kind: goyaml.SequenceNode, Tag: "!!seq"}
		for _, child := range n.ChildrenList() {
			value, err := f.encode(child)
			if err != nil {
				return nil, err
			}
			if f.comments {
				value.HeadComment = comment(child.Comment())
			}
			y.Content = append(y.Content, value)
		}
		y.Style = f.collectionStyle(n, y)
		return y, nil
	case confnode.KindScalar:
		y := &goyaml.Node{}
		if b, ok := n.Raw().([]byte); ok {
			y.Kind, y.Tag, y.Value = goyaml.ScalarNode, "!!binary", base64.StdEncoding.EncodeToString(b)
		} else if err := y.Encode(n.Raw()); err != nil {
			return nil, confnode.NewPathError(n, nil, "encode", err)
		}
		if style, ok := confnode.OwnHint(n, ScalarStyleHint); ok {
			y.Style = style.yaml()
		}
		return y, nil
	}
	return &goyaml.Node{Kind: goyaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
}

// collectionStyle picks flow or block for a mapping or sequence: the node
// hint first, then the format setting, then flow only for non-empty
// collections of scalars.
func (f *Format) collectionStyle(n *confnode.Node, y *goyaml.Node) goyaml.Style {
	style, ok := confnode.HintOf(n, NodeStyleHint)
	if !ok || style == StyleAuto {
		style = f.style
	}
	if style == StyleAuto {
		style = StyleBlock
		if len(y.Content) > 0 && !f.hasComments(n) {
			style = StyleFlow
			for _, c := range y.Content {
				if c.Kind != goyaml.ScalarNode {
					style = StyleBlock
					break
				}
			}
		}
	}
	if style == StyleFlow {
		return goyaml.FlowStyle
	}
	return 0
}

func (f *Format) hasComments(n *confnode.Node) bool {
	if !f.comments {
		return false
	}
	var children []*confnode.Node
	if n.IsMap() {
		for _, k := range n.Keys() {
			children = append(children, n.Node(k))
		}
	} else {
		children = n.ChildrenList()
	}
	for _, c := range children {
		if c.Comment() != "" {
			return true
		}
	}
	return false
}

// uncomment strips the comment markers from a YAML comment block.
func uncomment(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimPrefix(strings.TrimSpace(line), "#")
		lines[i] = strings.TrimPrefix(line, " ")
	}
	return strings.Join(lines, "\n")
}

// comment turns text into a YAML comment block.
func comment(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = "#"
			continue
		}
		lines[i] = "# " + line
	}
	return strings.Join(lines, "\n")
}
