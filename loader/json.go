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

package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"rivaas.dev/confnode"
)

func init() {
	RegisterFormat(JSONFormat{Indent: "  "})
}

// JSONFormat reads and writes JSON documents while keeping the key order of
// objects. Integral numbers are decoded as int, others as float64.
type JSONFormat struct {
	// Indent is repeated once per nesting level. An empty indent writes
	// compact JSON.
	Indent string
}

// Name returns "json".
func (JSONFormat) Name() string { return "json" }

// Extensions returns ".json".
func (JSONFormat) Extensions() []string { return []string{".json"} }

// CommentPrefix returns "": JSON has no comments.
func (JSONFormat) CommentPrefix() string { return "" }

// Decode parses one JSON value from r into root.
func (JSONFormat) Decode(r io.Reader, root *confnode.Node) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if err := decodeJSON(dec, tok, root); err != nil {
		return err
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected token %v after document", tok)
	}
	return nil
}

func decodeJSON(dec *json.Decoder, tok json.Token, n *confnode.Node) error {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n.SetRaw(map[string]any{})
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("expected object key at %s, got %v", n.Path(), keyTok)
				}
				valTok, err := dec.Token()
				if err != nil {
					return err
				}
				if err := decodeJSON(dec, valTok, n.Node(key)); err != nil {
					return err
				}
			}
			return expectDelim(dec, '}')
		case '[':
			n.SetRaw([]any{})
			for dec.More() {
				elemTok, err := dec.Token()
				if err != nil {
					return err
				}
				if err := decodeJSON(dec, elemTok, n.AppendListNode()); err != nil {
					return err
				}
			}
			return expectDelim(dec, ']')
		}
		return fmt.Errorf("unexpected %v at %s", t, n.Path())
	case json.Number:
		v, err := jsonNumber(t)
		if err != nil {
			return err
		}
		n.SetRaw(v)
	default:
		n.SetRaw(t)
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %v, got %v", want, tok)
	}
	return nil
}

func jsonNumber(num json.Number) (any, error) {
	if i, err := strconv.Atoi(num.String()); err == nil {
		return i, nil
	}
	return num.Float64()
}

// Encode writes root as JSON followed by a newline.
func (f JSONFormat) Encode(w io.Writer, root *confnode.Node) error {
	var buf bytes.Buffer
	if err := f.encode(&buf, root, 0); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func (f JSONFormat) encode(buf *bytes.Buffer, n *confnode.Node, depth int) error {
	switch n.Kind() {
	case confnode.KindMap:
		keys := n.Keys()
		if len(keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			f.newline(buf, depth+1)
			key, err := json.Marshal(cast.ToString(k))
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if f.Indent != "" {
				buf.WriteByte(' ')
			}
			if err := f.encode(buf, n.Node(k), depth+1); err != nil {
				return err
			}
		}
		f.newline(buf, depth)
		buf.WriteByte('}')
	case confnode.KindList:
		children := n.ChildrenList()
		if len(children) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, c := range children {
			if i > 0 {
				buf.WriteByte(',')
			}
			f.newline(buf, depth+1)
			if err := f.encode(buf, c, depth+1); err != nil {
				return err
			}
		}
		f.newline(buf, depth)
		buf.WriteByte(']')
	case confnode.KindScalar:
		data, err := json.Marshal(n.Raw())
		if err != nil {
			return confnode.NewPathError(n, nil, "encode", err)
		}
		buf.Write(data)
	default:
		buf.WriteString("null")
	}
	return nil
}

func (f JSONFormat) newline(buf *bytes.Buffer, depth int) {
	if f.Indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(f.Indent, depth))
}
