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
	"errors"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"rivaas.dev/confnode"
)

func init() {
	RegisterFormat(TOMLFormat{})
}

// TOMLFormat reads and writes TOML documents. Keys are loaded in document
// order; BurntSushi/toml writes them sorted, with tables after plain keys.
type TOMLFormat struct{}

// Name returns "toml".
func (TOMLFormat) Name() string { return "toml" }

// Extensions returns ".toml".
func (TOMLFormat) Extensions() []string { return []string{".toml"} }

// CommentPrefix returns "#".
func (TOMLFormat) CommentPrefix() string { return "#" }

// Decode parses a TOML document from r into root.
func (TOMLFormat) Decode(r io.Reader, root *confnode.Node) error {
	var doc map[string]any
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return err
	}

	root.SetRaw(map[string]any{})
	// Arrays are stored whole; metadata keys below them carry no index.
	arrays := make(map[string]struct{})
	for _, key := range md.Keys() {
		if underArray(arrays, key) {
			continue
		}
		v, ok := lookupTOML(doc, key)
		if !ok {
			continue
		}
		path := make([]any, len(key))
		for i, k := range key {
			path[i] = k
		}
		node := root.Node(path...)
		switch val := v.(type) {
		case map[string]any:
			if !node.IsMap() {
				node.SetRaw(map[string]any{})
			}
		case []any, []map[string]any:
			arrays[strings.Join(key, "\x00")] = struct{}{}
			node.SetRaw(normalizeTOML(val))
		default:
			node.SetRaw(normalizeTOML(val))
		}
	}
	return nil
}

func underArray(arrays map[string]struct{}, key toml.Key) bool {
	for i := 1; i < len(key); i++ {
		if _, ok := arrays[strings.Join(key[:i], "\x00")]; ok {
			return true
		}
	}
	return false
}

func lookupTOML(doc map[string]any, key toml.Key) (any, bool) {
	var cur any = doc
	for _, k := range key {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// normalizeTOML converts int64 values to int so TOML trees match the other formats.
func normalizeTOML(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeTOML(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeTOML(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalizeTOML(e)
		}
		return out
	}
	return v
}

// Encode writes root as a TOML document. The root must be a map.
func (TOMLFormat) Encode(w io.Writer, root *confnode.Node) error {
	if root.IsNull() {
		return nil
	}
	doc, ok := root.Raw().(map[string]any)
	if !ok {
		return errors.New("toml document root must be a table")
	}
	return toml.NewEncoder(w).Encode(doc)
}
