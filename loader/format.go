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
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"

	"rivaas.dev/confnode"
)

// Format reads and writes the body of a document as a node tree.
// Headers are handled by the [Loader]; a Format only sees the body.
type Format interface {
	// Name returns the registry name of the format, e.g. "yaml".
	Name() string
	// Extensions returns the file extensions (with leading dot) the format handles.
	Extensions() []string
	// CommentPrefix returns the line comment marker, or "" if the format has no comments.
	CommentPrefix() string
	// Decode parses r into root.
	Decode(r io.Reader, root *confnode.Node) error
	// Encode writes root to w.
	Encode(w io.Writer, root *confnode.Node) error
}

// NativeTyper is implemented by formats that can only store a fixed set of
// scalar types. Loaders restrict the node options to those types.
type NativeTyper interface {
	NativeTypes() []reflect.Type
}

var (
	formatsMu sync.RWMutex
	formats   = make(map[string]Format)
	// extensionFormats maps file extensions to format names for automatic detection.
	extensionFormats = make(map[string]string)
)

// RegisterFormat registers f under its name and extensions, replacing any
// format registered under the same name or extension.
func RegisterFormat(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	formats[f.Name()] = f
	for _, ext := range f.Extensions() {
		extensionFormats[strings.ToLower(ext)] = f.Name()
	}
}

// ForName returns the format registered under name.
func ForName(name string) (Format, error) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	f, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("format not found: %s", name)
	}
	return f, nil
}

// ForPath detects the format of path from its file extension.
func ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	formatsMu.RLock()
	defer formatsMu.RUnlock()

	if name, ok := extensionFormats[ext]; ok {
		return formats[name], nil
	}
	return nil, fmt.Errorf("cannot detect format from extension %q; use ForName() to specify format explicitly", ext)
}

// Formats returns the names of all registered formats in sorted order.
func Formats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
