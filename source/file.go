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

package source

import (
	"context"
	"fmt"
	"os"

	"rivaas.dev/confnode/codec"
)

// File loads configuration from a file path or from byte content.
type File struct {
	path    string
	data    []byte
	decoder codec.Decoder
}

// NewFile creates a File source reading path and parsing it with decoder.
// Environment variables in path are expanded.
func NewFile(path string, decoder codec.Decoder) *File {
	return &File{
		path:    os.ExpandEnv(path),
		decoder: decoder,
	}
}

// NewFileContent creates a File source parsing data with decoder.
func NewFileContent(data []byte, decoder codec.Decoder) *File {
	return &File{
		data:    data,
		decoder: decoder,
	}
}

// Path returns the file path, or "" for content sources.
func (f *File) Path() string {
	return f.path
}

// Load reads the file, or uses the content, and decodes it into a map.
// Empty input yields an empty map.
//
// Errors:
//   - Returns error if the file cannot be read
//   - Returns error if decoding fails
func (f *File) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := f.data
	if f.path != "" {
		var err error
		if data, err = os.ReadFile(f.path); err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	config := make(map[string]any)
	if len(data) == 0 {
		return config, nil
	}
	if err := f.decoder.Decode(data, &config); err != nil {
		return nil, fmt.Errorf("failed to decode file: %w", err)
	}
	if config == nil {
		config = make(map[string]any)
	}

	return config, nil
}
