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
package codec

import "github.com/goccy/go-yaml"

// TypeYAML identifies the YAML codec.
const TypeYAML Type = "yaml"

func init() {
	Register(TypeYAML, YAMLCodec{Indent: 2})
}

// YAMLCodec encodes and decodes plain YAML values with goccy/go-yaml.
// Comments and styles are not kept; use the loader/yaml format for that.
// Indent is the number of spaces per level; zero keeps the library default.
type YAMLCodec struct {
	Indent int
}

// Encode returns the YAML encoding of v.
func (c YAMLCodec) Encode(v any) ([]byte, error) {
	var opts []yaml.EncodeOption
	if c.Indent > 0 {
		opts = append(opts, yaml.Indent(c.Indent), yaml.IndentSequence(true))
	}
	return yaml.MarshalWithOptions(v, opts...)
}

// Decode parses YAML data into v. Parse errors wrap [confnode.ErrMalformed].
func (YAMLCodec) Decode(data []byte, v any) error {
	return malformed(TypeYAML, yaml.Unmarshal(data, v))
}
