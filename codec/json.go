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

import "github.com/goccy/go-json"

// TypeJSON identifies the JSON codec.
const TypeJSON Type = "json"

func init() {
	Register(TypeJSON, JSONCodec{Indent: "  "})
}

// JSONCodec encodes and decodes JSON with goccy/go-json.
// A non-empty Indent produces indented output.
type JSONCodec struct {
	Indent string
}

// Encode returns the JSON encoding of v.
func (c JSONCodec) Encode(v any) ([]byte, error) {
	if c.Indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", c.Indent)
}

// Decode parses JSON data into v. Syntax errors wrap [confnode.ErrMalformed].
func (JSONCodec) Decode(data []byte, v any) error {
	return malformed(TypeJSON, json.Unmarshal(data, v))
}
