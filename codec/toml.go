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

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// TypeTOML identifies the TOML codec.
const TypeTOML Type = "toml"

func init() {
	Register(TypeTOML, TOMLCodec{Indent: "  "})
}

// TOMLCodec encodes and decodes TOML with BurntSushi/toml. Indent prefixes
// nested tables; the zero value writes them flush left.
type TOMLCodec struct {
	Indent string
}

// Encode returns the TOML encoding of v, which must be a map or struct.
func (c TOMLCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = c.Indent
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses TOML data into v. Parse errors wrap [confnode.ErrMalformed]
// and carry the line of the failure.
func (TOMLCodec) Decode(data []byte, v any) error {
	_, err := toml.NewDecoder(bytes.NewReader(data)).Decode(v)
	return malformed(TypeTOML, err)
}
