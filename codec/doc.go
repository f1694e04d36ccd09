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

// Package codec converts configuration values to and from bytes.
//
// Codecs are registered by name in a process-wide registry. The built-in
// codecs are:
//
//   - "json": goccy/go-json
//   - "yaml": goccy/go-yaml (values only, no comments)
//   - "toml": BurntSushi/toml
//   - "msgpack": vmihailenco/msgpack
//   - "env_var": KEY=value lines mapped to nested maps
//   - "caster-<type>": raw text to a typed scalar through spf13/cast
//
// Codecs decode into plain Go values. Sources feed those values into a
// node tree; the loader package uses the codecs that have no
// comment-preserving format of their own.
//
//	dec, err := codec.GetDecoder(codec.TypeJSON)
//	var m map[string]any
//	err = dec.Decode(data, &m)
package codec
