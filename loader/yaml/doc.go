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

// Package yaml provides the YAML format for [loader.Loader].
//
// Documents are read with go.yaml.in/yaml/v4, which resolves plain scalars
// by the YAML 1.2 core schema: only true and false are booleans, so values
// such as yes, no, on and off load as strings. Timestamps and !!binary
// scalars load as time.Time and []byte and are written back with the same
// tags. Comments, flow or block layout and scalar quoting are kept as node
// hints so that a load and save round trip preserves them.
//
// Importing the package registers the format for the .yaml and .yml
// extensions:
//
//	import _ "rivaas.dev/confnode/loader/yaml"
package yaml
