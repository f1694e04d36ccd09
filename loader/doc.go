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

// Package loader reads and writes configuration documents as node trees.
//
// A [Loader] pairs a [Format] with a source and a destination: a file path,
// in-memory content, a reader or a writer. Loading a missing file yields an
// empty root, so a first run can fill defaults and save them.
//
// The comment block at the top of a document, followed by a blank line, is
// the header. Depending on the [HeaderMode] it is kept in the node options
// and written back on save.
//
// Built-in formats:
//
//   - "json": key order kept, no comments
//   - "toml": headers kept, node comments dropped
//   - "msgpack" and "env_var": through the codec registry
//
// The YAML format lives in the loader/yaml package and registers itself on import.
//
//	l, err := loader.NewForPath("config.json")
//	root, err := l.Load(ctx)
//	root.Node("server", "port").SetRaw(8080)
//	err = l.Save(ctx, root)
package loader
