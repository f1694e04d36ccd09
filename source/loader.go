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

	"rivaas.dev/confnode/loader"
)

// Loader exposes the node tree of a [loader.Loader] as a map, so that
// commented or styled documents can feed a merged configuration.
type Loader struct {
	loader *loader.Loader
}

// NewLoader creates a source reading through l.
func NewLoader(l *loader.Loader) *Loader {
	return &Loader{loader: l}
}

// Path returns the file path of the loader, or "" when it reads other input.
func (l *Loader) Path() string {
	return l.loader.Path()
}

// Load loads the tree and returns its raw value. A null root yields an
// empty map.
func (l *Loader) Load(ctx context.Context) (map[string]any, error) {
	root, err := l.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if root.IsNull() {
		return make(map[string]any), nil
	}
	config, ok := root.Raw().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s document root is %s, not a map", l.loader.Format().Name(), root.Kind())
	}
	return config, nil
}
