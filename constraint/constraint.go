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

package constraint

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Violation codes.
const (
	CodeRequired = "required"
	CodePattern  = "pattern"
	CodeValidate = "validate"
)

// Violation is returned by constraints that reject a value.
type Violation struct {
	Code    string // Constraint code (e.g., "required", "pattern")
	Message string // Human readable message
	Value   any    // Rejected value, nil when absent
}

// Error implements error.
func (v *Violation) Error() string {
	return v.Message
}

// Constraint checks a deserialized field value. The value is nil when the
// field's node was absent.
type Constraint interface {
	Validate(value any) error
}

// Func adapts a function to a [Constraint].
type Func func(value any) error

// Validate implements [Constraint].
func (f Func) Validate(value any) error {
	return f(value)
}

// Data describes the field a constraint is built for.
type Data struct {
	Field string            // Go field name
	Type  reflect.Type      // declared field type
	Tag   reflect.StructTag // full struct tag
	Value string            // value of the tag the factory is registered under
}

// Factory builds a constraint for one field.
type Factory interface {
	Make(d Data) (Constraint, error)
}

// FactoryFunc adapts a function to a [Factory].
type FactoryFunc func(d Data) (Constraint, error)

// Make implements [Factory].
func (f FactoryFunc) Make(d Data) (Constraint, error) {
	return f(d)
}

type entry struct {
	tag     string
	factory Factory
}

// Registry maps struct tag names to constraint factories. Factories run in
// registration order. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds factory to tag. Registering a tag again replaces its
// factory in place.
func (r *Registry) Register(tag string, factory Factory) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.IndexFunc(r.entries, func(e entry) bool { return e.tag == tag }); i >= 0 {
		r.entries[i].factory = factory
		return r
	}
	r.entries = append(r.entries, entry{tag: tag, factory: factory})
	return r
}

// Tags returns the registered tag names in evaluation order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.tag
	}
	return out
}

// For returns the constraints declared by the tags of d.
//
// Errors:
//   - Returns error if a factory rejects its tag value
func (r *Registry) For(d Data) ([]Constraint, error) {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	r.mu.RUnlock()

	var out []Constraint
	for _, e := range entries {
		value, ok := d.Tag.Lookup(e.tag)
		if !ok {
			continue
		}
		d.Value = value
		c, err := e.factory.Make(d)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", e.tag, err)
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// Default returns a new registry with the built-in constraints:
// "required", "matches" and "validate".
func Default() *Registry {
	return NewRegistry().
		Register("required", Required()).
		Register("matches", Pattern()).
		Register("validate", Validate())
}
