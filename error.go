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

package confnode

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors wrapped by [Error]. Use errors.Is to tell them apart.
var (
	// ErrMissingValue is reported when a required value is absent.
	ErrMissingValue = errors.New("missing value")
	// ErrNoSerializer is reported when no serializer is registered for a type.
	ErrNoSerializer = errors.New("no serializer registered")
	// ErrTypeMismatch is reported when a node cannot be converted to the requested type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrMalformed is reported when a document cannot be parsed.
	ErrMalformed = errors.New("malformed document")
	// ErrConstraint is reported when a constraint rejects a value.
	ErrConstraint = errors.New("constraint violated")
)

// Error is the single error kind returned by serialization operations.
// It carries the path of the node being processed, the Go type involved
// (when known), the operation that failed and the underlying error.
type Error struct {
	Path      Path         // Node path where the error occurred (may be empty)
	Type      reflect.Type // Target type of the operation (optional)
	Operation string       // Operation being performed (e.g., "deserialize", "serialize", "load")
	Err       error        // The underlying error
}

// Error returns a formatted error message with path and type context.
func (e *Error) Error() string {
	switch {
	case len(e.Path) > 0 && e.Type != nil:
		return fmt.Sprintf("confnode: %s of %s at %s: %v", e.Operation, e.Type, e.Path, e.Err)
	case len(e.Path) > 0:
		return fmt.Sprintf("confnode: %s at %s: %v", e.Operation, e.Path, e.Err)
	case e.Type != nil:
		return fmt.Sprintf("confnode: %s of %s: %v", e.Operation, e.Type, e.Err)
	}
	return fmt.Sprintf("confnode: %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is and errors.As
// to inspect the chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an [Error] without node context.
func NewError(operation string, err error) *Error {
	return &Error{
		Operation: operation,
		Err:       err,
	}
}

// NewPathError creates an [Error] bound to the path of node.
// If err already is an [Error] with a path, it is returned unchanged so the
// innermost (most precise) path wins.
func NewPathError(node *Node, typ reflect.Type, operation string, err error) error {
	var existing *Error
	if errors.As(err, &existing) && len(existing.Path) > 0 {
		return err
	}
	e := &Error{
		Type:      typ,
		Operation: operation,
		Err:       err,
	}
	if node != nil {
		e.Path = node.Path()
	}
	return e
}

// mismatch builds a type mismatch error for value v decoded as typ.
func mismatch(typ reflect.Type, v any) error {
	return fmt.Errorf("%w: cannot convert %T to %s", ErrTypeMismatch, v, typ)
}
