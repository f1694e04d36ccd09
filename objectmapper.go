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
	"slices"

	"rivaas.dev/confnode/constraint"
)

// Mapper binds one struct type to map nodes. It is built once per type by a
// [MapperFactory] and is safe for concurrent use.
type Mapper struct {
	typ    reflect.Type
	fields []FieldData
}

func (f *MapperFactory) build(typ reflect.Type) (*Mapper, error) {
	fields, err := f.collectFields(typ)
	if err != nil {
		return nil, err
	}
	return &Mapper{typ: typ, fields: fields}, nil
}

// Type returns the struct type handled by the mapper.
func (m *Mapper) Type() reflect.Type {
	return m.typ
}

// Fields returns the bound fields in declaration order.
func (m *Mapper) Fields() []FieldData {
	return slices.Clone(m.fields)
}

// Load builds a new struct value from node.
func (m *Mapper) Load(node *Node) (any, error) {
	out := reflect.New(m.typ).Elem()
	if err := m.load(node, out); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// LoadInto populates the struct pointed to by target from node. Fields whose
// node is absent keep their current value. On failure target is unchanged.
func (m *Mapper) LoadInto(node *Node, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != m.typ {
		return NewPathError(node, m.typ, "deserialize", fmt.Errorf("%w: target must be a non-nil *%s, got %T", ErrTypeMismatch, m.typ, target))
	}
	work := reflect.New(m.typ).Elem()
	work.Set(rv.Elem())
	detachEmbedded(work)
	if err := m.load(node, work); err != nil {
		return err
	}
	rv.Elem().Set(work)
	return nil
}

type assignment struct {
	field *FieldData
	value reflect.Value
}

// load deserializes every field before assigning any of them, so that a
// failure leaves dst untouched.
func (m *Mapper) load(node *Node, dst reflect.Value) error {
	if !node.IsNull() && !node.IsMap() {
		return NewPathError(node, m.typ, "deserialize", fmt.Errorf("%w: expected a map, got %s", ErrTypeMismatch, node.Kind()))
	}
	opts := node.Options()

	assignments := make([]assignment, 0, len(m.fields))
	var absent []*FieldData

	for i := range m.fields {
		f := &m.fields[i]
		child := node.Node(f.Name)

		var value any
		present := false
		switch {
		case !child.IsNull():
			v, err := child.Get(f.Type)
			if err != nil {
				return err
			}
			value, present = v, v != nil
		case f.HasDefault:
			v, err := defaultValue(child, f)
			if err != nil {
				return NewPathError(child, f.Type, "default", err)
			}
			value, present = v, true
			absent = append(absent, f)
		case opts.ImplicitInitialization():
			if v, err := child.Get(f.Type); err == nil && v != nil {
				value, present = v, true
			}
			absent = append(absent, f)
		default:
			absent = append(absent, f)
		}

		var checked any
		if present {
			checked = value
		}
		for _, c := range f.Constraints {
			if err := c.Validate(checked); err != nil {
				return NewPathError(child, f.Type, "validate", constraintError(err))
			}
		}

		if present {
			rv, err := assignable(f.Type, value)
			if err != nil {
				return NewPathError(child, f.Type, "deserialize", err)
			}
			assignments = append(assignments, assignment{field: f, value: rv})
		}
	}

	for _, a := range assignments {
		fv, err := fieldForWrite(dst, a.field.Index)
		if err != nil {
			return NewPathError(node.Node(a.field.Name), a.field.Type, "deserialize", err)
		}
		fv.Set(a.value)
	}

	if v, ok := dst.Addr().Interface().(Validator); ok {
		if err := v.Validate(); err != nil {
			return NewPathError(node, m.typ, "validate", err)
		}
	}

	if opts.CopyDefaults() {
		for _, f := range absent {
			fv, ok := fieldForRead(dst, f.Index)
			if !ok || isNil(fv.Interface()) {
				continue
			}
			if err := node.Node(f.Name).Set(f.Type, fv.Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes the fields of value (a struct or pointer to struct) into node.
// Nil pointers, maps and slices remove the corresponding child.
func (m *Mapper) Save(value any, node *Node) error {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			node.SetRaw(nil)
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Type() != m.typ {
		return NewPathError(node, m.typ, "serialize", mismatch(m.typ, value))
	}
	if !node.IsMap() {
		node.SetRaw(map[string]any{})
	}

	for i := range m.fields {
		f := &m.fields[i]
		child := node.Node(f.Name)
		fv, ok := fieldForRead(rv, f.Index)
		if !ok || isNil(fv.Interface()) {
			child.SetRaw(nil)
			continue
		}
		if err := child.Set(f.Type, fv.Interface()); err != nil {
			return err
		}
		if f.Comment != "" && !child.Virtual() {
			child.SetCommentIfAbsent(f.Comment)
		}
	}
	return nil
}

// defaultValue converts the default tag of f through the field's serializer.
func defaultValue(child *Node, f *FieldData) (any, error) {
	tmp := Root(child.Options())
	tmp.SetRaw(f.Default)
	return tmp.Get(f.Type)
}

// constraintError maps constraint violations onto the package sentinels.
func constraintError(err error) error {
	var v *constraint.Violation
	if errors.As(err, &v) && v.Code == constraint.CodeRequired {
		return fmt.Errorf("%w: %w", ErrMissingValue, err)
	}
	return fmt.Errorf("%w: %w", ErrConstraint, err)
}

// detachEmbedded replaces every non-nil embedded struct pointer reachable
// from v with a pointer to a copy, so writes through v never reach the
// original value.
func detachEmbedded(v reflect.Value) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		fv := v.Field(i)
		switch {
		case fv.Kind() == reflect.Struct:
			detachEmbedded(fv)
		case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct && !fv.IsNil() && fv.CanSet():
			clone := reflect.New(fv.Type().Elem())
			clone.Elem().Set(fv.Elem())
			detachEmbedded(clone.Elem())
			fv.Set(clone)
		}
	}
}

// fieldForWrite returns the field at index, allocating nil embedded pointers.
func fieldForWrite(v reflect.Value, index []int) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("cannot allocate embedded %s", v.Type().Elem())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	if !v.CanSet() {
		return reflect.Value{}, fmt.Errorf("field is not settable")
	}
	return v, nil
}

// fieldForRead returns the field at index, or false when an embedded
// pointer on the way is nil.
func fieldForRead(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}
