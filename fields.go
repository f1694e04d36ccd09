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
	"fmt"
	"reflect"
	"slices"
	"strings"

	"rivaas.dev/confnode/constraint"
)

// FieldData describes one struct field bound to a child node.
type FieldData struct {
	Name        string       // node key
	GoName      string       // Go field name
	Index       []int        // index path, through embedded structs
	Type        reflect.Type // declared field type
	Comment     string       // comment written on save
	Default     string       // raw default value
	HasDefault  bool
	Constraints []constraint.Constraint
}

// collectFields walks typ breadth-first through embedded structs. When two
// fields share a node key the shallower one wins; at equal depth only a
// single explicitly named field wins, otherwise the key is dropped.
func (f *MapperFactory) collectFields(typ reflect.Type) ([]FieldData, error) {
	type queued struct {
		typ         reflect.Type
		parentIndex []int
	}
	type candidate struct {
		explicit bool
		field    FieldData
		sf       reflect.StructField
	}

	queue := []queued{{typ: typ}}
	candidates := map[string][]candidate{}
	var order []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.typ.NumField() {
			sf := item.typ.Field(idx)
			if !sf.IsExported() && !sf.Anonymous {
				continue
			}

			name, explicit := f.nameOf(sf)
			if name == "" {
				continue
			}

			parent := item.parentIndex
			index := append(parent[:len(parent):len(parent)], sf.Index...)

			if sf.Anonymous && !explicit {
				et := sf.Type
				if et.Kind() == reflect.Pointer {
					et = et.Elem()
				}
				if et.Kind() == reflect.Struct {
					queue = append(queue, queued{typ: et, parentIndex: index})
				}
				continue
			}
			if !sf.IsExported() {
				continue
			}

			if len(candidates[name]) == 0 {
				order = append(order, name)
			}
			candidates[name] = append(candidates[name], candidate{
				explicit: explicit,
				sf:       sf,
				field: FieldData{
					Name:   name,
					GoName: sf.Name,
					Index:  index,
					Type:   sf.Type,
				},
			})
		}
	}

	fields := make([]FieldData, 0, len(order))
	for _, name := range order {
		cands := candidates[name]

		depth := len(cands[0].field.Index)
		visible := slices.DeleteFunc(slices.Clone(cands), func(c candidate) bool {
			return len(c.field.Index) != depth
		})
		if len(visible) > 1 {
			visible = slices.DeleteFunc(visible, func(c candidate) bool { return !c.explicit })
		}
		if len(visible) != 1 {
			f.logger.Debug("ambiguous setting dropped", "type", typ.String(), "name", name)
			continue
		}

		c := visible[0]
		fd := c.field
		fd.Comment = c.sf.Tag.Get(TagComment)
		fd.Default, fd.HasDefault = c.sf.Tag.Lookup(TagDefault)

		cs, err := f.constraints.For(constraint.Data{
			Field: fd.GoName,
			Type:  fd.Type,
			Tag:   c.sf.Tag,
		})
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", typ, fd.GoName, err)
		}
		fd.Constraints = cs
		fields = append(fields, fd)
	}
	return fields, nil
}

// nameOf returns the node key of a field and whether it was set explicitly.
// An empty name means the field is skipped.
func (f *MapperFactory) nameOf(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get(f.tagKey)
	if tag == "-" {
		return "", true
	}
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if tag != "" {
		return tag, true
	}
	return f.naming.CoerceName(sf.Name), false
}
