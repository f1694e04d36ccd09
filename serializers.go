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
	"maps"
	"reflect"
	"slices"
)

type matchEntry struct {
	iface reflect.Type
	match func(reflect.Type) bool
	s     Serializer
}

// Serializers is an immutable collection mapping Go types to serializers.
// A collection built from [Serializers.Child] falls back to its parent when
// none of its own registrations match.
//
// Lookup order within one collection:
//  1. a registration for exactly the requested type;
//  2. the most specific interface the type implements (an interface that
//     itself implements another one wins; ties go to the earliest registration);
//  3. predicate registrations in registration order.
//
// Lookups are not cached.
type Serializers struct {
	parent *Serializers
	exact  map[reflect.Type]Serializer
	ifaces []matchEntry
	preds  []matchEntry
}

// SerializersBuilder accumulates registrations for a new [Serializers].
type SerializersBuilder struct {
	parent *Serializers
	exact  map[reflect.Type]Serializer
	ifaces []matchEntry
	preds  []matchEntry
}

// NewSerializersBuilder starts an empty root collection.
func NewSerializersBuilder() *SerializersBuilder {
	return &SerializersBuilder{exact: make(map[reflect.Type]Serializer)}
}

// Child starts a collection that falls back to s on lookup misses.
//
// Example:
//
//	serializers := confnode.DefaultSerializers().Child().
//	    Register(reflect.TypeFor[Vec3](), vecSerializer).
//	    Build()
func (s *Serializers) Child() *SerializersBuilder {
	b := NewSerializersBuilder()
	b.parent = s
	return b
}

// Register adds a serializer for typ. When typ is an interface type the
// serializer also serves every type implementing it (directly or through a
// pointer receiver). Registering the same concrete type twice replaces the
// earlier serializer.
func (b *SerializersBuilder) Register(typ reflect.Type, s Serializer) *SerializersBuilder {
	if typ == nil || s == nil {
		return b
	}
	if typ.Kind() == reflect.Interface && typ.NumMethod() > 0 {
		b.ifaces = append(b.ifaces, matchEntry{iface: typ, s: s})
		return b
	}
	b.exact[typ] = s
	return b
}

// RegisterFunc adds a serializer for every type accepted by match.
func (b *SerializersBuilder) RegisterFunc(match func(reflect.Type) bool, s Serializer) *SerializersBuilder {
	if match == nil || s == nil {
		return b
	}
	b.preds = append(b.preds, matchEntry{match: match, s: s})
	return b
}

// RegisterAll copies the registrations of other (but not of its parents).
func (b *SerializersBuilder) RegisterAll(other *Serializers) *SerializersBuilder {
	if other == nil {
		return b
	}
	maps.Copy(b.exact, other.exact)
	b.ifaces = append(b.ifaces, other.ifaces...)
	b.preds = append(b.preds, other.preds...)
	return b
}

// Build returns the immutable collection.
func (b *SerializersBuilder) Build() *Serializers {
	return &Serializers{
		parent: b.parent,
		exact:  maps.Clone(b.exact),
		ifaces: slices.Clone(b.ifaces),
		preds:  slices.Clone(b.preds),
	}
}

// Register adds a serializer for T to b.
func Register[T any](b *SerializersBuilder, s Serializer) *SerializersBuilder {
	return b.Register(reflect.TypeFor[T](), s)
}

// Get returns the serializer for typ, or nil if none matches.
func (s *Serializers) Get(typ reflect.Type) Serializer {
	for cur := s; cur != nil; cur = cur.parent {
		if found := cur.own(typ); found != nil {
			return found
		}
	}
	return nil
}

// Has reports whether a serializer is available for typ.
func (s *Serializers) Has(typ reflect.Type) bool {
	return s.Get(typ) != nil
}

// Parent returns the collection consulted on misses, or nil.
func (s *Serializers) Parent() *Serializers {
	return s.parent
}

func (s *Serializers) own(typ reflect.Type) Serializer {
	if found, ok := s.exact[typ]; ok {
		return found
	}

	var best *matchEntry
	for i := range s.ifaces {
		e := &s.ifaces[i]
		if !implements(typ, e.iface) {
			continue
		}
		if best == nil || (e.iface != best.iface && e.iface.Implements(best.iface)) {
			best = e
		}
	}
	if best != nil {
		return best.s
	}

	for _, e := range s.preds {
		if e.match(typ) {
			return e.s
		}
	}
	return nil
}

// implements reports whether typ, or a pointer to it, implements iface.
func implements(typ, iface reflect.Type) bool {
	if typ.Implements(iface) {
		return true
	}
	return typ.Kind() != reflect.Pointer && typ.Kind() != reflect.Interface &&
		reflect.PointerTo(typ).Implements(iface)
}
