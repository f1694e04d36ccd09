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
	"log/slog"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"

	"rivaas.dev/confnode/constraint"
)

// Struct tags read by the object mapper.
const (
	TagSetting = "setting" // node key; "-" skips the field
	TagComment = "comment" // comment written on save when the node has none
	TagDefault = "default" // value used when the node is absent
)

// Validator is implemented by structs that check themselves after every
// field has been loaded.
type Validator interface {
	Validate() error
}

// MapperOption configures a [MapperFactory].
type MapperOption func(f *MapperFactory) error

// MapperFactory builds and caches [Mapper] descriptors for struct types.
// It is safe for concurrent use.
type MapperFactory struct {
	naming      NamingScheme
	constraints *constraint.Registry
	tagKey      string
	logger      *slog.Logger

	// copy-on-write descriptor cache: lock-free reads, writers hold mu
	cache atomic.Pointer[map[reflect.Type]*Mapper]
	mu    sync.Mutex
}

// NewMapperFactory creates a factory with the provided options.
// By default fields are named with [LowerCaseDashed], read from the
// "setting" tag and checked with [constraint.Default].
func NewMapperFactory(opts ...MapperOption) (*MapperFactory, error) {
	f := &MapperFactory{
		naming:      LowerCaseDashed,
		constraints: constraint.Default(),
		tagKey:      TagSetting,
		logger:      slog.New(slog.DiscardHandler),
	}
	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(f); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}
	m := make(map[reflect.Type]*Mapper)
	f.cache.Store(&m)
	return f, nil
}

// MustNewMapperFactory is like [NewMapperFactory] but panics on error.
func MustNewMapperFactory(opts ...MapperOption) *MapperFactory {
	f, err := NewMapperFactory(opts...)
	if err != nil {
		panic(fmt.Sprintf("confnode: failed to create mapper factory: %v", err))
	}
	return f
}

// DefaultMapperFactory returns the factory used by [DefaultSerializers].
func DefaultMapperFactory() *MapperFactory {
	return defaultMapperFactory()
}

var defaultMapperFactory = sync.OnceValue(func() *MapperFactory {
	return MustNewMapperFactory()
})

// WithNamingScheme sets how Go field names become node keys.
func WithNamingScheme(scheme NamingScheme) MapperOption {
	return func(f *MapperFactory) error {
		if scheme == nil {
			return errors.New("naming scheme cannot be nil")
		}
		f.naming = scheme
		return nil
	}
}

// WithConstraints sets the registry used to derive field constraints from tags.
func WithConstraints(r *constraint.Registry) MapperOption {
	return func(f *MapperFactory) error {
		if r == nil {
			return errors.New("constraint registry cannot be nil")
		}
		f.constraints = r
		return nil
	}
}

// WithTagKey sets the struct tag that holds node keys (default "setting").
func WithTagKey(key string) MapperOption {
	return func(f *MapperFactory) error {
		if key == "" {
			return errors.New("tag key cannot be empty")
		}
		f.tagKey = key
		return nil
	}
}

// WithMapperLogger sets the logger reporting descriptor construction.
func WithMapperLogger(logger *slog.Logger) MapperOption {
	return func(f *MapperFactory) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		f.logger = logger
		return nil
	}
}

// Get returns the descriptor for the struct type typ (or a pointer to it),
// building it on first use.
//
// Errors:
//   - Returns error if typ is not a struct
//   - Returns error if a constraint tag cannot be parsed
func (f *MapperFactory) Get(typ reflect.Type) (*Mapper, error) {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: object mapping requires a struct, got %v", ErrTypeMismatch, typ)
	}

	if m, ok := (*f.cache.Load())[typ]; ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cur := f.cache.Load()
	if m, ok := (*cur)[typ]; ok {
		return m, nil
	}

	m, err := f.build(typ)
	if err != nil {
		return nil, err
	}

	next := make(map[reflect.Type]*Mapper, len(*cur)+1)
	maps.Copy(next, *cur)
	next[typ] = m
	f.cache.Store(&next)

	f.logger.Debug("object mapper built", "type", typ.String(), "fields", len(m.fields))
	return m, nil
}

// Serializer returns a [Serializer] mapping structs through this factory.
func (f *MapperFactory) Serializer() Serializer {
	return mapperSerializer{factory: f}
}

// Load builds a new T from node.
//
// Example:
//
//	cfg, err := confnode.Load[ServerConfig](root)
func Load[T any](node *Node) (T, error) {
	var out T
	m, err := DefaultMapperFactory().Get(reflect.TypeFor[T]())
	if err != nil {
		return out, err
	}
	if err := m.LoadInto(node, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Save writes value into node using the default mapper factory.
func Save(value any, node *Node) error {
	m, err := DefaultMapperFactory().Get(reflect.TypeOf(value))
	if err != nil {
		return err
	}
	return m.Save(value, node)
}

type mapperSerializer struct {
	factory *MapperFactory
}

func (s mapperSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	m, err := s.factory.Get(typ)
	if err != nil {
		return nil, err
	}
	return m.Load(node)
}

func (s mapperSerializer) Serialize(typ reflect.Type, value any, node *Node) error {
	m, err := s.factory.Get(typ)
	if err != nil {
		return err
	}
	return m.Save(value, node)
}

func (s mapperSerializer) EmptyValue(typ reflect.Type, opts *Options) any {
	m, err := s.factory.Get(typ)
	if err != nil {
		return nil
	}
	v, err := m.Load(Root(opts))
	if err != nil {
		return reflect.New(typ).Elem().Interface()
	}
	return v
}
