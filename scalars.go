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
	"encoding"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

var (
	anyType      = reflect.TypeFor[any]()
	bytesType    = reflect.TypeFor[[]byte]()
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

// DefaultSerializers returns the shared root collection covering booleans,
// numbers, strings, []byte, time.Duration, time.Time, url.URL, uuid.UUID,
// *regexp.Regexp, encoding.TextUnmarshaler implementors, [Unmarshaler]
// implementors, any, slices, arrays, maps, pointers and structs (through
// the default object mapper).
func DefaultSerializers() *Serializers {
	return defaultSerializers()
}

var defaultSerializers = sync.OnceValue(func() *Serializers {
	return NewSerializersBuilder().
		Register(anyType, anySerializer{}).
		Register(bytesType, bytesSerializer{}).
		Register(durationType, durationSerializer{}).
		Register(timeType, timeSerializer{}).
		Register(reflect.TypeFor[url.URL](), urlSerializer{}).
		Register(reflect.TypeFor[uuid.UUID](), uuidSerializer{}).
		Register(reflect.TypeFor[*regexp.Regexp](), regexpSerializer{}).
		Register(reflect.TypeFor[Unmarshaler](), unmarshalerSerializer{}).
		Register(reflect.TypeFor[encoding.TextUnmarshaler](), textSerializer{}).
		RegisterFunc(kindIs(reflect.Bool), boolSerializer{}).
		RegisterFunc(kindIs(reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64), intSerializer{}).
		RegisterFunc(kindIs(reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr), uintSerializer{}).
		RegisterFunc(kindIs(reflect.Float32, reflect.Float64), floatSerializer{}).
		RegisterFunc(kindIs(reflect.String), stringSerializer{}).
		RegisterFunc(kindIs(reflect.Slice, reflect.Array), listSerializer{}).
		RegisterFunc(kindIs(reflect.Map), mapSerializer{}).
		RegisterFunc(kindIs(reflect.Pointer), pointerSerializer{}).
		RegisterFunc(kindIs(reflect.Struct), DefaultMapperFactory().Serializer()).
		Build()
})

func kindIs(kinds ...reflect.Kind) func(reflect.Type) bool {
	return func(t reflect.Type) bool {
		return slices.Contains(kinds, t.Kind())
	}
}

// scalar returns the raw value of a scalar node, failing for lists and maps.
func scalar(typ reflect.Type, node *Node) (any, error) {
	if node.Kind() != KindScalar {
		return nil, fmt.Errorf("%w: expected a scalar for %s, got %s", ErrTypeMismatch, typ, node.Kind())
	}
	return node.Raw(), nil
}

// storeScalar writes v into node as-is when the format accepts its type and
// as a string otherwise.
func storeScalar(node *Node, v any) {
	if node.Options().AcceptsType(reflect.TypeOf(v)) {
		node.SetRaw(v)
		return
	}
	node.SetRaw(cast.ToString(v))
}

// convert turns v into typ, covering named types with the same underlying kind.
func convert(typ reflect.Type, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Type() == typ {
		return v, nil
	}
	if !rv.Type().ConvertibleTo(typ) {
		return nil, mismatch(typ, v)
	}
	return rv.Convert(typ).Interface(), nil
}

type anySerializer struct{}

func (anySerializer) Deserialize(_ reflect.Type, node *Node) (any, error) {
	return node.Raw(), nil
}

func (anySerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	if isNil(value) {
		node.SetRaw(nil)
		return nil
	}
	vt := reflect.TypeOf(value)
	if s := node.Options().Serializers().Get(vt); s != nil {
		if _, self := s.(anySerializer); !self {
			return s.Serialize(vt, value, node)
		}
	}
	node.SetRaw(value)
	return nil
}

type boolSerializer struct{}

func (boolSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return convert(typ, b)
}

func (boolSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	storeScalar(node, reflect.ValueOf(value).Bool())
	return nil
}

type intSerializer struct{}

func (intSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	if err := checkIntegral(typ, raw, -0x1p63, 0x1p63); err != nil {
		return nil, err
	}
	if u, ok := unsigned(raw); ok && u > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, u, typ)
	}
	i, err := cast.ToInt64E(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	out := reflect.New(typ).Elem()
	if out.OverflowInt(i) {
		return nil, fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, i, typ)
	}
	out.SetInt(i)
	return out.Interface(), nil
}

func (intSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Int {
		storeScalar(node, int(rv.Int()))
		return nil
	}
	storeScalar(node, rv.Int())
	return nil
}

type uintSerializer struct{}

func (uintSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	if err := checkIntegral(typ, raw, 0, 0x1p64); err != nil {
		return nil, err
	}
	u, err := cast.ToUint64E(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	out := reflect.New(typ).Elem()
	if out.OverflowUint(u) {
		return nil, fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, u, typ)
	}
	out.SetUint(u)
	return out.Interface(), nil
}

func (uintSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	storeScalar(node, reflect.ValueOf(value).Uint())
	return nil
}

// checkIntegral rejects float values that are fractional or fall outside
// [lo, hi). Values of other types pass through.
func checkIntegral(typ reflect.Type, raw any, lo, hi float64) error {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return nil
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, f)
	}
	if f < lo || f >= hi {
		return fmt.Errorf("%w: %v overflows %s", ErrTypeMismatch, f, typ)
	}
	return nil
}

func unsigned(raw any) (uint64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	}
	return 0, false
}

type floatSerializer struct{}

func (floatSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	out := reflect.New(typ).Elem()
	if out.OverflowFloat(f) {
		return nil, fmt.Errorf("%w: %v overflows %s", ErrTypeMismatch, f, typ)
	}
	out.SetFloat(f)
	return out.Interface(), nil
}

func (floatSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	storeScalar(node, reflect.ValueOf(value).Float())
	return nil
}

type stringSerializer struct{}

func (stringSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return convert(typ, s)
}

func (stringSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	node.SetRaw(reflect.ValueOf(value).String())
	return nil
}

type bytesSerializer struct{}

func (bytesSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case []byte:
		return slices.Clone(v), nil
	case string:
		return []byte(v), nil
	}
	return nil, mismatch(typ, raw)
}

func (bytesSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	b := value.([]byte)
	if node.Options().AcceptsType(bytesType) {
		node.SetRaw(b)
		return nil
	}
	node.SetRaw(string(b))
	return nil
}

type durationSerializer struct{}

func (durationSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	d, err := cast.ToDurationE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return d, nil
}

func (durationSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	node.SetRaw(value.(time.Duration).String())
	return nil
}

type timeSerializer struct{}

func (timeSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	t, err := cast.ToTimeE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return t, nil
}

func (timeSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	t := value.(time.Time)
	if node.Options().AcceptsType(timeType) {
		node.SetRaw(t)
		return nil
	}
	node.SetRaw(t.Format(time.RFC3339Nano))
	return nil
}

type urlSerializer struct{}

func (urlSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(cast.ToString(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return *u, nil
}

func (urlSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	u := value.(url.URL)
	node.SetRaw(u.String())
	return nil
}

type uuidSerializer struct{}

func (uuidSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(cast.ToString(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return id, nil
}

func (uuidSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	node.SetRaw(value.(uuid.UUID).String())
	return nil
}

type regexpSerializer struct{}

func (regexpSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(cast.ToString(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return re, nil
}

func (regexpSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	node.SetRaw(value.(*regexp.Regexp).String())
	return nil
}

// textSerializer serves types implementing encoding.TextUnmarshaler, writing
// them back through encoding.TextMarshaler when available.
type textSerializer struct{}

func (textSerializer) Deserialize(typ reflect.Type, node *Node) (any, error) {
	raw, err := scalar(typ, node)
	if err != nil {
		return nil, err
	}
	ptr, elem := newTarget(typ)
	u := ptr.Interface().(encoding.TextUnmarshaler)
	if err := u.UnmarshalText([]byte(cast.ToString(raw))); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}
	return elem(), nil
}

func (textSerializer) Serialize(_ reflect.Type, value any, node *Node) error {
	if m, ok := value.(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil {
			return err
		}
		node.SetRaw(string(text))
		return nil
	}
	node.SetRaw(fmt.Sprint(value))
	return nil
}
