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

package bridge

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"golang.org/x/exp/constraints"
)

// Codec encodes values of type A into any [Ops] representation and decodes
// them back.
type Codec[A any] interface {
	Encode(ops Ops, value A) (any, error)
	Decode(ops Ops, input any) (A, error)
}

type funcCodec[A any] struct {
	encode func(ops Ops, value A) (any, error)
	decode func(ops Ops, input any) (A, error)
}

func (c funcCodec[A]) Encode(ops Ops, value A) (any, error) { return c.encode(ops, value) }
func (c funcCodec[A]) Decode(ops Ops, input any) (A, error) { return c.decode(ops, input) }

// Of builds a codec from an encode and a decode function.
func Of[A any](encode func(ops Ops, value A) (any, error), decode func(ops Ops, input any) (A, error)) Codec[A] {
	return funcCodec[A]{encode: encode, decode: decode}
}

// Primitive codecs.
var (
	Bool Codec[bool] = Of(
		func(ops Ops, b bool) (any, error) { return ops.CreateBool(b), nil },
		func(ops Ops, in any) (bool, error) { return ops.Bool(in) },
	)
	String Codec[string] = Of(
		func(ops Ops, s string) (any, error) { return ops.CreateString(s), nil },
		func(ops Ops, in any) (string, error) { return ops.String(in) },
	)
	Int       = Number[int]()
	Int64     = Number[int64]()
	Float64   = Number[float64]()
	IntStream = ListOf(Int)
)

// Number returns the codec of a numeric type. Integer types reject
// fractional and out-of-range input.
func Number[T constraints.Integer | constraints.Float]() Codec[T] {
	return Of(
		func(ops Ops, v T) (any, error) { return ops.CreateNumber(v), nil },
		func(ops Ops, in any) (T, error) {
			n, err := ops.Number(in)
			if err != nil {
				return 0, err
			}
			return number[T](n)
		},
	)
}

func number[T constraints.Integer | constraints.Float](n any) (T, error) {
	var zero T
	out := reflect.ValueOf(&zero).Elem()
	rv := reflect.ValueOf(n)
	if out.CanFloat() {
		f, err := cast.ToFloat64E(n)
		if err != nil {
			return zero, err
		}
		if out.OverflowFloat(f) {
			return zero, fmt.Errorf("%v overflows %T", f, zero)
		}
		out.SetFloat(f)
		return zero, nil
	}

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return zero, fmt.Errorf("%v is not an integer", n)
		}
		if out.CanInt() {
			if f < -0x1p63 || f >= 0x1p63 || out.OverflowInt(int64(f)) {
				return zero, fmt.Errorf("%v overflows %T", n, zero)
			}
			out.SetInt(int64(f))
			return zero, nil
		}
		if f < 0 || f >= 0x1p64 || out.OverflowUint(uint64(f)) {
			return zero, fmt.Errorf("%v overflows %T", n, zero)
		}
		out.SetUint(uint64(f))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if out.CanInt() {
			if out.OverflowInt(i) {
				return zero, fmt.Errorf("%d overflows %T", i, zero)
			}
			out.SetInt(i)
			return zero, nil
		}
		if i < 0 || out.OverflowUint(uint64(i)) {
			return zero, fmt.Errorf("%d overflows %T", i, zero)
		}
		out.SetUint(uint64(i))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if out.CanInt() {
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return zero, fmt.Errorf("%d overflows %T", u, zero)
			}
			out.SetInt(int64(u))
			return zero, nil
		}
		if out.OverflowUint(u) {
			return zero, fmt.Errorf("%d overflows %T", u, zero)
		}
		out.SetUint(u)
	default:
		return zero, fmt.Errorf("not a number: %T", n)
	}
	return zero, nil
}

// ListOf returns the codec of a slice whose elements use elem.
func ListOf[A any](elem Codec[A]) Codec[[]A] {
	return Of(
		func(ops Ops, values []A) (any, error) {
			items := make([]any, len(values))
			for i, v := range values {
				item, err := elem.Encode(ops, v)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", i, err)
				}
				items[i] = item
			}
			return ops.CreateList(items), nil
		},
		func(ops Ops, in any) ([]A, error) {
			items, err := ops.List(in)
			if err != nil {
				return nil, err
			}
			out := make([]A, len(items))
			for i, item := range items {
				if out[i], err = elem.Decode(ops, item); err != nil {
					return nil, fmt.Errorf("[%d]: %w", i, err)
				}
			}
			return out, nil
		},
	)
}

// Xmap derives a codec for B from a codec for A and a pair of total conversions.
func Xmap[A, B any](c Codec[A], to func(A) B, from func(B) A) Codec[B] {
	return Of(
		func(ops Ops, v B) (any, error) { return c.Encode(ops, from(v)) },
		func(ops Ops, in any) (B, error) {
			a, err := c.Decode(ops, in)
			if err != nil {
				var zero B
				return zero, err
			}
			return to(a), nil
		},
	)
}

// FlatXmap is like [Xmap] for conversions that can fail.
func FlatXmap[A, B any](c Codec[A], to func(A) (B, error), from func(B) (A, error)) Codec[B] {
	return Of(
		func(ops Ops, v B) (any, error) {
			a, err := from(v)
			if err != nil {
				return nil, err
			}
			return c.Encode(ops, a)
		},
		func(ops Ops, in any) (B, error) {
			a, err := c.Decode(ops, in)
			if err != nil {
				var zero B
				return zero, err
			}
			return to(a)
		},
	)
}

// Field is one named entry of a [Record].
type Field[S any] struct {
	name     string
	optional bool
	encode   func(ops Ops, s S) (any, error)
	decode   func(ops Ops, in any, s *S) error
	fill     func(s *S)
}

// FieldOf declares a required record field read with get and written with set.
func FieldOf[S, F any](name string, c Codec[F], get func(S) F, set func(*S, F)) Field[S] {
	return Field[S]{
		name:   name,
		encode: func(ops Ops, s S) (any, error) { return c.Encode(ops, get(s)) },
		decode: func(ops Ops, in any, s *S) error {
			v, err := c.Decode(ops, in)
			if err != nil {
				return err
			}
			set(s, v)
			return nil
		},
	}
}

// OptionalFieldOf declares a record field that takes def when absent.
func OptionalFieldOf[S, F any](name string, c Codec[F], def F, get func(S) F, set func(*S, F)) Field[S] {
	f := FieldOf(name, c, get, set)
	f.optional = true
	f.fill = func(s *S) { set(s, def) }
	return f
}

// Record returns the codec of a value encoded as a map with one entry per field.
func Record[S any](fields ...Field[S]) Codec[S] {
	return Of(
		func(ops Ops, s S) (any, error) {
			keys := make([]string, len(fields))
			values := make([]any, len(fields))
			for i, f := range fields {
				v, err := f.encode(ops, s)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", f.name, err)
				}
				keys[i], values[i] = f.name, v
			}
			return ops.CreateMap(keys, values), nil
		},
		func(ops Ops, in any) (S, error) {
			var s S
			keys, values, err := ops.Map(in)
			if err != nil {
				return s, err
			}
			byName := make(map[string]any, len(keys))
			for i, k := range keys {
				byName[k] = values[i]
			}
			for _, f := range fields {
				v, ok := byName[f.name]
				if !ok || ops.Kind(v) == KindNull {
					if !f.optional {
						return s, fmt.Errorf("missing field %q", f.name)
					}
					f.fill(&s)
					continue
				}
				if err := f.decode(ops, v, &s); err != nil {
					return s, fmt.Errorf("%s: %w", f.name, err)
				}
			}
			return s, nil
		},
	)
}

// StructTag is the struct tag read by [Struct].
const StructTag = "config"

// Struct returns a codec for struct type V built on go-viper/mapstructure.
// Fields are named by their "config" tag; input is weakly typed, so strings
// convert to durations, times, URLs and comma-separated slices.
func Struct[V any]() Codec[V] {
	return Of(
		func(ops Ops, v V) (any, error) {
			var m map[string]any
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				TagName: StructTag,
				Squash:  true,
				Result:  &m,
			})
			if err != nil {
				return nil, err
			}
			if err := dec.Decode(v); err != nil {
				return nil, err
			}
			return Convert(JSON, ops, m)
		},
		func(ops Ops, in any) (V, error) {
			var v V
			plain, err := Convert(ops, JSON, in)
			if err != nil {
				return v, err
			}
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				TagName:          StructTag,
				Squash:           true,
				WeaklyTypedInput: true,
				DecodeHook: mapstructure.ComposeDecodeHookFunc(
					mapstructure.StringToTimeDurationHookFunc(),
					mapstructure.StringToSliceHookFunc(","),
					mapstructure.StringToTimeHookFunc(time.RFC3339),
					mapstructure.StringToURLHookFunc(),
				),
				Result: &v,
			})
			if err != nil {
				return v, err
			}
			if err := dec.Decode(plain); err != nil {
				return v, err
			}
			return v, nil
		},
	)
}
