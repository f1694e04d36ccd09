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

package codec

import (
	"fmt"

	"github.com/spf13/cast"
)

// CastType names the Go type a [CasterCodec] converts raw text into.
type CastType string

// revive:disable:exported
const (
	CastTypeBool     CastType = "bool"
	CastTypeTime     CastType = "time"
	CastTypeDuration CastType = "duration"
	CastTypeFloat64  CastType = "float64"
	CastTypeFloat32  CastType = "float32"
	CastTypeInt64    CastType = "int64"
	CastTypeInt32    CastType = "int32"
	CastTypeInt      CastType = "int"
	CastTypeUint64   CastType = "uint64"
	CastTypeUint32   CastType = "uint32"
	CastTypeUint     CastType = "uint"
	CastTypeString   CastType = "string"
)

// revive:enable:exported

// casters maps each cast type to its spf13/cast conversion.
var casters = map[CastType]func(string) (any, error){
	CastTypeBool:     func(s string) (any, error) { return cast.ToBoolE(s) },
	CastTypeTime:     func(s string) (any, error) { return cast.ToTimeE(s) },
	CastTypeDuration: func(s string) (any, error) { return cast.ToDurationE(s) },
	CastTypeFloat64:  func(s string) (any, error) { return cast.ToFloat64E(s) },
	CastTypeFloat32:  func(s string) (any, error) { return cast.ToFloat32E(s) },
	CastTypeInt64:    func(s string) (any, error) { return cast.ToInt64E(s) },
	CastTypeInt32:    func(s string) (any, error) { return cast.ToInt32E(s) },
	CastTypeInt:      func(s string) (any, error) { return cast.ToIntE(s) },
	CastTypeUint64:   func(s string) (any, error) { return cast.ToUint64E(s) },
	CastTypeUint32:   func(s string) (any, error) { return cast.ToUint32E(s) },
	CastTypeUint:     func(s string) (any, error) { return cast.ToUintE(s) },
	CastTypeString:   func(s string) (any, error) { return s, nil },
}

// CasterType returns the registry name of the caster for t, e.g. "caster-int".
func CasterType(t CastType) Type {
	return Type("caster-" + string(t))
}

func init() {
	for t := range casters {
		RegisterDecoder(CasterType(t), NewCaster(t))
	}
}

// CasterCodec decodes raw text, such as a single Consul value or
// environment variable, into one typed scalar.
type CasterCodec struct {
	castType CastType
}

// NewCaster creates a caster converting into castType.
func NewCaster(castType CastType) *CasterCodec {
	return &CasterCodec{castType: castType}
}

// Decode converts data and stores the result in v, which must be a *any.
func (c *CasterCodec) Decode(data []byte, v any) error {
	out, ok := v.(*any)
	if !ok {
		return fmt.Errorf("caster: expected *any, got %T", v)
	}
	fn, ok := casters[c.castType]
	if !ok {
		return fmt.Errorf("caster: unsupported cast type %q", c.castType)
	}
	value, err := fn(string(data))
	if err != nil {
		return err
	}
	*out = value
	return nil
}
