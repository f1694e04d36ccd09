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

	"github.com/spf13/cast"
)

// RequiredMessage is reported for absent required fields.
const RequiredMessage = "A value is required for this field"

// Required rejects absent values. The tag value may be empty or a boolean;
// `required:"false"` disables the check.
func Required() Factory {
	return FactoryFunc(func(d Data) (Constraint, error) {
		on := true
		if d.Value != "" {
			b, err := cast.ToBoolE(d.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q: %w", d.Value, err)
			}
			on = b
		}
		if !on {
			return nil, nil
		}
		return Func(func(value any) error {
			if value == nil {
				return &Violation{Code: CodeRequired, Message: RequiredMessage}
			}
			return nil
		}), nil
	})
}
