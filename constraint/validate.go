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
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var tagValidator = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Validate builds constraints for `validate:"..."` tags evaluated with
// go-playground/validator, e.g. `validate:"min=1,max=65535"`. Absent values
// are skipped; use the "required" tag to demand presence.
func Validate() Factory {
	return FactoryFunc(func(d Data) (Constraint, error) {
		if d.Value == "" || d.Value == "-" {
			return nil, nil
		}
		tag := d.Value
		return Func(func(value any) error {
			if value == nil {
				return nil
			}
			err := tagValidator().Var(value, tag)
			if err == nil {
				return nil
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return &Violation{Code: CodeValidate, Message: err.Error(), Value: value}
			}
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, tagMessage(e))
			}
			return &Violation{Code: CodeValidate, Message: strings.Join(msgs, "; "), Value: value}
		}), nil
	})
}

func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	default:
		return fmt.Sprintf("failed validation (%s)", e.Tag())
	}
}
