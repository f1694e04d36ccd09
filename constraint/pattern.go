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
	"regexp"

	"github.com/spf13/cast"
)

// PatternMessage is the default template for pattern violations.
// {0} is the rejected value and {1} the pattern.
const PatternMessage = `Value "{0}" does not match pattern "{1}"`

// TagPatternMessage holds the message (or bundle key) of a "matches" constraint.
const TagPatternMessage = "matches-message"

// Pattern builds constraints for `matches:"regexp"` tags. The whole string
// form of the value must match. The message comes from the
// "matches-message" tag, or [PatternMessage].
func Pattern() Factory {
	return patternFactory(nil)
}

// LocalizedPattern is like [Pattern] but "matches-message" names a key in
// bundle. Keys missing from the bundle are used as the template.
func LocalizedPattern(bundle *Bundle) Factory {
	if bundle == nil {
		bundle = DefaultBundle()
	}
	return patternFactory(bundle)
}

func patternFactory(bundle *Bundle) Factory {
	return FactoryFunc(func(d Data) (Constraint, error) {
		if d.Value == "" {
			return nil, errors.New("pattern cannot be empty")
		}
		re, err := regexp.Compile("^(?:" + d.Value + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		message := PatternMessage
		if m, ok := d.Tag.Lookup(TagPatternMessage); ok && m != "" {
			message = m
		}
		b := bundle
		if b == nil {
			b = DefaultBundle()
		}
		if err := b.Check(message); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", TagPatternMessage, err)
		}
		pattern := d.Value

		return Func(func(value any) error {
			if value == nil {
				return nil
			}
			s, err := cast.ToStringE(value)
			if err != nil {
				return &Violation{Code: CodePattern, Message: fmt.Sprintf("cannot match %T against a pattern", value), Value: value}
			}
			if re.MatchString(s) {
				return nil
			}
			return &Violation{Code: CodePattern, Message: b.Format(message, s, pattern), Value: value}
		}), nil
	})
}
