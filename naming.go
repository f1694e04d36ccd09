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
	"strings"
	"unicode"
)

// NamingScheme derives node keys from Go field names for fields without an
// explicit name in their tag.
type NamingScheme interface {
	CoerceName(fieldName string) string
}

// NamingFunc adapts a function to a [NamingScheme].
type NamingFunc func(fieldName string) string

// CoerceName implements [NamingScheme].
func (f NamingFunc) CoerceName(fieldName string) string {
	return f(fieldName)
}

// Built-in naming schemes.
var (
	// LowerCaseDashed turns "MaxIdleConns" into "max-idle-conns". It is the default.
	LowerCaseDashed NamingScheme = NamingFunc(func(name string) string {
		return strings.ToLower(strings.Join(splitWords(name), "-"))
	})
	// SnakeCase turns "MaxIdleConns" into "max_idle_conns".
	SnakeCase NamingScheme = NamingFunc(func(name string) string {
		return strings.ToLower(strings.Join(splitWords(name), "_"))
	})
	// CamelCase turns "MaxIdleConns" into "maxIdleConns".
	CamelCase NamingScheme = NamingFunc(func(name string) string {
		words := splitWords(name)
		for i, w := range words {
			if i == 0 {
				words[i] = strings.ToLower(w)
				continue
			}
			r := []rune(strings.ToLower(w))
			r[0] = unicode.ToUpper(r[0])
			words[i] = string(r)
		}
		return strings.Join(words, "")
	})
	// Passthrough keeps the Go field name.
	Passthrough NamingScheme = NamingFunc(func(name string) string { return name })
)

// splitWords splits a Go identifier at case changes, keeping acronyms
// together: "HTTPServerURL2" becomes ["HTTP", "Server", "URL2"].
func splitWords(name string) []string {
	runes := []rune(name)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsLower(prev) && unicode.IsUpper(cur) ||
			unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) ||
			cur == '_'
		if boundary {
			if w := strings.Trim(string(runes[start:i]), "_"); w != "" {
				words = append(words, w)
			}
			start = i
		}
	}
	if w := strings.Trim(string(runes[start:]), "_"); w != "" {
		words = append(words, w)
	}
	return words
}
