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
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
)

// Bundle is a catalogue of message templates for one locale. Templates use
// positional placeholders {0}, {1}, ... in any order; a placeholder may
// appear more than once. It is safe for concurrent use.
type Bundle struct {
	trans ut.Translator

	mu        sync.RWMutex
	templates map[string]template
}

// NewBundle creates a bundle for locale holding messages (key to template).
//
// Errors:
//   - Returns error if a template has unbalanced braces or a placeholder
//     that is not a non-negative index
func NewBundle(locale locales.Translator, messages map[string]string) (*Bundle, error) {
	if locale == nil {
		return nil, errors.New("locale cannot be nil")
	}
	trans, _ := ut.New(locale, locale).GetTranslator(locale.Locale())
	b := &Bundle{trans: trans, templates: make(map[string]template, len(messages))}

	var errs error
	for key, text := range messages {
		t, err := parseTemplate(text)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("message %q: %w", key, err))
			continue
		}
		b.templates[key] = t
	}
	if errs != nil {
		return nil, errs
	}
	return b, nil
}

// DefaultBundle returns the shared English bundle with no messages. Unknown
// keys are used as their own template.
func DefaultBundle() *Bundle {
	return defaultBundle()
}

var defaultBundle = sync.OnceValue(func() *Bundle {
	b, err := NewBundle(en.New(), nil)
	if err != nil {
		panic(fmt.Sprintf("constraint: failed to create default bundle: %v", err))
	}
	return b
})

// Locale returns the locale of the bundle.
func (b *Bundle) Locale() string {
	return b.trans.Locale()
}

// Translator returns the universal-translator of the bundle's locale.
func (b *Bundle) Translator() ut.Translator {
	return b.trans
}

// Check reports whether key resolves to a usable template: either a message
// of the bundle or, for unknown keys, the key itself.
func (b *Bundle) Check(key string) error {
	_, err := b.template(key)
	return err
}

// Format renders the template stored under key with args. A key with no
// template is used as the template itself; if that fails the key is
// returned verbatim. Placeholders without an argument render empty.
func (b *Bundle) Format(key string, args ...string) string {
	t, err := b.template(key)
	if err != nil {
		return key
	}
	return t.render(args)
}

func (b *Bundle) template(key string) (template, error) {
	b.mu.RLock()
	t, ok := b.templates[key]
	b.mu.RUnlock()
	if ok {
		return t, nil
	}
	t, err := parseTemplate(key)
	if err != nil {
		return template{}, err
	}
	b.mu.Lock()
	b.templates[key] = t
	b.mu.Unlock()
	return t, nil
}

// template is a parsed message: literal text around placeholder references.
// len(text) is always len(refs)+1.
type template struct {
	text []string
	refs []int
}

func parseTemplate(s string) (template, error) {
	var t template
	var lit strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return template{}, fmt.Errorf("unclosed placeholder in %q", s)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n < 0 {
				return template{}, fmt.Errorf("invalid placeholder %q in %q", s[i:i+end+1], s)
			}
			t.text = append(t.text, lit.String())
			t.refs = append(t.refs, n)
			lit.Reset()
			i += end
		case '}':
			return template{}, fmt.Errorf("unbalanced '}' in %q", s)
		default:
			lit.WriteByte(s[i])
		}
	}
	t.text = append(t.text, lit.String())
	return t, nil
}

func (t template) render(args []string) string {
	var out strings.Builder
	for i, ref := range t.refs {
		out.WriteString(t.text[i])
		if ref < len(args) {
			out.WriteString(args[ref])
		}
	}
	out.WriteString(t.text[len(t.refs)])
	return out.String()
}
