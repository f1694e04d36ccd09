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
	"bufio"
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// TypeEnvVar identifies the environment variable codec.
const TypeEnvVar Type = "env_var"

func init() {
	Register(TypeEnvVar, EnvVarCodec{})
}

// EnvVarCodec maps KEY=value lines to nested maps. Keys are lower-cased and
// split on underscores, so SERVER_PORT=80 becomes {"server": {"port": "80"}}.
type EnvVarCodec struct{}

// Decode parses KEY=value lines into v, which must be a *map[string]any.
// Lines without '=' and keys without letters are skipped. A key that is
// both a value and a prefix of longer keys keeps the nested map.
func (EnvVarCodec) Decode(data []byte, v any) error {
	out, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("EnvVarCodec.Decode: expected *map[string]any, got %T", v)
	}

	conf := make(map[string]any)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, found := strings.Cut(sc.Text(), "=")
		if !found {
			continue
		}
		parts := slices.DeleteFunc(strings.Split(strings.ToLower(strings.TrimSpace(key)), "_"), func(p string) bool {
			return p == ""
		})
		if len(parts) == 0 {
			continue
		}
		insert(conf, parts, strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	*out = conf
	return nil
}

func insert(m map[string]any, path []string, value string) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	last := path[len(path)-1]
	if _, nested := m[last].(map[string]any); nested {
		return
	}
	m[last] = value
}

// Encode flattens a map[string]any into sorted KEY=value lines, the inverse
// of Decode. Lists are joined with commas.
func (EnvVarCodec) Encode(v any) ([]byte, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("EnvVarCodec.Encode: expected map[string]any, got %T", v)
	}
	var lines []string
	flatten("", m, &lines)
	slices.Sort(lines)

	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func flatten(prefix string, m map[string]any, lines *[]string) {
	for k, v := range m {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, lines)
		case []any:
			*lines = append(*lines, key+"="+strings.Join(cast.ToStringSlice(val), ","))
		default:
			*lines = append(*lines, key+"="+cast.ToString(val))
		}
	}
}
