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

package reference

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"rivaas.dev/confnode"
)

// lookup finds the node at a dot-separated, case-insensitive key. A key
// stored with dots in its name matches before the dotted path is walked.
func (r *Reference) lookup(key string) (*confnode.Node, bool) {
	if r == nil || key == "" {
		return nil, false
	}
	root := r.Node()
	key = strings.ToLower(key)

	if root.HasChild(key) {
		return root.Node(key), true
	}

	cur := root
	for _, segment := range strings.Split(key, ".") {
		if i, err := strconv.Atoi(segment); err == nil && cur.IsList() {
			cur = cur.Node(i)
		} else {
			cur = cur.Node(segment)
		}
		if cur.Virtual() {
			return nil, false
		}
	}
	return cur, true
}

// Get returns the raw value at key, or nil when it is absent.
func (r *Reference) Get(key string) any {
	n, ok := r.lookup(key)
	if !ok {
		return nil
	}
	return n.Raw()
}

// Has reports whether key is present.
func (r *Reference) Has(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

// String returns the value at key as a string, or "".
//
// Example:
//
//	host := ref.String("server.host")
func (r *Reference) String(key string) string {
	return cast.ToString(r.Get(key))
}

// Int returns the value at key as an int, or 0.
func (r *Reference) Int(key string) int {
	return cast.ToInt(r.Get(key))
}

// Int64 returns the value at key as an int64, or 0.
func (r *Reference) Int64(key string) int64 {
	return cast.ToInt64(r.Get(key))
}

// Float64 returns the value at key as a float64, or 0.
func (r *Reference) Float64(key string) float64 {
	return cast.ToFloat64(r.Get(key))
}

// Bool returns the value at key as a bool, or false.
func (r *Reference) Bool(key string) bool {
	return cast.ToBool(r.Get(key))
}

// Duration returns the value at key as a duration, or 0.
func (r *Reference) Duration(key string) time.Duration {
	return cast.ToDuration(r.Get(key))
}

// Time returns the value at key as a time, or the zero time.
func (r *Reference) Time(key string) time.Time {
	return cast.ToTime(r.Get(key))
}

// StringSlice returns the value at key as a string slice.
func (r *Reference) StringSlice(key string) []string {
	return cast.ToStringSlice(r.Get(key))
}

// IntSlice returns the value at key as an int slice.
func (r *Reference) IntSlice(key string) []int {
	return cast.ToIntSlice(r.Get(key))
}

// StringMap returns the value at key as a map.
func (r *Reference) StringMap(key string) map[string]any {
	return cast.ToStringMap(r.Get(key))
}

// StringOr returns the value at key as a string, or def when absent.
func (r *Reference) StringOr(key, def string) string {
	if !r.Has(key) {
		return def
	}
	return r.String(key)
}

// IntOr returns the value at key as an int, or def when absent.
func (r *Reference) IntOr(key string, def int) int {
	if !r.Has(key) {
		return def
	}
	return r.Int(key)
}

// BoolOr returns the value at key as a bool, or def when absent.
func (r *Reference) BoolOr(key string, def bool) bool {
	if !r.Has(key) {
		return def
	}
	return r.Bool(key)
}

// DurationOr returns the value at key as a duration, or def when absent.
//
// Example:
//
//	timeout := ref.DurationOr("server.timeout", 30*time.Second)
func (r *Reference) DurationOr(key string, def time.Duration) time.Duration {
	if !r.Has(key) {
		return def
	}
	return r.Duration(key)
}

// GetE deserializes the node at key into T through the snapshot's
// serializers, so structs go through the object mapper.
//
// Example:
//
//	tls, err := reference.GetE[TLSConfig](ref, "server.tls")
func GetE[T any](r *Reference, key string) (T, error) {
	var zero T
	n, ok := r.lookup(key)
	if !ok {
		return zero, fmt.Errorf("key %q not found", key)
	}
	return confnode.Get[T](n)
}

// GetOr is like [GetE] but returns def when the key is absent or cannot be
// converted.
func GetOr[T any](r *Reference, key string, def T) T {
	v, err := GetE[T](r, key)
	if err != nil {
		return def
	}
	return v
}
