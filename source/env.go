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

package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rivaas.dev/confnode/codec"
)

// OSEnvVar loads configuration from environment variables sharing a prefix.
// Underscores in the remaining name create nesting, so with prefix "APP_"
// the variable APP_SERVER_PORT becomes the key server.port.
type OSEnvVar struct {
	prefix  string
	decoder codec.Decoder
	environ func() []string
}

// NewOSEnvVar creates an OSEnvVar source for variables starting with prefix.
// The prefix is stripped before the name is split.
func NewOSEnvVar(prefix string) *OSEnvVar {
	return &OSEnvVar{
		prefix:  prefix,
		decoder: codec.EnvVarCodec{},
		environ: os.Environ,
	}
}

// Load decodes the matching variables into nested maps of strings.
//
// Example:
//
//	APP_SERVER_PORT=8080      -> server.port = "8080"
//	APP_SERVER_HOST=localhost -> server.host = "localhost"
//	APP_DEBUG=true            -> debug = "true"
func (e *OSEnvVar) Load(_ context.Context) (map[string]any, error) {
	env := e.environ()
	valid := make([]string, 0, len(env))
	for _, kv := range env {
		if !strings.HasPrefix(kv, e.prefix) {
			continue
		}
		valid = append(valid, strings.TrimPrefix(kv, e.prefix))
	}

	var config map[string]any
	if err := e.decoder.Decode([]byte(strings.Join(valid, "\n")), &config); err != nil {
		return nil, fmt.Errorf("failed to decode environment variables: %w", err)
	}

	return config, nil
}
