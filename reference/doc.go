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

// Package reference keeps a live, merged configuration tree.
//
// A [Reference] loads a list of sources in order, merges their maps so that
// later sources override earlier ones, validates the result and publishes it
// as an immutable [confnode.Node] snapshot. Readers always see a complete
// snapshot; a failed reload keeps the previous one.
//
// # Sources
//
// Files (any registered loader format), in-memory content, environment
// variables and Consul keys are added with options:
//
//	ref := reference.MustNew(
//	    reference.WithFile("config.yaml"),
//	    reference.WithEnv("APP_"),
//	    reference.WithConsul("production/service.json"),
//	)
//
// WithConsul is skipped when CONSUL_HTTP_ADDR is not set. Keys are
// lower-cased before merging, so lookups are case-insensitive.
//
// # Validation and binding
//
// [WithJSONSchema] validates the merged map against a JSON Schema and
// [WithValidator] runs custom checks. [WithBinding] decodes every snapshot
// into a struct through the object mapper, applying "default" and
// constraint tags. A bound struct implementing [Validator] is validated
// before the snapshot is published.
//
// # Reading values
//
//	port := ref.Int("server.port")
//	timeout := ref.DurationOr("server.timeout", 30*time.Second)
//	tls, err := reference.GetE[TLSConfig](ref, "server.tls")
//
// # Saving and watching
//
// [WithSaveTo] names a file written by [Reference.Save] in the format its
// extension selects. [Reference.Watch] reloads whenever a file source
// changes and [Reference.OnChange] registers listeners for new snapshots.
package reference
