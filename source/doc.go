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

// Package source provides map-producing configuration sources.
//
// Every source implements Load(ctx) (map[string]any, error), the contract
// consumed by the reference package when it merges configuration. Sources
// load data from files, in-memory content, environment variables, the
// Consul key-value store or any format loader.
//
// # Available Sources
//
//   - [File]: a file or byte slice decoded by a codec
//   - [OSEnvVar]: environment variables filtered by prefix
//   - [Consul]: one key of Consul's key-value store
//   - [Loader]: the node tree produced by a loader.Loader
//
// # Example
//
//	decoder, _ := codec.GetDecoder(codec.TypeYAML)
//	fileSource := source.NewFile("config.yaml", decoder)
//	values, err := fileSource.Load(ctx)
//
//	envSource := source.NewOSEnvVar("APP_")
//	values, err = envSource.Load(ctx)
package source
