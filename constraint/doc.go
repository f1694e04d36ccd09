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

// Package constraint derives field validation rules from struct tags.
//
// A [Registry] maps tag names to [Factory] values. When the object mapper
// builds the descriptor of a struct, every field's tag is offered to the
// registry and the resulting [Constraint] values run after the field has
// been deserialized. Absent fields are checked with a nil value.
//
// Built-in tags:
//
//	type Server struct {
//	    Host string `required:""`
//	    Name string `matches:"[a-z]+" matches-message:"bad name {0}"`
//	    Port int    `validate:"min=1,max=65535"`
//	}
//
// Messages are formatted through a [Bundle], so a localized registry only
// needs [LocalizedPattern] with a bundle for the target locale.
package constraint
