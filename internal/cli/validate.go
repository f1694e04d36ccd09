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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rivaas.dev/confnode/reference"
)

func (c *CLI) validateCommand() *cobra.Command {
	var schema, envPrefix string
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a configuration file loads and matches a JSON Schema",
		Long: `Check that a configuration file loads and, with --schema, that it
matches a JSON Schema. With --env, environment variables with the given
prefix are merged over the file first.

Examples:
  confnode validate config.yaml
  confnode validate --schema schema.json --env APP_ config.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			opts := []reference.Option{
				reference.WithFile(args[0]),
				reference.WithLogger(c.Logger),
			}
			if envPrefix != "" {
				opts = append(opts, reference.WithEnv(envPrefix))
			}
			if schema != "" {
				data, err := os.ReadFile(schema)
				if err != nil {
					return err
				}
				opts = append(opts, reference.WithJSONSchema(data))
			}

			ref, err := reference.New(opts...)
			if err != nil {
				return err
			}
			if err = ref.Load(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "JSON Schema file")
	cmd.Flags().StringVar(&envPrefix, "env", "", "merge environment variables with this prefix")

	return cmd
}
