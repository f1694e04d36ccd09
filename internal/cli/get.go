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

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"rivaas.dev/confnode/loader"
)

func (c *CLI) getCommand() *cobra.Command {
	var from, output string
	cmd := &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the value at a dot-separated path",
		Long: `Print the value at a dot-separated path. Scalars are printed as text;
maps and lists are encoded with the --output format.

Examples:
  confnode get config.yaml server.port
  confnode get --output yaml config.json servers.0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.load(cmd, args[0], from)
			if err != nil {
				return err
			}
			node, ok := lookup(root, args[1])
			if !ok {
				return fmt.Errorf("no value at %q", args[1])
			}
			if !node.IsList() && !node.IsMap() {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cast.ToString(node.Raw()))
				return err
			}
			format, err := loader.ForName(output)
			if err != nil {
				return err
			}
			return format.Encode(cmd.OutOrStdout(), node.Copy())
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (detected from the extension if empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "format of map and list values")

	return cmd
}
