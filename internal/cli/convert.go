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

	"github.com/spf13/cobra"

	"rivaas.dev/confnode/loader"
	"rivaas.dev/confnode/loader/yaml"
)

type convertOpts struct {
	from   string
	to     string
	header string
	indent int
}

func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a configuration document between formats",
		Long: `Convert a configuration document between formats. Formats are
detected from file extensions unless --from or --to is given. Use "-" for
standard input or output.

Examples:
  confnode convert config.json config.yaml
  confnode convert --to toml config.yaml -
  cat app.yml | confnode convert --from yaml --to json - -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.convert(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "input format (detected from the extension if empty)")
	cmd.Flags().StringVar(&opts.to, "to", "", "output format (detected from the extension if empty)")
	cmd.Flags().StringVar(&opts.header, "header", loader.HeaderPreserve.String(), "header handling: preserve, preset or none")
	cmd.Flags().IntVar(&opts.indent, "indent", 0, "YAML indent, 2 to 9 (format default if 0)")

	return cmd
}

func (c *CLI) convert(cmd *cobra.Command, input, output string, opts convertOpts) error {
	mode, err := parseHeaderMode(opts.header)
	if err != nil {
		return err
	}

	format, err := resolveFormat(output, opts.to)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if opts.indent != 0 {
		if format.Name() != "yaml" {
			return fmt.Errorf("--indent applies to yaml output, not %s", format.Name())
		}
		if format, err = yaml.New(yaml.WithIndent(opts.indent)); err != nil {
			return err
		}
	}
	out, err := c.newLoader(format, output, loader.WithWriter(cmd.OutOrStdout()), loader.WithHeaderMode(mode))
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}

	root, err := c.load(cmd, input, opts.from)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err = out.Save(cmd.Context(), root); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	c.Logger.Debug("converted", "input", input, "output", output, "format", format.Name())
	return nil
}

func parseHeaderMode(s string) (loader.HeaderMode, error) {
	for _, m := range []loader.HeaderMode{loader.HeaderPreserve, loader.HeaderPreset, loader.HeaderNone} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid header mode %q", s)
}
