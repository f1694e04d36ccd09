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

// Package cli implements the confnode command-line interface.
package cli

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rivaas.dev/confnode"
	"rivaas.dev/confnode/loader"
	_ "rivaas.dev/confnode/loader/yaml" // registers .yaml and .yml
)

// stdio is the path argument selecting standard input or output.
const stdio = "-"

// CLI holds state shared by all commands.
type CLI struct {
	Logger *slog.Logger
	level  *slog.LevelVar
}

// New creates a CLI logging to w at info level.
func New(w io.Writer) *CLI {
	level := new(slog.LevelVar)
	return &CLI{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
		level:  level,
	}
}

// SetVerbose switches debug logging on or off.
func (c *CLI) SetVerbose(verbose bool) {
	if verbose {
		c.level.Set(slog.LevelDebug)
		return
	}
	c.level.Set(slog.LevelInfo)
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "confnode",
		Short: "Inspect, convert and validate configuration files",
		Long: `confnode reads configuration documents in any registered format
(YAML, JSON, TOML, MessagePack, env) into a node tree that keeps comments
and styles, and writes them back out.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			c.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.formatsCommand())

	return root
}

// resolveFormat picks the format named formatName, or the one matching the
// extension of path. "-" has no extension and needs a format name.
func resolveFormat(path, formatName string) (loader.Format, error) {
	switch {
	case formatName != "":
		return loader.ForName(formatName)
	case path == stdio:
		return nil, errors.New("a format is required when using standard input or output")
	}
	return loader.ForPath(path)
}

// newLoader builds a loader for path, using std when path is "-".
func (c *CLI) newLoader(format loader.Format, path string, std loader.Option, opts ...loader.Option) (*loader.Loader, error) {
	opts = append(opts, loader.WithLogger(c.Logger))
	if path == stdio {
		opts = append(opts, std)
	} else {
		opts = append(opts, loader.WithPath(path))
	}
	return loader.New(format, opts...)
}

// load reads the document at path.
func (c *CLI) load(cmd *cobra.Command, path, formatName string) (*confnode.Node, error) {
	format, err := resolveFormat(path, formatName)
	if err != nil {
		return nil, err
	}
	l, err := c.newLoader(format, path, loader.WithReader(cmd.InOrStdin()))
	if err != nil {
		return nil, err
	}
	return l.Load(cmd.Context())
}

// lookup walks a dot-separated path. Numeric segments index lists.
func lookup(root *confnode.Node, path string) (*confnode.Node, bool) {
	if path == "" || path == "." {
		return root, true
	}
	cur := root
	for _, segment := range strings.Split(path, ".") {
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
