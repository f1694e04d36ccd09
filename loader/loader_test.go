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

//go:build !integration

package loader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rivaas.dev/confnode"
)

type JSONFormatTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *JSONFormatTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *JSONFormatTestSuite) load(content string) (*confnode.Node, error) {
	l, err := New(JSONFormat{Indent: "  "}, WithContent([]byte(content)))
	s.Require().NoError(err)
	return l.Load(s.ctx)
}

func (s *JSONFormatTestSuite) TestKeepsKeyOrder() {
	root, err := s.load(`{"b": 1, "a": {"y": true, "x": [1, 2.5, "s", null]}}`)
	s.Require().NoError(err)

	s.Assert().Equal([]any{"b", "a"}, root.Keys())
	s.Assert().Equal([]any{"y", "x"}, root.Node("a").Keys())
	s.Assert().Equal(1, root.Node("b").Raw())
	s.Assert().Equal(true, root.Node("a", "y").Raw())

	list := root.Node("a", "x")
	s.Require().Equal(4, list.Len())
	s.Assert().Equal(2.5, list.Node(1).Raw())
	s.Assert().Equal("s", list.Node(2).Raw())
	s.Assert().True(list.Node(3).IsNull())
}

func (s *JSONFormatTestSuite) TestNullDropsKey() {
	root, err := s.load(`{"a": null, "b": 1}`)
	s.Require().NoError(err)
	s.Assert().Equal([]any{"b"}, root.Keys())
}

func (s *JSONFormatTestSuite) TestScalarDocument() {
	root, err := s.load(`"just text"`)
	s.Require().NoError(err)
	s.Assert().Equal("just text", root.Raw())
}

func (s *JSONFormatTestSuite) TestMalformed() {
	for _, doc := range []string{`{"a": `, `{"a": 1} {}`, `key: [unclosed`, `{1: 2}`} {
		_, err := s.load(doc)
		s.Require().Error(err, doc)
		s.Assert().ErrorIs(err, confnode.ErrMalformed, doc)
	}
}

func (s *JSONFormatTestSuite) TestEncodeOrderedIndented() {
	root := confnode.MustNew()
	root.Node("name").SetRaw("svc")
	root.Node("ports").SetRaw([]any{80, 443})
	root.Node("empty").SetRaw(map[string]any{})
	root.Node("db", "url").SetRaw("postgres://")

	var buf bytes.Buffer
	l, err := New(JSONFormat{Indent: "  "}, WithWriter(&buf))
	s.Require().NoError(err)
	s.Require().NoError(l.Save(s.ctx, root))

	s.Assert().Equal(`{
  "name": "svc",
  "ports": [
    80,
    443
  ],
  "empty": {},
  "db": {
    "url": "postgres://"
  }
}
`, buf.String())
}

func (s *JSONFormatTestSuite) TestEncodeCompact() {
	root := confnode.MustNew()
	root.Node("b").SetRaw(true)
	root.Node("a").SetRaw([]any{})

	var buf bytes.Buffer
	s.Require().NoError(JSONFormat{}.Encode(&buf, root))
	s.Assert().Equal("{\"b\":true,\"a\":[]}\n", buf.String())
}

func TestJSONFormatTestSuite(t *testing.T) {
	suite.Run(t, new(JSONFormatTestSuite))
}

type HeaderTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *HeaderTestSuite) SetupTest() {
	s.ctx = context.Background()
}

const tomlWithHeader = "# Service settings\n#\n# Edit with care.\n\ntitle = \"demo\"\n"

func (s *HeaderTestSuite) TestPreserve() {
	var buf bytes.Buffer
	l, err := New(TOMLFormat{}, WithContent([]byte(tomlWithHeader)), WithWriter(&buf))
	s.Require().NoError(err)

	root, err := l.Load(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal("Service settings\n\nEdit with care.", root.Options().Header())
	s.Assert().Equal("demo", root.Node("title").String())

	s.Require().NoError(l.Save(s.ctx, root))
	s.Assert().Equal(tomlWithHeader, buf.String())
}

func (s *HeaderTestSuite) TestCommentAboveContentIsNotHeader() {
	header, body := splitHeader([]byte("# about title\ntitle = 1\n"), "#")
	s.Assert().Empty(header)
	s.Assert().Equal("# about title\ntitle = 1\n", string(body))

	header, body = splitHeader([]byte("# only a header"), "#")
	s.Assert().Equal("only a header", header)
	s.Assert().Empty(body)

	header, body = splitHeader([]byte("\r\n# late\n\nx = 1"), "#")
	s.Assert().Empty(header)
	s.Assert().Equal("\r\n# late\n\nx = 1", string(body))
}

func (s *HeaderTestSuite) TestPreset() {
	var buf bytes.Buffer
	l, err := New(TOMLFormat{},
		WithContent([]byte(tomlWithHeader)),
		WithWriter(&buf),
		WithHeaderMode(HeaderPreset),
		WithDefaultOptions(confnode.WithHeader("Generated file")),
	)
	s.Require().NoError(err)

	root, err := l.Load(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal("Generated file", root.Options().Header())

	s.Require().NoError(l.Save(s.ctx, root))
	s.Assert().Equal("# Generated file\n\ntitle = \"demo\"\n", buf.String())
}

func (s *HeaderTestSuite) TestNone() {
	var buf bytes.Buffer
	l, err := New(TOMLFormat{},
		WithContent([]byte(tomlWithHeader)),
		WithWriter(&buf),
		WithHeaderMode(HeaderNone),
		WithDefaultOptions(confnode.WithHeader("ignored")),
	)
	s.Require().NoError(err)

	root, err := l.Load(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal("ignored", root.Options().Header())

	s.Require().NoError(l.Save(s.ctx, root))
	s.Assert().Equal("title = \"demo\"\n", buf.String())
}

func TestHeaderTestSuite(t *testing.T) {
	suite.Run(t, new(HeaderTestSuite))
}

type FileLoaderTestSuite struct {
	suite.Suite
	ctx context.Context
	dir string
}

func (s *FileLoaderTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
}

func (s *FileLoaderTestSuite) TestMissingFileIsEmpty() {
	l, err := NewForPath(filepath.Join(s.dir, "absent.json"))
	s.Require().NoError(err)

	root, err := l.Load(s.ctx)
	s.Require().NoError(err)
	s.Assert().True(root.Empty())
}

func (s *FileLoaderTestSuite) TestSaveAtomicWithPermissions() {
	path := filepath.Join(s.dir, "nested", "app.json")
	l, err := NewForPath(path, WithPermissions(0o600))
	s.Require().NoError(err)

	root, err := l.CreateNode()
	s.Require().NoError(err)
	root.Node("port").SetRaw(8080)
	s.Require().NoError(l.Save(s.ctx, root))

	info, err := os.Stat(path)
	s.Require().NoError(err)
	s.Assert().Equal(os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	s.Require().NoError(err)
	s.Assert().Len(entries, 1)

	loaded, err := l.Load(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(8080, loaded.Node("port").Int())
}

func (s *FileLoaderTestSuite) TestPathExpandsEnv() {
	s.T().Setenv("CONFNODE_TEST_DIR", s.dir)
	l, err := New(JSONFormat{}, WithPath("$CONFNODE_TEST_DIR/app.json"))
	s.Require().NoError(err)
	s.Assert().Equal(filepath.Join(s.dir, "app.json"), l.Path())
}

func (s *FileLoaderTestSuite) TestMsgPackRoundTrip() {
	path := filepath.Join(s.dir, "state.msgpack")
	l, err := NewForPath(path)
	s.Require().NoError(err)
	s.Assert().Equal("msgpack", l.Format().Name())

	root, err := l.CreateNode()
	s.Require().NoError(err)
	root.Node("name").SetRaw("svc")
	root.Node("limits", "cpu").SetRaw(2)
	s.Require().NoError(l.Save(s.ctx, root))

	loaded, err := l.Load(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal("svc", loaded.Node("name").String())
	s.Assert().Equal(2, loaded.Node("limits", "cpu").Int())
}

func TestFileLoaderTestSuite(t *testing.T) {
	suite.Run(t, new(FileLoaderTestSuite))
}

func TestTOMLKeyOrder(t *testing.T) {
	t.Parallel()

	doc := `b = 1
a = "two"

[server]
port = 80
host = "localhost"

[[items]]
name = "x"

[[items]]
name = "y"
`
	l, err := New(TOMLFormat{}, WithContent([]byte(doc)))
	require.NoError(t, err)
	root, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []any{"b", "a", "server", "items"}, root.Keys())
	assert.Equal(t, []any{"port", "host"}, root.Node("server").Keys())
	assert.Equal(t, 80, root.Node("server", "port").Raw())
	require.Equal(t, 2, root.Node("items").Len())
	assert.Equal(t, "y", root.Node("items", 1, "name").String())
}

func TestEnvFormat(t *testing.T) {
	t.Parallel()

	l, err := New(MustNewCodecFormat("env_var", "#"), WithContent([]byte("# defaults\n\nSERVER_PORT=8080\n")))
	require.NoError(t, err)
	root, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "defaults", root.Options().Header())
	assert.Equal(t, 8080, root.Node("server", "port").Int())
}

func TestFormatRegistry(t *testing.T) {
	t.Parallel()

	assert.Subset(t, Formats(), []string{"json", "toml", "msgpack", "env_var"})

	f, err := ForPath("/etc/app/CONFIG.JSON")
	require.NoError(t, err)
	assert.Equal(t, "json", f.Name())

	_, err = ForPath("config.ini")
	assert.ErrorContains(t, err, `cannot detect format from extension ".ini"`)

	_, err = ForName("xml")
	assert.EqualError(t, err, "format not found: xml")
}

func TestNewJoinsOptionErrors(t *testing.T) {
	t.Parallel()

	_, err := New(JSONFormat{}, WithPath(""), WithLogger(nil), WithHeaderMode(HeaderMode(9)))
	require.Error(t, err)
	assert.ErrorContains(t, err, "path cannot be empty")
	assert.ErrorContains(t, err, "logger cannot be nil")
	assert.ErrorContains(t, err, "invalid header mode 9")

	_, err = New(nil)
	require.Error(t, err)

	l := MustNew(JSONFormat{})
	assert.False(t, l.CanLoad())
	assert.False(t, l.CanSave())
	_, err = l.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, l.Save(context.Background(), confnode.MustNew()))
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := MustNew(JSONFormat{}, WithContent([]byte(`{}`)))
	_, err := l.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
