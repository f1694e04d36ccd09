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

package confnode

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type NodeTestSuite struct {
	suite.Suite
	root *Node
}

func (s *NodeTestSuite) SetupTest() {
	s.root = MustNew()
}

func (s *NodeTestSuite) TestVirtualChildAttachesOnWrite() {
	child := s.root.Node("server", "host")
	s.Assert().True(child.Virtual())
	s.Assert().True(s.root.IsNull())
	s.Assert().False(s.root.HasChild("server"))

	child.SetRaw("localhost")

	s.Assert().False(child.Virtual())
	s.Assert().True(s.root.IsMap())
	s.Assert().True(s.root.HasChild("server", "host"))
	s.Assert().Equal("localhost", s.root.Node("server", "host").Raw())
	s.Assert().Same(s.root.Node("server"), child.Parent())
}

func (s *NodeTestSuite) TestReadingDoesNotAttach() {
	_ = s.root.Node("a", "b", "c").Raw()
	s.Assert().True(s.root.IsNull())
	s.Assert().Equal(0, s.root.Len())
}

func (s *NodeTestSuite) TestSwitchingKindClearsChildren() {
	n := s.root.Node("value")
	n.SetRaw([]any{1, 2, 3})
	s.Require().True(n.IsList())
	old := n.ChildrenList()
	s.Require().Len(old, 3)

	n.SetRaw("scalar")

	s.Assert().Equal(KindScalar, n.Kind())
	s.Assert().Nil(n.ChildrenList())
	s.Assert().Equal(0, n.Len())
	for _, c := range old {
		s.Assert().True(c.Virtual())
	}

	n.SetRaw(map[string]any{"k": "v"})
	s.Assert().True(n.IsMap())
	s.Assert().Equal(map[string]any{"k": "v"}, n.Raw())
}

func (s *NodeTestSuite) TestMapKeepsInsertionOrder() {
	s.root.Node("zeta").SetRaw(1)
	s.root.Node("alpha").SetRaw(2)
	s.root.Node("mid").SetRaw(3)
	s.Assert().Equal([]any{"zeta", "alpha", "mid"}, s.root.Keys())

	// overwriting keeps position
	s.root.Node("zeta").SetRaw(4)
	s.Assert().Equal([]any{"zeta", "alpha", "mid"}, s.root.Keys())
}

func (s *NodeTestSuite) TestSetRawGoMapSortsKeys() {
	s.root.SetRaw(map[string]any{"b": 1, "a": 2, "c": map[string]any{"y": 1, "x": 2}})
	s.Assert().Equal([]any{"a", "b", "c"}, s.root.Keys())
	s.Assert().Equal([]any{"x", "y"}, s.root.Node("c").Keys())
}

func (s *NodeTestSuite) TestSetRawNilRemovesFromMap() {
	s.root.Node("a").SetRaw(1)
	s.root.Node("b").SetRaw(2)

	s.root.Node("a").SetRaw(nil)

	s.Assert().False(s.root.HasChild("a"))
	s.Assert().Equal([]any{"b"}, s.root.Keys())
}

func (s *NodeTestSuite) TestPath() {
	list := s.root.Node("servers")
	list.AppendListNode().Node("host").SetRaw("a")
	list.AppendListNode().Node("host").SetRaw("b")

	host := s.root.Node("servers", 1, "host")
	s.Assert().Equal(Path{"servers", 1, "host"}, host.Path())
	s.Assert().Equal("servers[1].host", host.Path().String())
	s.Assert().Equal("b", host.String())
	s.Assert().Empty(s.root.Path())
}

func (s *NodeTestSuite) TestRemoveChildReindexesList() {
	n := s.root.Node("list")
	n.SetRaw([]any{"a", "b", "c"})

	s.Require().True(n.RemoveChild(0))
	s.Assert().Equal([]any{"b", "c"}, n.Raw())
	s.Assert().Equal(0, n.ChildrenList()[0].Key())
	s.Assert().Equal(1, n.ChildrenList()[1].Key())
	s.Assert().False(n.RemoveChild(5))
}

func (s *NodeTestSuite) TestAppendListNodeConvertsNode() {
	n := s.root.Node("x")
	n.SetRaw("scalar")
	c := n.AppendListNode()
	s.Assert().True(n.IsList())
	s.Assert().True(c.IsNull())
	s.Assert().Equal(1, n.Len())
	s.Assert().Equal(0, c.Key())
}

func (s *NodeTestSuite) TestListIndexOnVirtualListChild() {
	n := s.root.Node("list")
	n.SetRaw([]any{"a"})
	n.Node(2).SetRaw("c")
	s.Assert().Equal([]any{"a", nil, "c"}, n.Raw())
}

func (s *NodeTestSuite) TestComments() {
	n := s.root.Node("server", "port")
	n.SetComment("listening port")
	s.Assert().False(n.Virtual())
	s.Assert().Equal("listening port", n.Comment())

	n.SetCommentIfAbsent("ignored")
	s.Assert().Equal("listening port", n.Comment())
}

func (s *NodeTestSuite) TestMergeFrom() {
	s.root.SetRaw(map[string]any{"a": 1, "nested": map[string]any{"x": "keep"}})
	defaults := MustNew()
	defaults.SetRaw(map[string]any{
		"a":      100,
		"b":      2,
		"nested": map[string]any{"x": "drop", "y": "add"},
	})
	defaults.Node("b").SetComment("from defaults")

	s.root.MergeFrom(defaults)

	s.Assert().Equal(map[string]any{
		"a":      1,
		"b":      2,
		"nested": map[string]any{"x": "keep", "y": "add"},
	}, s.root.Raw())
	s.Assert().Equal("from defaults", s.root.Node("b").Comment())
}

func (s *NodeTestSuite) TestCopyIsDeep() {
	s.root.SetRaw(map[string]any{"list": []any{1, 2}})
	s.root.Node("list").SetComment("numbers")

	cp := s.root.Copy()
	cp.Node("list", 0).SetRaw(99)

	s.Assert().Equal([]any{1, 2}, s.root.Node("list").Raw())
	s.Assert().Equal([]any{99, 2}, cp.Node("list").Raw())
	s.Assert().Equal("numbers", cp.Node("list").Comment())
	s.Assert().Same(s.root.Options(), cp.Options())
}

func (s *NodeTestSuite) TestSetRawNodeCopies() {
	src := MustNew()
	src.SetRaw(map[string]any{"k": "v"})

	s.root.Node("dst").SetRaw(src)
	src.Node("k").SetRaw("changed")

	s.Assert().Equal("v", s.root.Node("dst", "k").Raw())
}

func (s *NodeTestSuite) TestWalk() {
	s.root.SetRaw(map[string]any{"a": []any{1}, "b": 2})

	var paths []string
	err := s.root.Walk(func(n *Node) error {
		paths = append(paths, n.Path().String())
		return nil
	})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"", "a", "a[0]", "b"}, paths)

	stop := errors.New("stop")
	count := 0
	err = s.root.Walk(func(*Node) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	s.Assert().ErrorIs(err, stop)
	s.Assert().Equal(2, count)
}

func (s *NodeTestSuite) TestEmpty() {
	s.Assert().True(s.root.Empty())
	s.root.Node("s").SetRaw("")
	s.Assert().True(s.root.Node("s").Empty())
	s.Assert().False(s.root.Empty())
}

func TestNodeTestSuite(t *testing.T) {
	suite.Run(t, new(NodeTestSuite))
}

func TestGetters(t *testing.T) {
	t.Parallel()

	root := MustNew()
	root.SetRaw(map[string]any{
		"name":    "app",
		"port":    "8080",
		"ratio":   0.5,
		"debug":   "true",
		"timeout": "2s",
		"hosts":   []any{"a", "b"},
		"single":  "only",
		"labels":  map[string]any{"env": "prod"},
	})

	assert.Equal(t, "app", root.Node("name").String())
	assert.Equal(t, "fallback", root.Node("missing").StringOr("fallback"))
	assert.Equal(t, 8080, root.Node("port").Int())
	assert.Equal(t, int64(8080), root.Node("port").Int64())
	assert.Equal(t, 7, root.Node("missing").IntOr(7))
	assert.InDelta(t, 0.5, root.Node("ratio").Float64(), 1e-9)
	assert.True(t, root.Node("debug").Bool())
	assert.True(t, root.Node("missing").BoolOr(true))
	assert.Equal(t, 2*time.Second, root.Node("timeout").Duration())
	assert.Equal(t, time.Minute, root.Node("missing").DurationOr(time.Minute))
	assert.Equal(t, []string{"a", "b"}, root.Node("hosts").StringSlice())
	assert.Equal(t, []string{"only"}, root.Node("single").StringSlice())
	assert.Equal(t, map[string]any{"env": "prod"}, root.Node("labels").StringMap())
}

func TestNewJoinsOptionErrors(t *testing.T) {
	t.Parallel()

	_, err := New(WithSerializers(nil), WithLogger(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serializers")
	assert.Contains(t, err.Error(), "logger")

	assert.Panics(t, func() { MustNew(WithSerializers(nil)) })
}

func TestHints(t *testing.T) {
	t.Parallel()

	style := NewInheritableHint[string]("test/style")
	local := NewHint[int]("test/local").WithDefault(4)

	root := MustNew()
	child := root.Node("a", "b")
	child.SetRaw("x")

	_, ok := HintOf(child, style)
	assert.False(t, ok)

	SetHint(root, style, "flow")
	v, ok := HintOf(child, style)
	assert.True(t, ok)
	assert.Equal(t, "flow", v)
	_, own := OwnHint(child, style)
	assert.False(t, own)

	SetHint(root, local, 8)
	lv, ok := HintOf(child, local)
	assert.True(t, ok)
	assert.Equal(t, 4, lv, "non-inheritable hint falls back to its default")

	SetHint(child, local, 2)
	lv, _ = HintOf(child, local)
	assert.Equal(t, 2, lv)
	assert.Equal(t, map[string]any{"test/local": 2}, child.Hints())

	ClearHint(child, local)
	_, own = OwnHint(child, local)
	assert.False(t, own)
	assert.Equal(t, "test/local", local.ID())
	assert.True(t, style.Inheritable())
}
