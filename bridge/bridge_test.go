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

package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rivaas.dev/confnode"
)

type vec3i struct {
	X, Y, Z int
}

var vec3iCodec = FlatXmap(IntStream,
	func(v []int) (vec3i, error) {
		if len(v) != 3 {
			return vec3i{}, errors.New("expected 3 coordinates")
		}
		return vec3i{v[0], v[1], v[2]}, nil
	},
	func(v vec3i) ([]int, error) { return []int{v.X, v.Y, v.Z}, nil },
)

type placed struct {
	TestValue string
	Position  vec3i
}

type BridgeTestSuite struct {
	suite.Suite
	serializers *confnode.Serializers
}

func (s *BridgeTestSuite) SetupTest() {
	s.serializers = confnode.Register[vec3i](confnode.DefaultSerializers().Child(), Serializer(vec3iCodec)).Build()
}

func (s *BridgeTestSuite) TestCodecBackedSerializer() {
	node := confnode.MustNew(confnode.WithSerializers(s.serializers))
	node.AppendListNode().SetRaw(4)
	node.AppendListNode().SetRaw(5)
	node.AppendListNode().SetRaw(8)

	pos, err := confnode.Get[vec3i](node)
	s.Require().NoError(err)
	s.Assert().Equal(vec3i{4, 5, 8}, pos)

	out := confnode.MustNew(confnode.WithSerializers(s.serializers))
	s.Require().NoError(confnode.Set(out, vec3i{1, 2, 3}))
	s.Assert().Equal([]any{1, 2, 3}, out.Raw())
}

func (s *BridgeTestSuite) TestCodecBackedSerializerRejectsBadInput() {
	node := confnode.MustNew(confnode.WithSerializers(s.serializers))
	node.SetRaw([]any{1, 2})

	_, err := confnode.Get[vec3i](node)
	s.Require().Error(err)
	s.Assert().ErrorIs(err, confnode.ErrTypeMismatch)
	s.Assert().ErrorContains(err, "expected 3 coordinates")
}

func (s *BridgeTestSuite) TestCodecForEncodesThroughMapper() {
	codec, ok := CodecFor[placed](s.serializers)
	s.Require().True(ok)

	out, err := codec.Encode(JSON, placed{TestValue: "hello world", Position: vec3i{1, 8, 4}})
	s.Require().NoError(err)
	s.Assert().Equal(map[string]any{
		"test-value": "hello world",
		"position":   []any{1, 8, 4},
	}, out)

	data, err := json.MarshalIndent(out, "", "    ")
	s.Require().NoError(err)
	s.Assert().JSONEq(`{"test-value": "hello world", "position": [1, 8, 4]}`, string(data))

	back, err := codec.Decode(JSON, out)
	s.Require().NoError(err)
	s.Assert().Equal(placed{TestValue: "hello world", Position: vec3i{1, 8, 4}}, back)
}

func (s *BridgeTestSuite) TestCodecForMissingSerializer() {
	_, ok := CodecFor[vec3i](confnode.NewSerializersBuilder().Build())
	s.Assert().False(ok)
}

func TestBridgeTestSuite(t *testing.T) {
	suite.Run(t, new(BridgeTestSuite))
}

type endpoint struct {
	Host string
	Port int
}

var endpointCodec = Record(
	FieldOf("host", String, func(e endpoint) string { return e.Host }, func(e *endpoint, v string) { e.Host = v }),
	OptionalFieldOf("port", Int, 80, func(e endpoint) int { return e.Port }, func(e *endpoint, v int) { e.Port = v }),
)

func TestRecord(t *testing.T) {
	t.Parallel()

	encoded, err := endpointCodec.Encode(NodeOps{}, endpoint{Host: "example.com", Port: 8443})
	require.NoError(t, err)
	node := encoded.(*confnode.Node)
	assert.Equal(t, []any{"host", "port"}, node.Keys())
	assert.Equal(t, 8443, node.Node("port").Raw())

	decoded, err := endpointCodec.Decode(JSON, map[string]any{"host": "example.com"})
	require.NoError(t, err)
	assert.Equal(t, endpoint{Host: "example.com", Port: 80}, decoded)

	_, err = endpointCodec.Decode(JSON, map[string]any{"port": 1})
	assert.ErrorContains(t, err, `missing field "host"`)

	_, err = endpointCodec.Decode(JSON, map[string]any{"host": "h", "port": "x"})
	assert.ErrorContains(t, err, "port: not a number")

	_, err = endpointCodec.Decode(JSON, "scalar")
	assert.Error(t, err)
}

func TestNumbers(t *testing.T) {
	t.Parallel()

	_, err := Number[int8]().Decode(JSON, 300)
	assert.ErrorContains(t, err, "overflows")

	_, err = Number[uint]().Decode(JSON, -1)
	assert.Error(t, err)

	_, err = Int.Decode(JSON, 2.5)
	assert.ErrorContains(t, err, "not an integer")

	f, err := Float64.Decode(JSON, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	i, err := Int64.Decode(JSON, 3.0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	_, err = Int64.Decode(JSON, 1e20)
	assert.ErrorContains(t, err, "overflows")

	_, err = Int64.Decode(JSON, uint64(1<<63))
	assert.ErrorContains(t, err, "overflows")

	_, err = Number[uint64]().Decode(JSON, -1e3)
	assert.ErrorContains(t, err, "overflows")

	u, err := Number[uint64]().Decode(JSON, 1e19)
	require.NoError(t, err)
	assert.Equal(t, uint64(1e19), u)

	_, err = Bool.Decode(JSON, "true")
	assert.Error(t, err)
}

func TestXmap(t *testing.T) {
	t.Parallel()

	seconds := Xmap(Int, func(n int) time.Duration { return time.Duration(n) * time.Second },
		func(d time.Duration) int { return int(d / time.Second) })

	out, err := seconds.Encode(JSON, 90*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90, out)

	d, err := seconds.Decode(JSON, 5)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

type server struct {
	Host    string        `config:"host"`
	Timeout time.Duration `config:"timeout"`
	Tags    []string      `config:"tags"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	codec := Struct[server]()

	decoded, err := codec.Decode(JSON, map[string]any{"host": "h", "timeout": "5s", "tags": "a,b"})
	require.NoError(t, err)
	assert.Equal(t, server{Host: "h", Timeout: 5 * time.Second, Tags: []string{"a", "b"}}, decoded)

	encoded, err := codec.Encode(NodeOps{}, decoded)
	require.NoError(t, err)
	node := encoded.(*confnode.Node)
	assert.Equal(t, "h", node.Node("host").String())
	assert.Equal(t, 2, node.Node("tags").Len())

	back, err := codec.Decode(NodeOps{}, node)
	require.NoError(t, err)
	assert.Equal(t, decoded, back)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	plain := map[string]any{
		"name":    "svc",
		"enabled": true,
		"ratio":   0.5,
		"ports":   []any{80, 443},
		"nested":  map[string]any{"k": "v"},
	}
	node, err := Convert(JSON, NodeOps{}, plain)
	require.NoError(t, err)
	n := node.(*confnode.Node)
	assert.Equal(t, KindMap, NodeOps{}.Kind(n))
	assert.Equal(t, KindBool, NodeOps{}.Kind(n.Node("enabled")))
	assert.Equal(t, KindNumber, NodeOps{}.Kind(n.Node("ratio")))
	assert.Equal(t, KindNull, NodeOps{}.Kind(n.Node("absent")))

	back, err := Convert(NodeOps{}, JSON, n)
	require.NoError(t, err)
	assert.Equal(t, plain, back)

	assert.Equal(t, KindList, JSON.Kind([]string{"a"}))
	assert.Equal(t, KindMap, JSON.Kind(map[string]int{"a": 1}))
	assert.Equal(t, KindNull, JSON.Kind((*int)(nil)))
	assert.Equal(t, "number", KindNumber.String())
}
