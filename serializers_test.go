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
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type namer interface {
	Name() string
}

type fullNamer interface {
	namer
	FullName() string
}

type person struct{}

func (person) Name() string     { return "ada" }
func (person) FullName() string { return "ada lovelace" }

type robot struct{}

func (robot) Name() string { return "r2" }

// marker is a stand-in serializer identified by its label.
type marker struct{ label string }

func (marker) Deserialize(reflect.Type, *Node) (any, error) { return nil, nil }
func (marker) Serialize(reflect.Type, any, *Node) error     { return nil }

type SerializersTestSuite struct {
	suite.Suite
}

func (s *SerializersTestSuite) TestMostSpecificInterfaceWins() {
	for _, order := range [][]reflect.Type{
		{reflect.TypeFor[namer](), reflect.TypeFor[fullNamer]()},
		{reflect.TypeFor[fullNamer](), reflect.TypeFor[namer]()},
	} {
		b := NewSerializersBuilder()
		for _, typ := range order {
			b.Register(typ, marker{label: typ.Name()})
		}
		ss := b.Build()

		s.Assert().Equal(marker{label: "fullNamer"}, ss.Get(reflect.TypeFor[person]()))
		s.Assert().Equal(marker{label: "namer"}, ss.Get(reflect.TypeFor[robot]()))
	}
}

func (s *SerializersTestSuite) TestExactBeatsInterface() {
	ss := NewSerializersBuilder().
		Register(reflect.TypeFor[namer](), marker{label: "iface"}).
		Register(reflect.TypeFor[person](), marker{label: "exact"}).
		Build()

	s.Assert().Equal(marker{label: "exact"}, ss.Get(reflect.TypeFor[person]()))
	s.Assert().Equal(marker{label: "iface"}, ss.Get(reflect.TypeFor[robot]()))
}

func (s *SerializersTestSuite) TestInterfaceBeatsPredicate() {
	ss := NewSerializersBuilder().
		RegisterFunc(kindIs(reflect.Struct), marker{label: "pred"}).
		Register(reflect.TypeFor[namer](), marker{label: "iface"}).
		Build()

	s.Assert().Equal(marker{label: "iface"}, ss.Get(reflect.TypeFor[person]()))
	s.Assert().Equal(marker{label: "pred"}, ss.Get(reflect.TypeFor[struct{}]()))
}

func (s *SerializersTestSuite) TestPredicatesInRegistrationOrder() {
	ss := NewSerializersBuilder().
		RegisterFunc(kindIs(reflect.Int), marker{label: "first"}).
		RegisterFunc(kindIs(reflect.Int, reflect.String), marker{label: "second"}).
		Build()

	s.Assert().Equal(marker{label: "first"}, ss.Get(reflect.TypeFor[int]()))
	s.Assert().Equal(marker{label: "second"}, ss.Get(reflect.TypeFor[string]()))
	s.Assert().Nil(ss.Get(reflect.TypeFor[bool]()))
}

func (s *SerializersTestSuite) TestReRegisterReplaces() {
	ss := NewSerializersBuilder().
		Register(reflect.TypeFor[person](), marker{label: "old"}).
		Register(reflect.TypeFor[person](), marker{label: "new"}).
		Build()
	s.Assert().Equal(marker{label: "new"}, ss.Get(reflect.TypeFor[person]()))
}

func (s *SerializersTestSuite) TestChildFallsBackToParent() {
	parent := NewSerializersBuilder().
		Register(reflect.TypeFor[int](), marker{label: "parent-int"}).
		Register(reflect.TypeFor[string](), marker{label: "parent-string"}).
		Build()
	child := parent.Child().
		Register(reflect.TypeFor[string](), marker{label: "child-string"}).
		Build()

	s.Assert().Same(parent, child.Parent())
	s.Assert().Equal(marker{label: "child-string"}, child.Get(reflect.TypeFor[string]()))
	s.Assert().Equal(marker{label: "parent-int"}, child.Get(reflect.TypeFor[int]()))
	s.Assert().Equal(marker{label: "parent-string"}, parent.Get(reflect.TypeFor[string]()))
	s.Assert().False(child.Has(reflect.TypeFor[bool]()))
}

func (s *SerializersTestSuite) TestRegisterAllAndGeneric() {
	base := NewSerializersBuilder().Register(reflect.TypeFor[int](), marker{label: "int"}).Build()
	b := NewSerializersBuilder().RegisterAll(base)
	Register[string](b, marker{label: "string"})
	ss := b.Build()

	s.Assert().Nil(ss.Parent())
	s.Assert().Equal(marker{label: "int"}, ss.Get(reflect.TypeFor[int]()))
	s.Assert().Equal(marker{label: "string"}, ss.Get(reflect.TypeFor[string]()))
}

func (s *SerializersTestSuite) TestBuildIsImmutable() {
	b := NewSerializersBuilder()
	ss := b.Build()
	b.Register(reflect.TypeFor[int](), marker{label: "late"})
	s.Assert().Nil(ss.Get(reflect.TypeFor[int]()))
}

func (s *SerializersTestSuite) TestDefaultsCoverBuiltins() {
	ss := DefaultSerializers()
	for _, typ := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[string](),
		reflect.TypeFor[[]byte](),
		reflect.TypeFor[time.Duration](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[url.URL](),
		reflect.TypeFor[uuid.UUID](),
		reflect.TypeFor[*regexp.Regexp](),
		reflect.TypeFor[any](),
		reflect.TypeFor[[]int](),
		reflect.TypeFor[[3]int](),
		reflect.TypeFor[map[string]int](),
		reflect.TypeFor[*int](),
		reflect.TypeFor[struct{ A int }](),
	} {
		s.Assert().True(ss.Has(typ), "missing serializer for %s", typ)
	}
	s.Assert().False(ss.Has(reflect.TypeFor[chan int]()))
}

func TestSerializersTestSuite(t *testing.T) {
	suite.Run(t, new(SerializersTestSuite))
}

type mode string

type level int8

// point writes itself as "x,y".
type point struct{ X, Y int }

func (p *point) UnmarshalNode(n *Node) error {
	x, y, ok := strings.Cut(n.String(), ",")
	if !ok {
		return errors.New("expected x,y")
	}
	var err error
	if p.X, err = strconv.Atoi(x); err != nil {
		return err
	}
	p.Y, err = strconv.Atoi(y)
	return err
}

func (p point) MarshalNode(n *Node) error {
	n.SetRaw(strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y))
	return nil
}

func TestScalarConversion(t *testing.T) {
	t.Parallel()

	root := MustNew()
	root.SetRaw(map[string]any{
		"port":     "8080",
		"small":    300,
		"fraction": 1.5,
		"whole":    2.0,
		"negative": -1,
		"mode":     "fast",
		"timeout":  "1m30s",
		"id":       "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"endpoint": "https://example.com/api",
		"pattern":  "^a+$",
		"when":     "2024-05-01T10:00:00Z",
	})

	port, err := Get[int](root.Node("port"))
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	_, err = Get[int8](root.Node("small"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Get[int](root.Node("fraction"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	whole, err := Get[int](root.Node("whole"))
	require.NoError(t, err)
	assert.Equal(t, 2, whole)

	_, err = Get[uint](root.Node("negative"))
	assert.Error(t, err)

	m, err := Get[mode](root.Node("mode"))
	require.NoError(t, err)
	assert.Equal(t, mode("fast"), m)

	lv, err := Get[level](root.Node("negative"))
	require.NoError(t, err)
	assert.Equal(t, level(-1), lv)

	d, err := Get[time.Duration](root.Node("timeout"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	id, err := Get[uuid.UUID](root.Node("id"))
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), id)

	u, err := Get[url.URL](root.Node("endpoint"))
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)

	re, err := Get[*regexp.Regexp](root.Node("pattern"))
	require.NoError(t, err)
	assert.True(t, re.MatchString("aaa"))

	when, err := Get[time.Time](root.Node("when"))
	require.NoError(t, err)
	assert.Equal(t, 2024, when.Year())

	missing, err := Get[int](root.Node("missing"))
	require.NoError(t, err)
	assert.Zero(t, missing)
}

func TestErrorCarriesPath(t *testing.T) {
	t.Parallel()

	root := MustNew()
	root.SetRaw(map[string]any{"server": map[string]any{"ports": []any{80, "http"}}})

	_, err := Get[[]int](root.Node("server", "ports"))
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "server.ports[1]", e.Path.String())
	assert.Equal(t, "deserialize", e.Operation)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNoSerializer(t *testing.T) {
	t.Parallel()

	root := MustNew(WithNativeTypes(reflect.TypeFor[string]()))
	root.Node("c").SetRaw("x")

	_, err := root.Node("c").Get(reflect.TypeFor[chan int]())
	assert.ErrorIs(t, err, ErrNoSerializer)

	err = root.Node("c").Set(nil, make(chan int))
	assert.ErrorIs(t, err, ErrNoSerializer)
}

func TestNativeTypesConvertOnWrite(t *testing.T) {
	t.Parallel()

	root := MustNew(WithNativeTypes(reflect.TypeFor[string]()))
	require.NoError(t, Set(root.Node("port"), 8080))
	assert.Equal(t, "8080", root.Node("port").Raw())

	port, err := Get[int](root.Node("port"))
	require.NoError(t, err)
	assert.Equal(t, 8080, port)
}

func TestCollectionsRoundTrip(t *testing.T) {
	t.Parallel()

	root := MustNew()

	list := []string{"a", "b"}
	require.NoError(t, Set(root.Node("list"), list))
	assert.Equal(t, []any{"a", "b"}, root.Node("list").Raw())
	gotList, err := Get[[]string](root.Node("list"))
	require.NoError(t, err)
	assert.Equal(t, list, gotList)

	arr := [3]int{4, 5, 8}
	require.NoError(t, Set(root.Node("arr"), arr))
	gotArr, err := Get[[3]int](root.Node("arr"))
	require.NoError(t, err)
	assert.Equal(t, arr, gotArr)

	_, err = Get[[2]int](root.Node("arr"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	m := map[string]int{"b": 2, "a": 1}
	require.NoError(t, Set(root.Node("map"), m))
	assert.Equal(t, []any{"a", "b"}, root.Node("map").Keys())
	gotMap, err := Get[map[string]int](root.Node("map"))
	require.NoError(t, err)
	assert.Equal(t, m, gotMap)

	intKeys := map[int]string{1: "one", 2: "two"}
	require.NoError(t, Set(root.Node("ints"), intKeys))
	gotInts, err := Get[map[int]string](root.Node("ints"))
	require.NoError(t, err)
	assert.Equal(t, intKeys, gotInts)

	n := 7
	require.NoError(t, Set(root.Node("ptr"), &n))
	gotPtr, err := Get[*int](root.Node("ptr"))
	require.NoError(t, err)
	require.NotNil(t, gotPtr)
	assert.Equal(t, 7, *gotPtr)

	require.NoError(t, Set[*int](root.Node("ptr"), nil))
	assert.False(t, root.HasChild("ptr"))

	// a scalar reads as a single-element list
	root.Node("one").SetRaw("solo")
	solo, err := Get[[]string](root.Node("one"))
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, solo)
}

func TestMapSerializeKeepsComments(t *testing.T) {
	t.Parallel()

	root := MustNew()
	require.NoError(t, Set(root, map[string]int{"a": 1, "b": 2}))
	root.Node("a").SetComment("first")

	require.NoError(t, Set(root, map[string]int{"a": 10}))
	assert.Equal(t, "first", root.Node("a").Comment())
	assert.Equal(t, map[string]any{"a": 10}, root.Raw())
}

func TestUnmarshalerSerializer(t *testing.T) {
	t.Parallel()

	root := MustNew()
	require.NoError(t, Set(root.Node("p"), point{X: 3, Y: 4}))
	assert.Equal(t, "3,4", root.Node("p").Raw())

	p, err := Get[point](root.Node("p"))
	require.NoError(t, err)
	assert.Equal(t, point{X: 3, Y: 4}, p)
}

func TestGetOr(t *testing.T) {
	t.Parallel()

	plain := MustNew()
	v, err := GetOr(plain.Node("port"), 8080)
	require.NoError(t, err)
	assert.Equal(t, 8080, v)
	assert.False(t, plain.HasChild("port"))

	copying := MustNew(WithCopyDefaults(true))
	v, err = GetOr(copying.Node("port"), 8080)
	require.NoError(t, err)
	assert.Equal(t, 8080, v)
	assert.Equal(t, 8080, copying.Node("port").Raw())

	copying.Node("host").SetRaw("example")
	host, err := GetOr(copying.Node("host"), "localhost")
	require.NoError(t, err)
	assert.Equal(t, "example", host)
}

func TestImplicitInitialization(t *testing.T) {
	t.Parallel()

	root := MustNew(WithImplicitInitialization(true))
	list, err := Get[[]string](root.Node("missing"))
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	m, err := Get[map[string]int](root.Node("missing"))
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSerializerFunc(t *testing.T) {
	t.Parallel()

	upper := SerializerFunc[string]{
		DeserializeFunc: func(_ reflect.Type, n *Node) (string, error) {
			return strings.ToUpper(n.String()), nil
		},
		SerializeFunc: func(_ reflect.Type, v string, n *Node) error {
			n.SetRaw(strings.ToLower(v))
			return nil
		},
	}
	ss := DefaultSerializers().Child().Register(reflect.TypeFor[string](), upper).Build()
	root := MustNew(WithSerializers(ss))

	require.NoError(t, Set(root.Node("name"), "MiXeD"))
	assert.Equal(t, "mixed", root.Node("name").Raw())
	got, err := Get[string](root.Node("name"))
	require.NoError(t, err)
	assert.Equal(t, "MIXED", got)

	port, err := Get[int](root.Node("name"))
	assert.Error(t, err, "parent serializers still apply")
	assert.Zero(t, port)
}
