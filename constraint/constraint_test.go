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

package constraint

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type sample struct {
	Host  string `required:""`
	Opt   string `required:"false"`
	Name  string `matches:"[a-z]+"`
	Key   string `matches:"[a-z]+" matches-message:"name.invalid"`
	Port  int    `validate:"min=1,max=65535"`
	Plain string
}

func dataFor(t *testing.T, field string) Data {
	t.Helper()
	sf, ok := reflect.TypeFor[sample]().FieldByName(field)
	require.True(t, ok)
	return Data{Field: sf.Name, Type: sf.Type, Tag: sf.Tag}
}

type RegistryTestSuite struct {
	suite.Suite
	registry *Registry
}

func (s *RegistryTestSuite) SetupTest() {
	s.registry = Default()
}

func (s *RegistryTestSuite) TestDefaultTags() {
	s.Assert().Equal([]string{"required", "matches", "validate"}, s.registry.Tags())
}

func (s *RegistryTestSuite) TestRequired() {
	cs, err := s.registry.For(dataFor(s.T(), "Host"))
	s.Require().NoError(err)
	s.Require().Len(cs, 1)

	err = cs[0].Validate(nil)
	var v *Violation
	s.Require().ErrorAs(err, &v)
	s.Assert().Equal(CodeRequired, v.Code)
	s.Assert().Equal(RequiredMessage, v.Message)

	s.Assert().NoError(cs[0].Validate("localhost"))
}

func (s *RegistryTestSuite) TestRequiredDisabled() {
	cs, err := s.registry.For(dataFor(s.T(), "Opt"))
	s.Require().NoError(err)
	s.Assert().Empty(cs)
}

func (s *RegistryTestSuite) TestNoTags() {
	cs, err := s.registry.For(dataFor(s.T(), "Plain"))
	s.Require().NoError(err)
	s.Assert().Empty(cs)
}

func (s *RegistryTestSuite) TestValidateTag() {
	cs, err := s.registry.For(dataFor(s.T(), "Port"))
	s.Require().NoError(err)
	s.Require().Len(cs, 1)

	s.Assert().NoError(cs[0].Validate(8080))
	s.Assert().NoError(cs[0].Validate(nil))

	err = cs[0].Validate(0)
	var v *Violation
	s.Require().ErrorAs(err, &v)
	s.Assert().Equal(CodeValidate, v.Code)
	s.Assert().Equal("must be at least 1", v.Message)
}

func (s *RegistryTestSuite) TestInvalidPatternFails() {
	type bad struct {
		Name string `matches:"[a-"`
	}
	sf, _ := reflect.TypeFor[bad]().FieldByName("Name")
	_, err := s.registry.For(Data{Field: sf.Name, Type: sf.Type, Tag: sf.Tag})
	s.Assert().ErrorContains(err, `constraint "matches"`)
}

func (s *RegistryTestSuite) TestRegisterReplaces() {
	called := false
	s.registry.Register("required", FactoryFunc(func(Data) (Constraint, error) {
		called = true
		return nil, nil
	}))
	_, err := s.registry.For(dataFor(s.T(), "Host"))
	s.Require().NoError(err)
	s.Assert().True(called)
	s.Assert().Equal([]string{"required", "matches", "validate"}, s.registry.Tags())
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func TestPattern(t *testing.T) {
	t.Parallel()

	c, err := Pattern().Make(Data{Value: "[a-z]+"})
	require.NoError(t, err)

	assert.NoError(t, c.Validate("hello"))
	assert.NoError(t, c.Validate(nil))

	// full match only
	err = c.Validate("hello world")
	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, CodePattern, v.Code)
	assert.Equal(t, `Value "hello world" does not match pattern "[a-z]+"`, v.Message)
	assert.Equal(t, "hello world", v.Value)
}

func TestPatternNonString(t *testing.T) {
	t.Parallel()

	c, err := Pattern().Make(Data{Value: `\d{2}`})
	require.NoError(t, err)
	assert.NoError(t, c.Validate(42))
	assert.Error(t, c.Validate(420))
}

func TestPatternCustomMessage(t *testing.T) {
	t.Parallel()

	type tagged struct {
		Name string `matches:"[a-z]+" matches-message:"{0} is not lower case"`
	}
	sf, _ := reflect.TypeFor[tagged]().FieldByName("Name")
	c, err := Pattern().Make(Data{Value: "[a-z]+", Tag: sf.Tag})
	require.NoError(t, err)
	assert.EqualError(t, c.Validate("ABC"), "ABC is not lower case")
}

func TestLocalizedPattern(t *testing.T) {
	t.Parallel()

	bundle, err := NewBundle(en.New(), map[string]string{
		"name.invalid": "{0} is not a valid name",
	})
	require.NoError(t, err)

	d := dataFor(t, "Key")
	d.Value = d.Tag.Get("matches")
	c, err := LocalizedPattern(bundle).Make(d)
	require.NoError(t, err)
	assert.NoError(t, c.Validate("ok"))
	assert.EqualError(t, c.Validate("NOPE"), "NOPE is not a valid name")
}

func TestLocalizedPatternSharesDefaultTemplate(t *testing.T) {
	t.Parallel()

	bundle, err := NewBundle(en.New(), nil)
	require.NoError(t, err)

	plain, err := Pattern().Make(Data{Value: "[a-z]+"})
	require.NoError(t, err)
	localized, err := LocalizedPattern(bundle).Make(Data{Value: "[a-z]+"})
	require.NoError(t, err)

	pErr := plain.Validate("A1")
	lErr := localized.Validate("A1")
	require.Error(t, pErr)
	require.Error(t, lErr)
	assert.Equal(t, pErr.Error(), lErr.Error())
	assert.Equal(t, `Value "A1" does not match pattern "[a-z]+"`, lErr.Error())
}

func TestBundleFormat(t *testing.T) {
	t.Parallel()

	b, err := NewBundle(en.New(), map[string]string{
		"greeting": "hello {0}, meet {1}",
	})
	require.NoError(t, err)
	assert.Equal(t, "en", b.Locale())

	assert.Equal(t, "hello a, meet b", b.Format("greeting", "a", "b"))
	assert.Equal(t, "hello a, meet ", b.Format("greeting", "a"))
	assert.Equal(t, "unknown key", b.Format("unknown key"))
	assert.Equal(t, "broken {", b.Format("broken {"))
	assert.NoError(t, b.Check("greeting"))
	assert.Error(t, b.Check("broken {"))
	assert.NotNil(t, b.Translator())
}

func TestBundleReordersAndRepeatsPlaceholders(t *testing.T) {
	t.Parallel()

	b, err := NewBundle(en.New(), map[string]string{
		"reorder": "pattern {1} rejects {0}",
		"repeat":  "{0} is bad, fix {0}",
	})
	require.NoError(t, err)

	assert.Equal(t, "pattern [a-z]+ rejects ABC", b.Format("reorder", "ABC", "[a-z]+"))
	assert.Equal(t, "x is bad, fix x", b.Format("repeat", "x"))
	assert.Equal(t, "b then a", b.Format("{1} then {0}", "a", "b"))
}

func TestPatternMessageOrder(t *testing.T) {
	t.Parallel()

	type tagged struct {
		Name string `matches:"[a-z]+" matches-message:"pattern {1} rejects {0}, fix {0}"`
	}
	sf, _ := reflect.TypeFor[tagged]().FieldByName("Name")
	c, err := Pattern().Make(Data{Value: "[a-z]+", Tag: sf.Tag})
	require.NoError(t, err)
	assert.EqualError(t, c.Validate("ABC"), "pattern [a-z]+ rejects ABC, fix ABC")
}

func TestPatternRejectsBadMessage(t *testing.T) {
	t.Parallel()

	type tagged struct {
		Name string `matches:"[a-z]+" matches-message:"bad {value"`
	}
	sf, _ := reflect.TypeFor[tagged]().FieldByName("Name")
	_, err := Pattern().Make(Data{Value: "[a-z]+", Tag: sf.Tag})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid matches-message")
}

func TestNewBundleRejectsBadTemplates(t *testing.T) {
	t.Parallel()

	_, err := NewBundle(en.New(), map[string]string{
		"name":    "{name} is bad",
		"bracket": "missing {0",
		"closing": "stray } here",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, `message "name"`)
	assert.ErrorContains(t, err, `message "bracket"`)
	assert.ErrorContains(t, err, `message "closing"`)

	_, err = NewBundle(nil, nil)
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var c Constraint = Func(func(any) error { return boom })
	assert.ErrorIs(t, c.Validate(1), boom)
}
