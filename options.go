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

package confnode

import (
	"errors"
	"log/slog"
	"reflect"
)

// Option is a functional option used to configure the [Options] of a node tree.
type Option func(o *Options) error

// Options holds the settings shared by every node of a tree.
// Options are immutable once a tree has been created; derive a new value
// with [Options.With] instead of modifying one in place.
type Options struct {
	serializers  *Serializers
	header       string
	nativeTypes  map[reflect.Type]struct{}
	copyDefaults bool
	implicitInit bool
	logger       *slog.Logger
}

// defaultOptions returns the options used when none are given.
func defaultOptions() *Options {
	return &Options{
		serializers: DefaultSerializers(),
		logger:      slog.New(slog.DiscardHandler),
	}
}

// NewOptions builds an [Options] value from the provided functional options.
// Errors returned by individual options are joined and returned together
// with the partially configured value.
func NewOptions(opts ...Option) (*Options, error) {
	o := defaultOptions()
	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return o, errs
}

// With returns a copy of o with the additional options applied.
func (o *Options) With(opts ...Option) (*Options, error) {
	cp := *o
	if o.nativeTypes != nil {
		cp.nativeTypes = make(map[reflect.Type]struct{}, len(o.nativeTypes))
		for t := range o.nativeTypes {
			cp.nativeTypes[t] = struct{}{}
		}
	}
	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cp); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return &cp, errs
}

// WithSerializers sets the serializer collection used by Get and Set.
func WithSerializers(s *Serializers) Option {
	return func(o *Options) error {
		if s == nil {
			return errors.New("serializers cannot be nil")
		}
		o.serializers = s
		return nil
	}
}

// WithHeader sets the header written by loaders above the document body.
func WithHeader(header string) Option {
	return func(o *Options) error {
		o.header = header
		return nil
	}
}

// WithNativeTypes restricts the scalar types a format can store directly.
// Values of other types are converted through their serializer before they
// are stored. Without this option every type is accepted.
func WithNativeTypes(types ...reflect.Type) Option {
	return func(o *Options) error {
		o.nativeTypes = make(map[reflect.Type]struct{}, len(types))
		for _, t := range types {
			if t == nil {
				return errors.New("native type cannot be nil")
			}
			o.nativeTypes[t] = struct{}{}
		}
		return nil
	}
}

// WithCopyDefaults makes GetOr and the object mapper write default values
// back into absent nodes.
func WithCopyDefaults(enabled bool) Option {
	return func(o *Options) error {
		o.copyDefaults = enabled
		return nil
	}
}

// WithImplicitInitialization makes Get return an empty value (an empty
// slice, map or struct) instead of nil when a node is absent.
func WithImplicitInitialization(enabled bool) Option {
	return func(o *Options) error {
		o.implicitInit = enabled
		return nil
	}
}

// WithLogger sets the logger used to report non-fatal conditions.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

// Serializers returns the serializer collection.
func (o *Options) Serializers() *Serializers {
	return o.serializers
}

// Header returns the document header.
func (o *Options) Header() string {
	return o.header
}

// CopyDefaults reports whether defaults are written back into absent nodes.
func (o *Options) CopyDefaults() bool {
	return o.copyDefaults
}

// ImplicitInitialization reports whether absent nodes yield empty values.
func (o *Options) ImplicitInitialization() bool {
	return o.implicitInit
}

// Logger returns the configured logger.
func (o *Options) Logger() *slog.Logger {
	return o.logger
}

// AcceptsType reports whether values of typ may be stored in a node as-is.
func (o *Options) AcceptsType(typ reflect.Type) bool {
	if o.nativeTypes == nil {
		return true
	}
	_, ok := o.nativeTypes[typ]
	return ok
}
