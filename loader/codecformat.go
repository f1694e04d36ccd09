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

package loader

import (
	"errors"
	"io"
	"slices"

	"rivaas.dev/confnode"
	"rivaas.dev/confnode/codec"
)

func init() {
	RegisterFormat(MustNewCodecFormat(codec.TypeMsgPack, "", ".msgpack", ".mpk"))
	RegisterFormat(MustNewCodecFormat(codec.TypeEnvVar, "#", ".env"))
}

// CodecFormat adapts a registered [codec.Codec] to a [Format]. The document
// root is a map; node comments are not kept.
type CodecFormat struct {
	name          codec.Type
	commentPrefix string
	extensions    []string
	encoder       codec.Encoder
	decoder       codec.Decoder
}

// NewCodecFormat creates a format backed by the codec registered as name.
func NewCodecFormat(name codec.Type, commentPrefix string, extensions ...string) (*CodecFormat, error) {
	enc, encErr := codec.GetEncoder(name)
	dec, decErr := codec.GetDecoder(name)
	if err := errors.Join(encErr, decErr); err != nil {
		return nil, err
	}
	return &CodecFormat{
		name:          name,
		commentPrefix: commentPrefix,
		extensions:    extensions,
		encoder:       enc,
		decoder:       dec,
	}, nil
}

// MustNewCodecFormat is like [NewCodecFormat] but panics on error.
func MustNewCodecFormat(name codec.Type, commentPrefix string, extensions ...string) *CodecFormat {
	f, err := NewCodecFormat(name, commentPrefix, extensions...)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the codec name.
func (f *CodecFormat) Name() string { return string(f.name) }

// Extensions returns the file extensions of the format.
func (f *CodecFormat) Extensions() []string { return slices.Clone(f.extensions) }

// CommentPrefix returns the header comment marker, if any.
func (f *CodecFormat) CommentPrefix() string { return f.commentPrefix }

// Decode reads r fully and decodes it into root.
func (f *CodecFormat) Decode(r io.Reader, root *confnode.Node) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := f.decoder.Decode(data, &doc); err != nil {
		return err
	}
	root.SetRaw(doc)
	return nil
}

// Encode writes the plain value of root.
func (f *CodecFormat) Encode(w io.Writer, root *confnode.Node) error {
	doc := map[string]any{}
	if !root.IsNull() {
		m, ok := root.Raw().(map[string]any)
		if !ok {
			return errors.New(f.Name() + " document root must be a map")
		}
		doc = m
	}
	data, err := f.encoder.Encode(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
