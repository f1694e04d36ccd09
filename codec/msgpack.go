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

package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// TypeMsgPack identifies the MessagePack codec.
const TypeMsgPack Type = "msgpack"

func init() {
	Register(TypeMsgPack, MsgPackCodec{})
}

// MsgPackCodec encodes and decodes MessagePack with vmihailenco/msgpack.
// Maps are decoded as map[string]any and map keys are written sorted.
type MsgPackCodec struct{}

// Encode returns the MessagePack encoding of v.
func (MsgPackCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses MessagePack data into v. Truncated or invalid input wraps
// [confnode.ErrMalformed].
func (MsgPackCodec) Decode(data []byte, v any) error {
	return malformed(TypeMsgPack, msgpack.Unmarshal(data, v))
}
