// Copyright 2017-26 the original author or authors.
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

package packers

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// NewReader returns a reader that decompresses r, which was compressed
// with c. Closing the reader releases its resources but does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	var factory func(r io.Reader) (io.ReadCloser, error)

	switch c {
	case RAW:
		return io.NopCloser(r), nil
	case ZLIB:
		factory = zlib.NewReader
	case LZMA:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			lr, err := lzma.NewReader(r)

			return io.NopCloser(lr), err
		}
	case XZ:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			xr, err := xz.NewReader(r)

			return io.NopCloser(xr), err
		}
	case LZ4:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		}
	case ZSTD:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}

			return d.IOReadCloser(), nil
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}

	rdr, err := factory(r)
	if err != nil {
		return nil, fmt.Errorf("unpacker factory error: %w", err)
	}

	return rdr, nil
}
