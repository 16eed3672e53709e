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

type nopCloserWriter struct {
	io.Writer
}

func (w nopCloserWriter) Close() error {
	return nil
}

// NewWriter returns a writer that compresses what is written to it with c
// and writes the result to w. Close must be called to flush the compressed
// stream; it does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case RAW:
		return nopCloserWriter{w}, nil
	case ZLIB:
		return zlib.NewWriter(w), nil
	case LZMA:
		return lzma.NewWriter(w)
	case XZ:
		return xz.NewWriter(w)
	case LZ4:
		return lz4.NewWriter(w), nil
	case ZSTD:
		return zstd.NewWriter(w)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}
}
