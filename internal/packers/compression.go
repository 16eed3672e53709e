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

// Package packers compresses written changeset documents and decompresses
// them when they are read back.
package packers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownCompression is returned for compression names and values that
// are not supported.
var ErrUnknownCompression = errors.New("unknown compression type")

// Compression is the algorithm a document is compressed with.
type Compression int

const (
	RAW Compression = iota
	ZLIB
	LZMA
	XZ
	LZ4
	ZSTD
)

var compressionNames = [...]string{
	RAW:  "raw",
	ZLIB: "zlib",
	LZMA: "lzma",
	XZ:   "xz",
	LZ4:  "lz4",
	ZSTD: "zstd",
}

var compressionExtensions = [...]string{
	RAW:  "",
	ZLIB: ".zz",
	LZMA: ".lzma",
	XZ:   ".xz",
	LZ4:  ".lz4",
	ZSTD: ".zst",
}

func (c Compression) valid() bool {
	return c >= 0 && int(c) < len(compressionNames)
}

func (c Compression) String() string {
	if !c.valid() {
		return fmt.Sprintf("Compression(%d)", int(c))
	}

	return compressionNames[c]
}

// Extension returns the suffix appended to the name of files compressed
// with c. RAW files keep their name.
func (c Compression) Extension() string {
	if !c.valid() {
		return ""
	}

	return compressionExtensions[c]
}

// ParseCompression converts a compression name, as returned by String,
// into a Compression.
func ParseCompression(s string) (Compression, error) {
	for c, name := range compressionNames {
		if strings.EqualFold(name, s) {
			return Compression(c), nil
		}
	}

	return RAW, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
}

// ForFilename returns the compression implied by the extension of name.
// Names without a known extension are RAW.
func ForFilename(name string) Compression {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return RAW
	}

	for c, e := range compressionExtensions {
		if e == ext {
			return Compression(c)
		}
	}

	return RAW
}
