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

package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// progressBar shows the number of backfilled changes of a changeset. The
// bar is started on the first update, once the total is known.
type progressBar struct {
	mu  sync.Mutex
	bar *pb.ProgressBar
}

// Update implements changesets.ProgressFunc.
func (p *progressBar) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = pb.New(total).SetWidth(79)
		p.bar.Output = os.Stderr
		p.bar.ShowSpeed = true
		p.bar.Start()
	}

	p.bar.Set(done)
}

// Close clears the terminal line of progress output.
func (p *progressBar) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}

	finish(p.bar)
}

// readerBar is an instance of ReadCloser with an associated ProgressBar.
// Closing this instance closes the delegate as well as clearing the terminal
// line of progress output.
type readerBar struct {
	r   io.ReadCloser
	bar *pb.ProgressBar
}

// WrapInputFile creates an instance of io.ReadCloser over f with an
// associated ProgressBar that tracks the bytes read relative to the total.
// Without a terminal to draw on, f is returned as is.
func WrapInputFile(f *os.File) (io.ReadCloser, error) {
	if f == os.Stdin || !isatty.IsTerminal(os.Stderr.Fd()) {
		return f, nil
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	total := int(fi.Size())

	bar := pb.New(total).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	return readerBar{
		r:   bar.NewProxyReader(f),
		bar: bar,
	}, nil
}

// Read implements io.Reader.Read by simple delegation.
func (rb readerBar) Read(p []byte) (int, error) {
	return rb.r.Read(p)
}

// Close implements io.Closer.Close by closing the delegate instance of
// ReadCloser as well as clearing the terminal line of progress output.
func (rb readerBar) Close() error {
	finish(rb.bar)

	return rb.r.Close()
}

func finish(bar *pb.ProgressBar) {
	// make sure newline is not printed by Finish()
	bar.Output = nil
	bar.NotPrint = true

	bar.Finish()

	fmt.Fprintf(os.Stderr, "\033[2K\r") // clear status bar
}
