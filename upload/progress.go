package upload

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleProgress prints an updating one-line transfer status to a stream.
// It is safe for concurrent use: chunked uploads report from multiple
// workers and the byte counter only ever grows.
type ConsoleProgress struct {
	name string
	out  io.Writer

	mu          sync.Mutex
	transferred int64
}

// NewConsoleProgress creates a progress printer labelled with the file
// name being transferred.
func NewConsoleProgress(name string, out io.Writer) *ConsoleProgress {
	return &ConsoleProgress{name: name, out: out}
}

// Update implements ProgressTracker. bytesTransferred is a delta, added to
// the accumulated counter under the lock.
func (p *ConsoleProgress) Update(bytesTransferred, totalBytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transferred += bytesTransferred
	percentage := 0.0
	if totalBytes > 0 {
		percentage = float64(p.transferred) / float64(totalBytes) * 100
	}
	fmt.Fprintf(p.out, "\r%s  %d / %d  (%.2f%%)", p.name, p.transferred, totalBytes, percentage)
}

// Complete implements ProgressTracker.
func (p *ConsoleProgress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)
}

// Error implements ProgressTracker.
func (p *ConsoleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\rtransfer of %s failed: %v\n", p.name, err)
}

// Transferred returns the accumulated byte count.
func (p *ConsoleProgress) Transferred() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transferred
}

// progressReader wraps a reader and reports read deltas to a tracker.
type progressReader struct {
	r       io.Reader
	total   int64
	tracker ProgressTracker
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 && pr.tracker != nil {
		pr.tracker.Update(int64(n), pr.total)
	}
	return n, err
}
