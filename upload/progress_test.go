package upload

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleProgressAccumulates(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewConsoleProgress("report.txt", out)

	p.Update(100, 400)
	p.Update(300, 400)
	p.Complete()

	assert.Equal(t, int64(400), p.Transferred())
	assert.Contains(t, out.String(), "400 / 400")
	assert.Contains(t, out.String(), "100.00%")
}

func TestConsoleProgressConcurrent(t *testing.T) {
	p := NewConsoleProgress("big.bin", &lockedBuffer{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Update(10, 500)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(500), p.Transferred())
}

func TestConsoleProgressError(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewConsoleProgress("report.txt", out)

	p.Update(100, 400)
	p.Error(assert.AnError)

	assert.Contains(t, out.String(), "failed")
}

func TestProgressReaderReportsDeltas(t *testing.T) {
	data := strings.Repeat("x", 1000)
	p := NewConsoleProgress("stream", &bytes.Buffer{})
	pr := &progressReader{r: strings.NewReader(data), total: 1000, tracker: p}

	buf := make([]byte, 128)
	total := 0
	for {
		n, err := pr.Read(buf)
		total += n
		if err != nil {
			break
		}
	}

	require.Equal(t, 1000, total)
	assert.Equal(t, int64(1000), p.Transferred())
}

// lockedBuffer is a minimal concurrency-safe writer for progress tests.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
