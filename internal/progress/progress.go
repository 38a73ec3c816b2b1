package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Counter renders a single status line for a scan whose total is not
// known in advance.
type Counter struct {
	writer     io.Writer
	mu         sync.Mutex
	enabled    bool
	interval   time.Duration
	lastUpdate time.Time
	drawn      bool

	files   int
	hashed  int
	skipped int
	dir     string
}

func New(w io.Writer, enabled bool) *Counter {
	return &Counter{
		writer:   w,
		enabled:  enabled,
		interval: 100 * time.Millisecond,
	}
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Update records the running totals after one file was processed.
func (c *Counter) Update(path string, files, hashed, skipped int) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.files = files
	c.hashed = hashed
	c.skipped = skipped
	c.dir = filepath.Base(filepath.Dir(path))

	// Update at most every interval to reduce flickering
	now := time.Now()
	if now.Sub(c.lastUpdate) > c.interval {
		c.lastUpdate = now
		c.render()
	}
}

// render must be called with mu already locked
func (c *Counter) render() {
	line := fmt.Sprintf("%d files, %d hashed", c.files, c.hashed)
	if c.skipped > 0 {
		line += fmt.Sprintf(", %d skipped", c.skipped)
	}
	if c.dir != "" {
		line += " | " + c.dir
	}

	// Clear the line and write progress
	fmt.Fprintf(c.writer, "\r\033[K%s", line)
	c.drawn = true
}

// Finish clears the status line.
func (c *Counter) Finish() {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprint(c.writer, "\r\033[K")
	c.drawn = false
}

// LogWriter wraps w, which shares the terminal with the status line, so
// that the line is cleared before each write. The next Update redraws it.
func (c *Counter) LogWriter(w io.Writer) io.Writer {
	if !c.enabled {
		return w
	}
	return &clearingWriter{counter: c, out: w}
}

type clearingWriter struct {
	counter *Counter
	out     io.Writer
}

func (w *clearingWriter) Write(p []byte) (int, error) {
	c := w.counter
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drawn {
		fmt.Fprint(c.writer, "\r\033[K")
		c.drawn = false
		c.lastUpdate = time.Time{}
	}
	return w.out.Write(p)
}
