package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records generated file contents verbatim.
type RawLogger interface {
	Log(path string, content []byte)
}

// rawLogger implements RawLogger with thread-safe log.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits one framed block: a timestamped header naming path and size,
// followed by the content with each line prefixed by "| ".
func (r *rawLogger) Log(path string, content []byte) {
	if r.w == nil {
		return
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s: %d bytes\n",
		time.Now().Format("2006/01/02 15:04:05"),
		path,
		len(content))
	for _, line := range bytes.SplitAfter(content, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		buf.WriteString("| ")
		buf.Write(line)
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		buf.WriteByte('\n')
	}

	r.mu.Lock()
	_, _ = r.w.Write(buf.Bytes())
	r.mu.Unlock()
}
