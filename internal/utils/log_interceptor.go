// Package utils provides small shared helpers for the watchdeck binaries.
package utils

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogInterceptor is an io.Writer that prefixes every line with a sequence
// number and a timestamp before forwarding it to the target writer. The
// sequence number keeps ordering recoverable when bursts of log lines share
// the same second.
type LogInterceptor struct {
	target io.Writer
	seq    atomic.Uint64

	mu  sync.Mutex
	buf bytes.Buffer
}

func NewLogInterceptor(target io.Writer) *LogInterceptor {
	return &LogInterceptor{target: target}
}

// Write buffers the input and forwards complete lines. A partial trailing
// line is held back until the rest of it arrives or Close flushes it.
func (i *LogInterceptor) Write(p []byte) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.buf.Write(p)
	for {
		line, err := i.buf.ReadString('\n')
		if err != nil {
			// no newline yet, put the partial line back
			i.buf.WriteString(line)
			return len(p), nil
		}
		if err := i.writeLine(strings.TrimRight(line, "\r\n")); err != nil {
			return len(p), err
		}
	}
}

// Close flushes any buffered partial line to the target writer.
func (i *LogInterceptor) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.buf.Len() == 0 {
		return nil
	}
	line := strings.TrimRight(i.buf.String(), "\r\n")
	i.buf.Reset()
	return i.writeLine(line)
}

func (i *LogInterceptor) writeLine(line string) error {
	prefix := fmt.Sprintf("line=%d time=%s ", i.seq.Add(1), time.Now().Format(time.RFC3339))
	_, err := io.WriteString(i.target, prefix+line+"\n")
	return err
}
