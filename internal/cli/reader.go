package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a read is abandoned because its context ended.
var ErrInputCancelled = errors.New("input canceled")

type inputLine struct {
	err  error
	text string
}

// LineReader reads reviewer answers one line at a time. A single goroutine pumps
// lines from the source, so a read abandoned by cancellation never loses the answer
// that arrives after it; the next ReadLine receives it.
type LineReader struct {
	src   *bufio.Reader
	lines chan inputLine
	once  sync.Once
}

// NewLineReader wraps r. Nothing is read until the first ReadLine.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{
		src:   bufio.NewReader(r),
		lines: make(chan inputLine, 1),
	}
}

func (r *LineReader) pump() {
	defer close(r.lines)
	for {
		text, err := r.src.ReadString('\n')
		if text != "" {
			r.lines <- inputLine{text: text}
		}
		if err != nil {
			r.lines <- inputLine{err: err}
			return
		}
	}
}

// ReadLine returns the next line with surrounding whitespace removed.
// A final line without a newline is returned before io.EOF.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.once.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case l, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}
