package command

import (
	"sync"
	"unicode/utf8"
)

// TailBuffer is an io.Writer that keeps only the last max bytes written to it
type TailBuffer struct {
	mu      sync.Mutex
	max     int
	buf     []byte
	dropped int64
}

// NewTailBuffer creates a buffer keeping at most max bytes
func NewTailBuffer(max int) *TailBuffer {
	if max <= 0 {
		max = DefaultTailBytes
	}
	return &TailBuffer{max: max, buf: make([]byte, 0, max)}
}

// Write appends p, discarding the oldest bytes beyond the limit
func (t *TailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	if n >= t.max {
		t.dropped += int64(len(t.buf) + n - t.max)
		t.buf = append(t.buf[:0], p[n-t.max:]...)
		t.trimPartialRune()
		return n, nil
	}
	if over := len(t.buf) + n - t.max; over > 0 {
		t.dropped += int64(over)
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	t.buf = append(t.buf, p...)
	t.trimPartialRune()
	return n, nil
}

// trimPartialRune drops continuation bytes left at the head by a cut
func (t *TailBuffer) trimPartialRune() {
	i := 0
	for i < len(t.buf) && i < utf8.UTFMax && !utf8.RuneStart(t.buf[i]) {
		i++
	}
	if i == 0 || t.dropped == 0 {
		return
	}
	t.dropped += int64(i)
	t.buf = append(t.buf[:0], t.buf[i:]...)
}

// String returns the retained bytes
func (t *TailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

// Dropped returns how many bytes were discarded from the head
func (t *TailBuffer) Dropped() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}
