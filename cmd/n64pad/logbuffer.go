package main

import "sync"

// logBuffer keeps the last size log lines for the log view.
type logBuffer struct {
	mutex sync.Mutex
	lines [][]byte
	next  int
	full  bool
}

func newLogBuffer(size int) *logBuffer {
	if size < 1 {
		size = 1
	}
	return &logBuffer{lines: make([][]byte, size)}
}

func (b *logBuffer) WriteMessage(msg []byte) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.lines[b.next] = msg
	b.next++
	if b.next == len(b.lines) {
		b.next = 0
		b.full = true
	}
}

// ReadLastMessages returns up to n newest lines, oldest first.
func (b *logBuffer) ReadLastMessages(n int) [][]byte {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	count := b.next
	if b.full {
		count = len(b.lines)
	}
	if n > count {
		n = count
	}
	if n <= 0 {
		return [][]byte{}
	}

	out := make([][]byte, 0, n)
	start := b.next - n
	if start < 0 {
		start += len(b.lines)
	}
	for i := 0; i < n; i++ {
		out = append(out, b.lines[(start+i)%len(b.lines)])
	}
	return out
}
