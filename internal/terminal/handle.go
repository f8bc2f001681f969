package terminal

import (
	"io"
	"sync"
)

// Handle is the writable sink over one SSH channel. Render writes
// accumulate in the sink and Flush sends them as a single data frame,
// keeping one redraw in one SSH packet where possible.
type Handle struct {
	mu     sync.Mutex
	ch     io.WriteCloser
	sink   []byte
	closed bool
}

// NewHandle wraps a channel writer, normally an ssh.Channel.
func NewHandle(ch io.WriteCloser) *Handle {
	return &Handle{ch: ch}
}

// Write buffers data in the sink. It never touches the transport.
func (h *Handle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink = append(h.sink, p...)
	return len(p), nil
}

// Flush pushes the accumulated sink to the channel in one write. On a
// closed handle the pending data is silently dropped.
func (h *Handle) Flush() error {
	h.mu.Lock()
	data := h.sink
	h.sink = nil
	closed := h.closed
	h.mu.Unlock()

	if closed || len(data) == 0 {
		return nil
	}
	_, err := h.ch.Write(data)
	return err
}

// Close closes the underlying channel. Further flushes become no-ops.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()
	return h.ch.Close()
}

// Closed reports whether Close was called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
