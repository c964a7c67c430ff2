package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels an in-progress review when the operator presses
// Ctrl-C or the process receives SIGTERM. The note is printed once, after the
// warning, to tell the operator what happened to the batch.
type InterruptHandler struct {
	out    io.Writer
	note   string
	cancel context.CancelFunc
	mu     sync.Mutex
	fired  bool
}

// NewInterruptHandler reports interrupts on out, or stderr when out is nil.
func NewInterruptHandler(out io.Writer, note string) *InterruptHandler {
	if out == nil {
		out = os.Stderr
	}
	return &InterruptHandler{out: out, note: note}
}

// Watch derives a context that ends on the first interrupt. Call the returned
// stop function once the guarded work is over to release the signal handler.
func (h *InterruptHandler) Watch(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-signals:
			h.Interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
		<-done
	}
}

// Interrupt behaves as if a signal had arrived.
func (h *InterruptHandler) Interrupt() {
	h.mu.Lock()
	first := !h.fired
	h.fired = true
	cancel := h.cancel
	h.mu.Unlock()

	if first {
		msg := "\n\n" + FormatWarning("Review interrupted!") + "\n"
		if h.note != "" {
			msg += FormatInfo(h.note) + "\n"
		}
		_, _ = fmt.Fprint(h.out, msg)
	}
	if cancel != nil {
		cancel()
	}
}

// Interrupted reports whether an interrupt has been received.
func (h *InterruptHandler) Interrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fired
}
