package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInterruptHandler_Watch(t *testing.T) {
	tests := []struct {
		name    string
		note    string
		want    []string
		notWant []string
	}{
		{
			name: "with note",
			note: "Batch b-1 discarded; nothing was paid.",
			want: []string{"Review interrupted!", "Batch b-1 discarded"},
		},
		{
			name:    "without note",
			want:    []string{"Review interrupted!"},
			notWant: []string{"discarded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &lockedBuffer{}
			h := NewInterruptHandler(out, tt.note)

			ctx, stop := h.Watch(context.Background())
			defer stop()
			require.NoError(t, ctx.Err())

			h.Interrupt()
			<-ctx.Done()

			assert.True(t, h.Interrupted())
			for _, s := range tt.want {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}

func TestInterruptHandler_StopIsQuiet(t *testing.T) {
	out := &lockedBuffer{}
	h := NewInterruptHandler(out, "note")

	ctx, stop := h.Watch(context.Background())
	stop()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, h.Interrupted())
	assert.Empty(t, out.String())
}

func TestInterruptHandler_WarnsOnce(t *testing.T) {
	out := &lockedBuffer{}
	h := NewInterruptHandler(out, "")
	_, stop := h.Watch(context.Background())
	defer stop()

	h.Interrupt()
	h.Interrupt()

	assert.Equal(t, 1, strings.Count(out.String(), "interrupted"))
}

func TestNewInterruptHandler_DefaultsToStderr(t *testing.T) {
	h := NewInterruptHandler(nil, "")
	assert.NotNil(t, h.out)
	assert.False(t, h.Interrupted())
}
