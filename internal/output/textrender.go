package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/awxmon/awxmon/internal/api"
)

// WriterRenderer streams event stdout to a writer. It is the renderer behind
// the CLI follow path, where output scrolls in the terminal and nothing is
// ever taken back: Pop, Shift and Clear are no-ops, and Prepend is not
// meaningful for an append-only sink.
type WriterRenderer struct {
	w io.Writer
}

// NewWriterRenderer creates a renderer writing to w.
func NewWriterRenderer(w io.Writer) *WriterRenderer {
	return &WriterRenderer{w: w}
}

// Append writes the events' stdout and returns the number of lines written.
func (r *WriterRenderer) Append(events []api.JobEvent) (int, error) {
	lines := 0
	for _, ev := range events {
		if ev.Stdout == "" {
			continue
		}
		out := ev.Stdout
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		if _, err := io.WriteString(r.w, out); err != nil {
			return lines, err
		}
		lines += strings.Count(out, "\n")
	}
	return lines, nil
}

// Prepend is not supported on an append-only sink.
func (r *WriterRenderer) Prepend(events []api.JobEvent) (int, error) {
	return 0, fmt.Errorf("cannot prepend to streamed output")
}

// Pop is a no-op; written output cannot be removed.
func (r *WriterRenderer) Pop(lines int) error { return nil }

// Shift is a no-op; written output cannot be removed.
func (r *WriterRenderer) Shift(lines int) error { return nil }

// Clear is a no-op.
func (r *WriterRenderer) Clear() error { return nil }

// NopScroller satisfies Scroller for sinks without a viewport.
type NopScroller struct{}

func (NopScroller) Position() int     { return 0 }
func (NopScroller) SetPosition(int)   {}
func (NopScroller) ScrollHeight() int { return 0 }
func (NopScroller) Pause()            {}
func (NopScroller) Resume()           {}
