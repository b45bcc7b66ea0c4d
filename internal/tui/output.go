package tui

import (
	"strings"
	"sync"

	"github.com/awxmon/awxmon/internal/api"
)

// lineBuffer collects rendered output lines for the viewport. It implements
// the render side of the output window: appends and prepends report how many
// lines they added so the pager's bookkeeping stays in sync, and pop/shift
// remove exactly the counts the pager reports back.
type lineBuffer struct {
	mu    sync.Mutex
	lines []string
}

func eventLines(events []api.JobEvent) []string {
	var out []string
	for _, ev := range events {
		if ev.Stdout == "" {
			continue
		}
		text := StripCursorSequences(ev.Stdout)
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			out = append(out, line)
		}
	}
	return out
}

func (b *lineBuffer) Append(events []api.JobEvent) (int, error) {
	lines := eventLines(events)
	b.mu.Lock()
	b.lines = append(b.lines, lines...)
	b.mu.Unlock()
	return len(lines), nil
}

func (b *lineBuffer) Prepend(events []api.JobEvent) (int, error) {
	lines := eventLines(events)
	b.mu.Lock()
	b.lines = append(lines, b.lines...)
	b.mu.Unlock()
	return len(lines), nil
}

func (b *lineBuffer) Pop(lines int) error {
	b.mu.Lock()
	if lines > len(b.lines) {
		lines = len(b.lines)
	}
	b.lines = b.lines[:len(b.lines)-lines]
	b.mu.Unlock()
	return nil
}

func (b *lineBuffer) Shift(lines int) error {
	b.mu.Lock()
	if lines > len(b.lines) {
		lines = len(b.lines)
	}
	b.lines = b.lines[lines:]
	b.mu.Unlock()
	return nil
}

func (b *lineBuffer) Clear() error {
	b.mu.Lock()
	b.lines = nil
	b.mu.Unlock()
	return nil
}

func (b *lineBuffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

func (b *lineBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// bufferScroller tracks the logical viewport position over a lineBuffer. The
// controller navigates against this; Update copies the resulting position
// into the bubbletea viewport after each operation.
type bufferScroller struct {
	mu     sync.Mutex
	buf    *lineBuffer
	pos    int
	paused bool
}

func (s *bufferScroller) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *bufferScroller) SetPosition(pos int) {
	s.mu.Lock()
	s.pos = pos
	s.mu.Unlock()
}

func (s *bufferScroller) ScrollHeight() int {
	return s.buf.Len()
}

func (s *bufferScroller) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *bufferScroller) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// tailState is the live-stream collaborator: active while the watched job is
// still producing output, toggled by the end-of-output key.
type tailState struct {
	mu     sync.Mutex
	active bool
	paused bool
}

func (t *tailState) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *tailState) TogglePause() {
	t.mu.Lock()
	t.paused = !t.paused
	t.mu.Unlock()
}

func (t *tailState) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *tailState) setActive(active bool) {
	t.mu.Lock()
	t.active = active
	t.mu.Unlock()
}
