package tui

// ScrollState tracks cursor position and scroll offset for the job list.
// Navigation keeps the cursor inside the visible window; reconciliation
// updates call ShiftForInsertAt and ClampToCount so the selection stays on
// the same job while rows are inserted and removed underneath it.
type ScrollState struct {
	Cursor      int // selected item index
	Offset      int // first visible item index
	VisibleRows int // rows in the window, set on resize
}

// Up moves the cursor up one row. Returns true if the cursor moved.
func (s *ScrollState) Up() bool {
	if s.Cursor <= 0 {
		return false
	}
	s.Cursor--
	if s.Cursor < s.Offset {
		s.Offset = s.Cursor
	}
	return true
}

// Down moves the cursor down one row. Returns true if the cursor moved.
func (s *ScrollState) Down(itemCount int) bool {
	if s.Cursor >= itemCount-1 {
		return false
	}
	s.Cursor++
	if s.VisibleRows > 0 && s.Cursor >= s.Offset+s.VisibleRows {
		s.Offset = s.Cursor - s.VisibleRows + 1
	}
	return true
}

// First moves the cursor to the first item.
func (s *ScrollState) First() {
	s.Cursor = 0
	s.Offset = 0
}

// Last moves the cursor to the last item, scrolling it into view.
func (s *ScrollState) Last(itemCount int) {
	if itemCount <= 0 {
		return
	}
	s.Cursor = itemCount - 1
	if s.VisibleRows > 0 && s.Cursor >= s.VisibleRows {
		s.Offset = s.Cursor - s.VisibleRows + 1
	} else {
		s.Offset = 0
	}
}

// VisibleRange returns the start (inclusive) and end (exclusive) indices of
// the items to render.
func (s *ScrollState) VisibleRange(itemCount int) (start, end int) {
	start = s.Offset
	end = s.Offset + s.VisibleRows
	if end > itemCount {
		end = itemCount
	}
	if start > end {
		start = end
	}
	return start, end
}

// ShiftForInsertAt keeps the selection on the same item when a new item is
// inserted at index. Inserts at or above the cursor push cursor and offset
// down together, so the selected row also keeps its screen position.
func (s *ScrollState) ShiftForInsertAt(index int) {
	if index > s.Cursor {
		return
	}
	s.Cursor++
	s.Offset++
}

// ClampToCount makes cursor and offset valid for the given item count. Call
// after items are added or removed externally.
func (s *ScrollState) ClampToCount(itemCount int) {
	if s.Cursor >= itemCount {
		s.Cursor = itemCount - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
	if s.Offset > s.Cursor {
		s.Offset = s.Cursor
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
}

// Reset moves cursor and offset back to the top. VisibleRows is kept.
func (s *ScrollState) Reset() {
	s.Cursor = 0
	s.Offset = 0
}

// SetCursorTo moves the cursor to index, scrolling it into view.
func (s *ScrollState) SetCursorTo(index int) {
	s.Cursor = index
	if s.Cursor < s.Offset {
		s.Offset = s.Cursor
	}
	if s.VisibleRows > 0 && s.Cursor >= s.Offset+s.VisibleRows {
		s.Offset = s.Cursor - s.VisibleRows + 1
	}
}
