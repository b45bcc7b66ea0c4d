package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// cursorSequenceRegex matches ANSI cursor movement and screen control
// sequences. Ansible task progress output uses these to update in place,
// which breaks rendering inside a viewport.
var cursorSequenceRegex = regexp.MustCompile(
	`\x1b\[` + // CSI (Control Sequence Introducer)
		`(?:` +
		`\d*[ABCDEFGH]` + // Cursor movement (up/down/forward/back/next line/prev line/column/position)
		`|\d*;\d*[Hf]` + // Cursor position (row;col)
		`|[suKJ]` + // Save/restore cursor, erase line/screen
		`|\d*[KJ]` + // Erase with count
		`|\?(?:25[hl]|\d+[hl])` + // Show/hide cursor, other private modes
		`)`,
)

// StripCursorSequences removes cursor movement and line erasing sequences
// while preserving color codes, so playbook output renders cleanly in the
// output window.
func StripCursorSequences(s string) string {
	return cursorSequenceRegex.ReplaceAllString(s, "")
}

// FitToWidth truncates or pads a string to exactly the given visual width.
// Truncation is ANSI-aware so color codes survive.
func FitToWidth(s string, width int) string {
	currentWidth := lipgloss.Width(s)

	if currentWidth > width {
		return ansi.Truncate(s, width, "")
	}

	if currentWidth < width {
		return s + strings.Repeat(" ", width-currentWidth)
	}

	return s
}

// FitCellContent fits a string into a table cell of the given width,
// truncating with an ellipsis when it is too long and padding with spaces
// when it is too short. Color codes survive either way.
func FitCellContent(s string, width int) string {
	if width <= 0 {
		return ""
	}

	currentWidth := lipgloss.Width(s)

	if currentWidth > width {
		if width <= 1 {
			return "…"
		}
		return ansi.Truncate(s, width-1, "") + "…"
	}

	if currentWidth < width {
		return s + strings.Repeat(" ", width-currentWidth)
	}

	return s
}
