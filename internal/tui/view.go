package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/awxmon/awxmon/internal/api"
	"github.com/awxmon/awxmon/internal/version"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder

	s.WriteString(m.renderPanels())
	s.WriteString("\n")
	s.WriteString(m.renderStatusBar())

	if m.modal != modalNone {
		return m.renderModal(s.String())
	}

	return s.String()
}

func (m Model) renderPanels() string {
	leftPanelW := m.jobPanelWidth()
	rightPanelW := m.width - leftPanelW
	totalH := m.height - 1 // height - status bar
	if totalH < 8 {
		totalH = 8
	}

	// Info panel is fixed at 3 lines (border + 1 content + border)
	infoH := 3
	jobsH := totalH - infoH

	infoPanel := m.renderInfoPanel("awxmon", m.opts.Client.BaseURL().Host, version.Version, leftPanelW, infoH)

	jobsTitle := fmt.Sprintf("Jobs (%s)", m.order.get())
	jobContent := m.renderJobList(leftPanelW - 4)
	jobPanel := m.renderPanel(1, jobsTitle, jobContent, leftPanelW, jobsH, m.activePanel == panelJobs)

	outputTitle := m.outputTitle()
	m.outputView.Width = rightPanelW - 4
	m.outputView.Height = totalH - 3
	outputContent := m.outputView.View()
	if m.buffer == nil {
		outputContent = mutedStyle.Render("No job opened. Press enter on a job.")
	}
	outputPanel := m.renderPanel(2, outputTitle, outputContent, rightPanelW, totalH, m.activePanel == panelOutput)

	leftPanels := lipgloss.JoinVertical(lipgloss.Left, infoPanel, jobPanel)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanels, outputPanel)
}

// outputTitle describes the job attached to the output panel.
func (m Model) outputTitle() string {
	if m.outputJobID == 0 {
		return "Output"
	}
	title := fmt.Sprintf("Output: job %d", m.outputJobID)
	for _, job := range m.jobs {
		if job.ID == m.outputJobID {
			title = fmt.Sprintf("Output: %d %s %s", job.ID, statusGlyph(job.Status), jobDuration(job))
			break
		}
	}
	if m.tail != nil && m.tail.Active() {
		if m.tail.Paused() {
			title += " [paused]"
		} else if m.follow {
			title += " [following]"
		}
	}
	return title
}

// statusGlyph maps a job status to its list symbol.
func statusGlyph(status string) string {
	switch {
	case api.IsRunningStatus(status):
		return "◉"
	case status == "successful":
		return "✓"
	case status == "failed" || status == "error":
		return "✗"
	case status == "canceled":
		return "◼"
	default:
		return "◌"
	}
}

// jobDuration formats how long a job ran, or has been running.
func jobDuration(job api.Job) string {
	if job.Started == nil {
		return ""
	}
	if job.Finished != nil {
		return formatDuration(job.Finished.Sub(*job.Started))
	}
	if api.IsRunningStatus(job.Status) {
		return formatDuration(time.Since(*job.Started))
	}
	return ""
}

// renderInfoPanel renders the info panel with logo, server host (left) and
// version (right).
func (m Model) renderInfoPanel(logo, host, ver string, width, height int) string {
	borderColor := colorBlue
	textColor := colorWhite

	tl, tr, bl, br := "╭", "╮", "╰", "╯"
	h, v := "─", "│"

	topLine := lipgloss.NewStyle().Foreground(borderColor).Render(tl + strings.Repeat(h, width-2) + tr)
	bottomLine := lipgloss.NewStyle().Foreground(borderColor).Render(bl + strings.Repeat(h, width-2) + br)
	vBorder := lipgloss.NewStyle().Foreground(borderColor).Render(v)

	contentWidth := width - 4 // 2 for borders, 2 for padding
	styledLogo := lipgloss.NewStyle().Foreground(primaryColor).Bold(true).Render(logo)
	styledHost := lipgloss.NewStyle().Foreground(textColor).Render(host)
	styledVer := lipgloss.NewStyle().Foreground(textColor).Render(ver)

	leftPart := styledLogo + "  " + styledHost
	leftWidth := lipgloss.Width(logo) + 2 + lipgloss.Width(host)

	gap := contentWidth - leftWidth - lipgloss.Width(ver)
	if gap < 1 {
		gap = 1
	}
	line := leftPart + strings.Repeat(" ", gap) + styledVer
	contentLine := vBorder + " " + FitToWidth(line, contentWidth) + " " + vBorder

	return topLine + "\n" + contentLine + "\n" + bottomLine
}

// renderPanel renders a bordered panel with a numbered title:
// ╭─[num]─title─────...─╮
func (m Model) renderPanel(num int, title, content string, width, height int, active bool) string {
	borderColor := colorBrightBlack
	titleFg := colorWhite
	if active {
		borderColor = primaryColor
		titleFg = primaryColor
	}

	tl, tr, bl, br := "╭", "╮", "╰", "╯"
	h, v := "─", "│"

	numText := fmt.Sprintf("[%d]", num)
	styledNum := lipgloss.NewStyle().
		Foreground(titleFg).
		Bold(active).
		Render(numText)
	styledTitle := lipgloss.NewStyle().
		Foreground(titleFg).
		Bold(active).
		Render(title)
	styledDash := lipgloss.NewStyle().Foreground(borderColor).Render(h)

	numWidth := lipgloss.Width(numText)
	titleWidth := lipgloss.Width(title)

	topBorderRight := width - 2 - numWidth - 1 - titleWidth - 1
	if topBorderRight < 0 {
		topBorderRight = 0
	}
	topLine := lipgloss.NewStyle().Foreground(borderColor).Render(tl+h) +
		styledNum +
		styledDash +
		styledTitle +
		lipgloss.NewStyle().Foreground(borderColor).Render(strings.Repeat(h, topBorderRight)+tr)

	bottomLine := lipgloss.NewStyle().Foreground(borderColor).Render(bl + strings.Repeat(h, width-2) + br)
	vBorder := lipgloss.NewStyle().Foreground(borderColor).Render(v)

	contentWidth := width - 4
	contentHeight := height - 2

	contentLines := strings.Split(content, "\n")
	var paddedLines []string
	for i := 0; i < contentHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		line = FitToWidth(line, contentWidth)
		paddedLines = append(paddedLines, vBorder+" "+line+" "+vBorder)
	}

	return topLine + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomLine
}

func (m Model) renderJobList(width int) string {
	if len(m.jobs) == 0 {
		return mutedStyle.Render("No jobs.")
	}

	// Layout: [space][status 1][space][id][space][name][space][time]
	idWidth := 6
	timeWidth := 12
	nameWidth := width - 1 - 1 - idWidth - 1 - timeWidth - 2
	if nameWidth < 10 {
		nameWidth = 10
	}

	var lines []string
	start, end := m.jobScroll.VisibleRange(len(m.jobs))
	for i := start; i < end; i++ {
		job := m.jobs[i]
		isSelected := i == m.jobScroll.Cursor

		status := m.renderStatus(job.Status, isSelected)

		relTime := ""
		if job.Finished != nil {
			relTime = formatRelativeTime(*job.Finished)
		} else if job.Started != nil {
			relTime = formatDuration(time.Since(*job.Started))
		}

		name := truncate(job.Name, nameWidth)

		var line string
		if isSelected {
			sp := jobSelectedBgStyle.Render(" ")
			idStyled := jobIDSelectedStyle.Render(FitCellContent(fmt.Sprintf("#%d", job.ID), idWidth))
			nameStyled := jobNameSelectedStyle.Render(FitCellContent(name, nameWidth))
			timeStyled := jobTimeSelectedStyle.Render(FitCellContent(relTime, timeWidth))
			line = sp + status + sp + idStyled + sp + nameStyled + sp + timeStyled
			padding := width - lipgloss.Width(line)
			if padding > 0 {
				line = line + jobSelectedBgStyle.Render(strings.Repeat(" ", padding))
			}
		} else {
			idStyled := jobIDStyle.Render(FitCellContent(fmt.Sprintf("#%d", job.ID), idWidth))
			timeStyled := jobTimeStyle.Render(FitCellContent(relTime, timeWidth))
			line = fmt.Sprintf(" %s %s %s %s", status, idStyled, FitCellContent(name, nameWidth), timeStyled)
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderStatus(status string, selected bool) string {
	glyph := statusGlyph(status)
	var style lipgloss.Style
	switch glyph {
	case "◉":
		if selected {
			style = jobRunningSelectedStyle
		} else {
			style = jobRunningStyle
		}
	case "✓":
		if selected {
			style = jobSuccessSelectedStyle
		} else {
			style = jobSuccessStyle
		}
	case "✗":
		if selected {
			style = jobFailedSelectedStyle
		} else {
			style = jobFailedStyle
		}
	case "◼":
		if selected {
			style = jobStoppedSelectedStyle
		} else {
			style = jobStoppedStyle
		}
	default:
		if selected {
			style = jobPendingSelectedStyle
		} else {
			style = jobPendingStyle
		}
	}
	return style.Render(glyph)
}

func (m Model) renderStatusBar() string {
	var content string

	// Show message instead of shortcuts when there's an active message
	if m.message != "" && time.Since(m.messageTime) < 3*time.Second {
		var styledMessage string
		if m.isError {
			styledMessage = errorStyle.Render(m.message)
		} else {
			styledMessage = successStyle.Render(m.message)
		}
		msgWidth := lipgloss.Width(styledMessage)
		gap := m.width - msgWidth - 2
		if gap < 0 {
			gap = 0
		}
		content = " " + styledMessage + strings.Repeat(" ", gap) + " "
	} else {
		var parts []string
		switch m.activePanel {
		case panelJobs:
			parts = append(parts,
				m.renderKey("↑↓", "navigate"),
				m.renderKey("enter", "output"),
				m.renderKey("c", "cancel"),
				m.renderKey("r", "relaunch"),
				m.renderKey("d", "delete"),
				m.renderKey("y", "copy url"),
				m.renderKey("o", "sort"),
			)
		case panelOutput:
			parts = append(parts,
				m.renderKey("↑↓", "scroll"),
				m.renderKey("pgup/pgdn", "page"),
				m.renderKey("g/G", "first/last"),
				m.renderKey("f", "follow"),
				m.renderKey("esc", "back"),
			)
		}
		parts = append(parts, m.renderKey("?", "help"), m.renderKey("q", "quit"))

		leftSide := strings.Join(parts, " ")
		leftWidth := lipgloss.Width(leftSide)
		gap := m.width - leftWidth - 2
		if gap < 0 {
			gap = 0
		}
		content = " " + leftSide + strings.Repeat(" ", gap) + " "
	}

	return statusBarStyle.Render(content)
}

func (m Model) renderKey(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

func (m Model) renderModal(background string) string {
	var content string

	switch m.modal {
	case modalHelp:
		content = m.renderHelpModal()
	}

	modalWidth := lipgloss.Width(content)
	modalHeight := lipgloss.Height(content)
	x := (m.width - modalWidth) / 2
	y := (m.height - modalHeight) / 2

	return placeOverlay(x, y, content, background)
}

func (m Model) renderHelpModal() string {
	title := dialogTitleStyle.Render("Keyboard Shortcuts")
	body := m.help.View(keys)
	footer := helpDescStyle.Render("esc: close")

	content := title + "\n\n" + body + "\n\n" + footer

	return dialogStyle.Render(content)
}

// placeOverlay places the foreground string on top of the background string
// at position (x, y). Characters from fg replace characters in bg.
func placeOverlay(x, y int, fg, bg string) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	for i, fgLine := range fgLines {
		bgY := y + i
		if bgY < 0 || bgY >= len(bgLines) {
			continue
		}

		bgLine := bgLines[bgY]
		bgLineWidth := ansi.StringWidth(bgLine)

		var newLine strings.Builder

		// Left part of background (before overlay)
		if x > 0 {
			left := ansi.Truncate(bgLine, x, "")
			newLine.WriteString(left)
			leftWidth := ansi.StringWidth(left)
			if leftWidth < x {
				newLine.WriteString(strings.Repeat(" ", x-leftWidth))
			}
		}

		newLine.WriteString(fgLine)
		fgLineWidth := ansi.StringWidth(fgLine)

		// Right part of background (after overlay)
		rightStart := x + fgLineWidth
		if rightStart < bgLineWidth {
			right := truncateLeft(bgLine, rightStart)
			newLine.WriteString(right)
		}

		bgLines[bgY] = newLine.String()
	}

	return strings.Join(bgLines, "\n")
}

// truncateLeft removes the first n visual columns from a string,
// preserving ANSI escape sequences.
func truncateLeft(s string, n int) string {
	if n <= 0 {
		return s
	}

	var result strings.Builder
	width := 0
	inEscape := false
	escapeSeq := strings.Builder{}

	for _, r := range s {
		if inEscape {
			escapeSeq.WriteRune(r)
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
				if width >= n {
					result.WriteString(escapeSeq.String())
				}
				escapeSeq.Reset()
			}
			continue
		}

		if r == '\x1b' {
			inEscape = true
			escapeSeq.WriteRune(r)
			continue
		}

		charWidth := 1
		if r > 127 {
			charWidth = ansi.StringWidth(string(r))
		}

		if width >= n {
			result.WriteRune(r)
		}
		width += charWidth
	}

	return result.String()
}
