// Package tui is the interactive job monitor: a live job list on the left,
// driven by the reconciliation engine, and a bounded output window for the
// selected job on the right.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/awxmon/awxmon/internal/api"
	"github.com/awxmon/awxmon/internal/output"
	"github.com/awxmon/awxmon/internal/reconcile"
	"github.com/awxmon/awxmon/internal/telemetry"
	"github.com/awxmon/awxmon/internal/ws"
)

// Panel focus
type panel int

const (
	panelJobs panel = iota
	panelOutput
)

// Modal mode
type modalMode int

const (
	modalNone modalMode = iota
	modalHelp
)

// sortCycle is the orderings the sort key rotates through.
var sortCycle = []string{"-finished", "finished", "-id", "id", "name", "-started"}

// orderState is the current sort key, read fresh by the engine on every
// stream event so mid-session changes are honored.
type orderState struct {
	mu      sync.Mutex
	orderBy string
}

func (o *orderState) get() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderBy
}

func (o *orderState) cycle() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, key := range sortCycle {
		if key == o.orderBy {
			o.orderBy = sortCycle[(i+1)%len(sortCycle)]
			return o.orderBy
		}
	}
	o.orderBy = sortCycle[0]
	return o.orderBy
}

// Messages

type snapshotMsg struct {
	jobs []api.Job
	err  error
}

type jobsChangedMsg struct {
	jobs []api.Job
}

type jobsStreamClosedMsg struct{}

type outputSyncMsg struct {
	jobID int
	err   error
}

type outputEventMsg struct {
	jobID int
	msg   ws.Message
	ok    bool
}

type actionResultMsg struct {
	message string
	isError bool
}

// Options configures the TUI.
type Options struct {
	Client   *api.Client
	Token    func() string
	OrderBy  string
	PageSize int
}

// Model is the main TUI model.
type Model struct {
	opts  Options
	order *orderState

	// Job list state
	jobs      []api.Job
	jobScroll ScrollState
	engine    *reconcile.Engine
	stream    *ws.Stream
	changes   chan []api.Job

	// Output window state
	outputJobID  int
	outputView   viewport.Model
	buffer       *lineBuffer
	scroller     *bufferScroller
	tail         *tailState
	controller   *output.Controller
	outputStream *ws.Stream
	follow       bool

	// UI state
	activePanel panel
	modal       modalMode
	width       int
	height      int
	ready       bool
	message     string
	messageTime time.Time
	isError     bool

	help help.Model
}

// New creates the model and starts the job list stream and engine.
func New(opts Options) Model {
	if opts.OrderBy == "" {
		opts.OrderBy = sortCycle[0]
	}
	if opts.PageSize <= 0 {
		opts.PageSize = output.DefaultPageSize
	}

	order := &orderState{orderBy: opts.OrderBy}
	changes := make(chan []api.Job, 1)

	stream := ws.New(ws.Options{
		URL:   opts.Client.WebsocketURL(),
		Token: opts.Token,
	})
	engine := reconcile.NewEngine(reconcile.Options{
		Messages: stream.Messages(),
		Fetch:    opts.Client.JobsByID,
		FilterState: func() reconcile.FilterState {
			return reconcile.FilterState{OrderBy: order.get()}
		},
		OnChange: func(jobs []api.Job) {
			// Keep only the latest list if the UI is behind.
			select {
			case changes <- jobs:
			default:
				select {
				case <-changes:
				default:
				}
				changes <- jobs
			}
		},
	})
	stream.Start(context.Background())
	engine.Start(context.Background())

	h := help.New()
	h.ShowAll = true

	return Model{
		opts:    opts,
		order:   order,
		engine:  engine,
		stream:  stream,
		changes: changes,
		follow:  true,
		help:    h,
	}
}

// Close stops the streams and the engine. Called after the program exits.
func (m Model) Close() {
	m.stream.Stop()
	m.engine.Stop()
	if m.outputStream != nil {
		m.outputStream.Stop()
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSnapshot(), m.waitForJobs())
}

// loadSnapshot fetches the initial job list page.
func (m Model) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		page, err := m.opts.Client.ListJobs(context.Background(), api.ListParams{
			PageSize: m.opts.PageSize,
			OrderBy:  m.order.get(),
		})
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{jobs: page.Results}
	}
}

// waitForJobs waits for the engine to publish an updated list.
func (m Model) waitForJobs() tea.Cmd {
	return func() tea.Msg {
		jobs, ok := <-m.changes
		if !ok {
			return jobsStreamClosedMsg{}
		}
		return jobsChangedMsg{jobs: jobs}
	}
}

// waitForOutputEvent waits for a live event on the selected job's stream.
func waitForOutputEvent(jobID int, stream *ws.Stream) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-stream.Messages()
		return outputEventMsg{jobID: jobID, msg: msg, ok: ok}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width

		outputW := m.width - m.jobPanelWidth()
		outputH := m.height - 1 // status bar
		if outputH < 8 {
			outputH = 8
		}
		m.outputView = viewport.New(outputW-4, outputH-3)
		m.outputView.SetHorizontalStep(4)
		m.syncOutputView()

		m.jobScroll.VisibleRows = outputH - 3 - 2 // info panel and borders
		if m.jobScroll.VisibleRows < 1 {
			m.jobScroll.VisibleRows = 1
		}

	case snapshotMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Failed to load jobs: %v", msg.err)
			m.isError = true
			m.messageTime = time.Now()
			break
		}
		m.engine.SetSnapshot(msg.jobs)

	case jobsChangedMsg:
		// Keep the selection on the same job while reconciliation inserts
		// freshly fetched rows above it. The initial population is not an
		// insert, so only diff once a list exists.
		if len(m.jobs) > 0 {
			known := make(map[int]struct{}, len(m.jobs))
			for _, job := range m.jobs {
				known[job.ID] = struct{}{}
			}
			for i, job := range msg.jobs {
				if _, ok := known[job.ID]; !ok {
					m.jobScroll.ShiftForInsertAt(i)
				}
			}
		}
		m.jobs = msg.jobs
		m.jobScroll.ClampToCount(len(m.jobs))
		cmds = append(cmds, m.waitForJobs())

	case jobsStreamClosedMsg:
		// Engine stopped; nothing more to wait for.

	case outputSyncMsg:
		if msg.jobID == m.outputJobID {
			if msg.err != nil {
				m.message = fmt.Sprintf("Output fetch failed: %v", msg.err)
				m.isError = true
				m.messageTime = time.Now()
			}
			m.syncOutputView()
		}

	case outputEventMsg:
		if !msg.ok || msg.jobID != m.outputJobID {
			break
		}
		cmds = append(cmds, m.handleOutputEvent(msg.msg))
		cmds = append(cmds, waitForOutputEvent(msg.jobID, m.outputStream))

	case actionResultMsg:
		m.message = msg.message
		m.isError = msg.isError
		m.messageTime = time.Now()

	case tea.KeyMsg:
		if time.Since(m.messageTime) > 3*time.Second {
			m.message = ""
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateMain(msg)
	}

	return m, tea.Batch(cmds...)
}

// handleOutputEvent feeds one live event through the output controller.
func (m *Model) handleOutputEvent(msg ws.Message) tea.Cmd {
	// A terminal status for the watched job ends tailing.
	if msg.UnifiedJobID == m.outputJobID && msg.Status != "" && !api.IsRunningStatus(msg.Status) {
		m.tail.setActive(false)
	}

	if msg.Stdout == "" || m.tail.Paused() {
		return nil
	}

	controller := m.controller
	jobID := m.outputJobID
	event := api.JobEvent{
		Counter:   msg.Counter,
		StartLine: msg.StartLine,
		EndLine:   msg.EndLine,
		Stdout:    msg.Stdout,
	}
	return func() tea.Msg {
		err := controller.HandleLiveBatch([]api.JobEvent{event})
		return outputSyncMsg{jobID: jobID, err: err}
	}
}

// syncOutputView copies the output buffer and scroll position into the
// viewport.
func (m *Model) syncOutputView() {
	if m.buffer == nil {
		m.outputView.SetContent(mutedStyle.Render("No job opened. Press enter on a job."))
		return
	}
	m.outputView.SetContent(m.buffer.Content())
	if m.follow && !m.tail.Paused() {
		m.outputView.GotoBottom()
		return
	}
	m.outputView.SetYOffset(m.scroller.Position())
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.modal = modalNone
	case "ctrl+c":
		m.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Close()
		return m, tea.Quit

	case "1":
		m.activePanel = panelJobs
		telemetry.TUIActionExecute("switch_panel")

	case "2":
		m.activePanel = panelOutput
		telemetry.TUIActionExecute("switch_panel")

	case "tab":
		if m.activePanel == panelJobs {
			m.activePanel = panelOutput
		} else {
			m.activePanel = panelJobs
		}
		telemetry.TUIActionExecute("switch_panel")

	case "?":
		m.modal = modalHelp

	case "o":
		key := m.order.cycle()
		telemetry.TUIActionExecute("cycle_sort")
		m.engine.SetSnapshot(m.engine.Jobs())
		m.message = fmt.Sprintf("Sorting by %s", key)
		m.isError = false
		m.messageTime = time.Now()
	}

	if m.activePanel == panelJobs {
		return m.updateJobsPanel(msg)
	}
	return m.updateOutputPanel(msg)
}

func (m Model) updateJobsPanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.jobScroll.Up()

	case "down", "j":
		m.jobScroll.Down(len(m.jobs))

	case "g":
		m.jobScroll.First()

	case "G":
		m.jobScroll.Last(len(m.jobs))

	case "enter", "l":
		if job, ok := m.selectedJob(); ok {
			telemetry.TUIActionExecute("open_output")
			return m.openOutput(job)
		}

	case "c":
		if job, ok := m.selectedJob(); ok && api.IsRunningStatus(job.Status) {
			telemetry.TUIActionExecute("cancel_job")
			return m, m.cancelJob(job.ID)
		}

	case "r":
		if job, ok := m.selectedJob(); ok {
			telemetry.TUIActionExecute("relaunch_job")
			return m, m.relaunchJob(job.ID)
		}

	case "d":
		if job, ok := m.selectedJob(); ok && !api.IsRunningStatus(job.Status) {
			telemetry.TUIActionExecute("delete_job")
			return m, m.deleteJob(job.ID)
		}

	case "y":
		if job, ok := m.selectedJob(); ok {
			telemetry.TUIActionExecute("yank_url")
			if err := clipboard.WriteAll(m.opts.Client.JobURL(job.ID)); err != nil {
				m.message = fmt.Sprintf("Failed to copy: %v", err)
				m.isError = true
			} else {
				m.message = "Job URL copied to clipboard"
				m.isError = false
			}
			m.messageTime = time.Now()
		}
	}

	return m, nil
}

// openOutput attaches the output window to a job: a fresh pager and buffer,
// a dedicated event subscription, and a jump to the last page.
func (m Model) openOutput(job api.Job) (tea.Model, tea.Cmd) {
	if m.outputStream != nil {
		m.outputStream.Stop()
	}

	m.outputJobID = job.ID
	m.buffer = &lineBuffer{}
	m.scroller = &bufferScroller{buf: m.buffer}
	m.tail = &tailState{}
	m.follow = true

	pager := output.NewEventPager(m.opts.Client, job.ID, m.opts.PageSize, 0)
	m.controller = output.NewController(pager, m.buffer, m.scroller, m.tail)

	m.outputStream = ws.New(ws.Options{
		URL:    m.opts.Client.WebsocketURL(),
		Token:  m.opts.Token,
		Groups: ws.JobEventGroups(job.ID),
	})
	m.outputStream.Start(context.Background())

	m.activePanel = panelOutput

	controller := m.controller
	tail := m.tail
	jobID := job.ID
	running := api.IsRunningStatus(job.Status)
	load := func() tea.Msg {
		// The tail is activated after the initial load so ScrollEnd fetches
		// the last page instead of toggling the stream.
		err := controller.ScrollEnd(context.Background())
		tail.setActive(running)
		return outputSyncMsg{jobID: jobID, err: err}
	}
	return m, tea.Batch(load, waitForOutputEvent(jobID, m.outputStream))
}

func (m Model) updateOutputPanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.controller == nil {
		if msg.String() == "esc" || msg.String() == "h" {
			m.activePanel = panelJobs
		}
		return m, nil
	}

	controller := m.controller
	jobID := m.outputJobID

	switch msg.String() {
	case "esc":
		m.activePanel = panelJobs

	case "up", "k":
		m.outputView.LineUp(1)
		m.follow = false

	case "down", "j":
		m.outputView.LineDown(1)
		if m.outputView.AtBottom() {
			m.follow = true
		}

	case "left", "h":
		m.outputView.ScrollLeft(4)

	case "right", "l":
		m.outputView.ScrollRight(4)

	case "pgup", "ctrl+u":
		m.follow = false
		m.scroller.SetPosition(m.outputView.YOffset)
		return m, func() tea.Msg {
			return outputSyncMsg{jobID: jobID, err: controller.Previous(context.Background())}
		}

	case "pgdown", "ctrl+d":
		m.scroller.SetPosition(m.outputView.YOffset)
		return m, func() tea.Msg {
			return outputSyncMsg{jobID: jobID, err: controller.Next(context.Background())}
		}

	case "g":
		m.follow = false
		telemetry.TUIActionExecute("output_home")
		return m, func() tea.Msg {
			return outputSyncMsg{jobID: jobID, err: controller.ScrollHome(context.Background())}
		}

	case "G":
		telemetry.TUIActionExecute("output_end")
		wasPaused := m.tail.Paused()
		cmd := func() tea.Msg {
			return outputSyncMsg{jobID: jobID, err: controller.ScrollEnd(context.Background())}
		}
		if m.tail.Active() {
			// ScrollEnd toggles tailing while the stream is live.
			m.follow = wasPaused
		} else {
			m.follow = true
		}
		return m, cmd

	case "f":
		m.follow = !m.follow
		telemetry.TUIActionExecute("toggle_follow")
		if m.follow {
			m.outputView.GotoBottom()
		}
	}

	return m, nil
}

// Actions

func (m Model) cancelJob(id int) tea.Cmd {
	return func() tea.Msg {
		if err := m.opts.Client.CancelJob(context.Background(), id); err != nil {
			return actionResultMsg{message: fmt.Sprintf("Failed to cancel: %v", err), isError: true}
		}
		return actionResultMsg{message: fmt.Sprintf("Cancel requested for job %d", id)}
	}
}

func (m Model) relaunchJob(id int) tea.Cmd {
	return func() tea.Msg {
		job, err := m.opts.Client.RelaunchJob(context.Background(), id)
		if err != nil {
			return actionResultMsg{message: fmt.Sprintf("Failed to relaunch: %v", err), isError: true}
		}
		return actionResultMsg{message: fmt.Sprintf("Relaunched as job %d", job.ID)}
	}
}

func (m Model) deleteJob(id int) tea.Cmd {
	return func() tea.Msg {
		if err := m.opts.Client.DeleteJob(context.Background(), id); err != nil {
			return actionResultMsg{message: fmt.Sprintf("Failed to delete: %v", err), isError: true}
		}
		return actionResultMsg{message: fmt.Sprintf("Deleted job %d", id)}
	}
}

// Helpers

func (m Model) selectedJob() (api.Job, bool) {
	if len(m.jobs) == 0 || m.jobScroll.Cursor >= len(m.jobs) {
		return api.Job{}, false
	}
	return m.jobs[m.jobScroll.Cursor], true
}

func (m Model) jobPanelWidth() int {
	w := m.width * 45 / 100
	if w < 44 {
		w = 44
	}
	if w > 70 {
		w = 70
	}
	return w
}

// Start runs the TUI until the user quits.
func Start(opts Options) error {
	telemetry.TUISessionStart()
	defer telemetry.TUISessionEnd()

	model := New(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	model.Close()
	return err
}

// truncate shortens a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		max = 10
	}
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// formatDuration formats a duration in a compact human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		min := int(d.Minutes())
		sec := int(d.Seconds()) % 60
		if sec == 0 {
			return fmt.Sprintf("%dm", min)
		}
		return fmt.Sprintf("%dm%ds", min, sec)
	}
	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	if min == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, min)
}

// formatRelativeTime formats a time as a relative duration from now.
func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		min := int(d.Minutes())
		if min == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d min ago", min)
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		if h == 1 {
			return "1 hr ago"
		}
		return fmt.Sprintf("%d hr ago", h)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
