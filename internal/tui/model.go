// Package tui is the terminal front end: a bubbletea model that renders the
// project, toast and UI stores and turns key presses into store actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/browser"
	"github.com/fyrsmithlabs/hypewriter/internal/config"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/projectstore"
	"github.com/fyrsmithlabs/hypewriter/internal/toast"
	"github.com/fyrsmithlabs/hypewriter/internal/uistore"
)

const (
	sparklineWidth  = 30
	sparklineHeight = 3
	sidebarWidth    = 32
)

// MobileBreakpoint is the terminal width, in columns, below which the
// project list collapses.
const MobileBreakpoint = 80

// Operations reported back to the model when a store call finishes.
const (
	opLoad     = "load"
	opActivate = "activate"
	opCreate   = "create"
	opImport   = "import"
	opDelete   = "delete"
)

// Config wires the model to its stores and environment.
type Config struct {
	Projects *projectstore.Store
	Toasts   *toast.Store
	UI       *uistore.Store
	// History is the history shared with the project store; the UI route
	// follows its location.
	History browser.History
	// Viewport receives terminal width changes.
	Viewport *browser.MemoryViewport
	Logger   *logging.Logger

	// ToastDuration is how long a toast without its own duration stays on
	// screen. Defaults to config.DefaultToastDuration.
	ToastDuration time.Duration
}

// Model is the bubbletea model of the terminal front end.
type Model struct {
	ctx      context.Context
	projects *projectstore.Store
	toasts   *toast.Store
	ui       *uistore.Store
	history  browser.History
	viewport *browser.MemoryViewport
	logger   *logging.Logger

	events      chan struct{}
	unsubscribe []func()

	toastDuration time.Duration

	// expiring holds ids of toasts with a pending expiry tick.
	expiring map[string]struct{}

	projectState projectstore.State
	uiState      uistore.State
	toastList    []toast.Toast

	cursor    int
	currentID string
	form      *form
	width     int
	quitting  bool

	share progress.Model
}

// Message types
type storeChangedMsg struct{}

type toastExpiredMsg struct {
	id string
}

type opResultMsg struct {
	op      string
	subject string
	err     error
}

// NewModel subscribes to the stores and returns a model ready to run.
// Call Close when the program exits.
func NewModel(ctx context.Context, cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.History == nil {
		cfg.History = browser.NewMemoryHistory("/")
	}
	if cfg.Viewport == nil {
		cfg.Viewport = browser.NewMemoryViewport(80)
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = config.DefaultToastDuration
	}

	m := Model{
		ctx:      ctx,
		projects: cfg.Projects,
		toasts:   cfg.Toasts,
		ui:       cfg.UI,
		history:  cfg.History,
		viewport: cfg.Viewport,
		logger:   cfg.Logger.Named("tui"),
		events:   make(chan struct{}, 1),
		expiring: make(map[string]struct{}),

		toastDuration: cfg.ToastDuration,
		share: progress.New(
			progress.WithGradient("#00ffff", "#ff00ff"),
			progress.WithWidth(30),
		),
	}

	m.unsubscribe = []func(){
		m.projects.Subscribe(func(projectstore.State) { m.notify() }),
		m.toasts.Subscribe(func([]toast.Toast) { m.notify() }),
		m.ui.Subscribe(func(uistore.State) { m.notify() }),
	}
	m.refresh()
	return m
}

// notify coalesces store notifications into at most one pending event.
func (m Model) notify() {
	select {
	case m.events <- struct{}{}:
	default:
	}
}

// Close removes the store subscriptions.
func (m Model) Close() {
	for _, unsubscribe := range m.unsubscribe {
		unsubscribe()
	}
}

// waitForChange blocks until a store changes or ctx is done.
func waitForChange(ctx context.Context, events <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-events:
			return storeChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// expireToast fires a toastExpiredMsg for id after d.
func expireToast(id string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// scheduleToasts starts an expiry tick for every listed toast that has none
// yet and forgets ids that are no longer listed.
func (m Model) scheduleToasts() tea.Cmd {
	listed := make(map[string]struct{}, len(m.toastList))
	var cmds []tea.Cmd
	for _, t := range m.toastList {
		listed[t.ID] = struct{}{}
		if _, ok := m.expiring[t.ID]; ok {
			continue
		}
		d := m.toastDuration
		if t.Duration != nil {
			d = *t.Duration
		}
		if d <= 0 {
			continue
		}
		m.expiring[t.ID] = struct{}{}
		cmds = append(cmds, expireToast(t.ID, d))
	}
	for id := range m.expiring {
		if _, ok := listed[id]; !ok {
			delete(m.expiring, id)
		}
	}

	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

// refresh re-reads every store and keeps the UI route on the history
// location.
func (m *Model) refresh() {
	m.projectState = m.projects.Snapshot()
	m.toastList = m.toasts.Toasts()

	if loc := m.history.Location(); loc != m.ui.CurrentRoute() {
		m.ui.SetCurrentRoute(loc)
	}
	m.uiState = m.ui.Snapshot()

	id := ""
	if m.projectState.CurrentProject != nil {
		id = m.projectState.CurrentProject.ID
	}
	if id != m.currentID {
		m.currentID = id
		if idx := m.projects.CurrentProjectIndex(); idx >= 0 {
			m.cursor = idx
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if n := len(m.projectState.Projects); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Init loads the projects and starts listening for store changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.ctx, m.events),
		m.loadCmd(),
	)
}

func (m Model) loadCmd() tea.Cmd {
	projects := m.projects
	ctx := m.ctx
	return func() tea.Msg {
		if err := projects.Initialize(ctx); err != nil {
			return opResultMsg{op: opLoad, err: err}
		}
		if msg := projects.Error(); msg != "" {
			return opResultMsg{op: opLoad, err: errors.New(msg)}
		}
		return opResultMsg{op: opLoad, subject: fmt.Sprint(len(projects.Projects()))}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	projects := m.projects
	ctx := m.ctx
	return func() tea.Msg {
		projects.LoadProjects(ctx)
		if msg := projects.Error(); msg != "" {
			return opResultMsg{op: opLoad, err: errors.New(msg)}
		}
		return opResultMsg{op: opLoad, subject: fmt.Sprint(len(projects.Projects()))}
	}
}

func (m Model) activateCmd(id string) tea.Cmd {
	projects := m.projects
	ctx := m.ctx
	return func() tea.Msg {
		p, err := projects.SetCurrentProject(ctx, id)
		return opResultMsg{op: opActivate, subject: p.Title, err: err}
	}
}

func (m Model) deleteCmd(id, title string) tea.Cmd {
	projects := m.projects
	ctx := m.ctx
	return func() tea.Msg {
		err := projects.DeleteProject(ctx, id)
		return opResultMsg{op: opDelete, subject: title, err: err}
	}
}

func (m Model) submitCmd(f *form) tea.Cmd {
	projects := m.projects
	ctx := m.ctx
	if f.kind == importForm {
		req := f.importRequest()
		return func() tea.Msg {
			p, err := projects.ImportProject(ctx, req)
			return opResultMsg{op: opImport, subject: p.Title, err: err}
		}
	}
	req := f.createRequest()
	return func() tea.Msg {
		p, err := projects.CreateProject(ctx, req)
		return opResultMsg{op: opCreate, subject: p.Title, err: err}
	}
}

// Update handles messages and schedules expiry of new toasts.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	nm := next.(Model)
	expiry := nm.scheduleToasts()
	switch {
	case expiry == nil:
		return nm, cmd
	case cmd == nil:
		return nm, expiry
	default:
		return nm, tea.Batch(cmd, expiry)
	}
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.SetWidth(msg.Width)
		m.refresh()
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, waitForChange(m.ctx, m.events)

	case toastExpiredMsg:
		delete(m.expiring, msg.id)
		m.toasts.Remove(msg.id)
		m.refresh()
		return m, nil

	case opResultMsg:
		m.report(msg)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "enter":
		if p, ok := m.selected(); ok {
			return m, m.activateCmd(p.ID)
		}
		m.toasts.Warning("No project selected", nil)
	case "d":
		if p, ok := m.selected(); ok {
			return m, m.deleteCmd(p.ID, p.Title)
		}
		m.toasts.Warning("No project selected", nil)
	case "n":
		m.openForm(createForm)
	case "i":
		m.openForm(importForm)
	case "t":
		m.ui.ToggleDarkMode()
		mode := "light"
		if m.ui.DarkMode() {
			mode = "dark"
		}
		m.toasts.Info("Switched to "+mode+" mode", nil)
	case "s":
		m.ui.ToggleSidebar()
	case "r":
		return m, m.reloadCmd()
	case "x":
		m.toasts.Clear()
		m.ui.ClearAllToasts()
	}
	m.refresh()
	return m, nil
}

func (m *Model) openForm(kind formKind) {
	if kind == importForm {
		m.projects.OpenImportModal()
	} else {
		m.projects.OpenCreateModal()
	}
	m.ui.OpenModal(kind.modalID())
	m.form = newForm(kind)
}

func (m *Model) closeForm() {
	if m.form == nil {
		return
	}
	if m.form.kind == importForm {
		m.projects.CloseImportModal()
	} else {
		m.projects.CloseCreateModal()
	}
	m.ui.CloseModal()
	m.form = nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.refresh()
		return m, nil
	case "tab", "down":
		m.form.move(1)
		return m, nil
	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil
	case "enter":
		if !m.form.onLastField() {
			m.form.move(1)
			return m, nil
		}
		return m, m.submitCmd(m.form)
	}
	return m, m.form.update(msg)
}

// report turns a finished operation into toasts.
func (m *Model) report(msg opResultMsg) {
	if msg.err != nil {
		m.logger.Warn(m.ctx, "operation failed", zap.String("op", msg.op), zap.Error(msg.err))
		m.ui.ShowError(failureTitle(msg.op), msg.err.Error())
		return
	}

	switch msg.op {
	case opLoad:
		m.toasts.Info("Loaded "+msg.subject+" projects", nil)
	case opActivate:
		m.ui.ShowInfo("Switched project", msg.subject)
	case opCreate:
		m.closeForm()
		m.ui.ShowSuccess("Project created", msg.subject)
	case opImport:
		m.closeForm()
		m.ui.ShowSuccess("Novel imported", msg.subject)
	case opDelete:
		m.ui.ShowSuccess("Project deleted", msg.subject)
	}
}

func failureTitle(op string) string {
	switch op {
	case opLoad:
		return projectstore.MsgLoadFailed
	case opActivate:
		return projectstore.MsgSwitchFailed
	case opCreate:
		return projectstore.MsgCreateFailed
	case opImport:
		return projectstore.MsgImportFailed
	default:
		return projectstore.MsgDeleteFailed
	}
}

func (m Model) selected() (projectSummary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.projectState.Projects) {
		return projectSummary{}, false
	}
	p := m.projectState.Projects[m.cursor]
	return projectSummary{ID: p.ID, Title: p.Title}, true
}

type projectSummary struct {
	ID    string
	Title string
}

// View renders the screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := newTheme(m.uiState.DarkMode)

	var b strings.Builder
	b.WriteString(m.renderHeader(th) + "\n\n")

	var main string
	if m.form != nil {
		main = m.form.view(th)
	} else {
		main = m.renderProject(th)
	}
	if m.showSidebar() {
		main = lipgloss.JoinHorizontal(lipgloss.Top, th.sidebar.Render(m.renderSidebar(th)), main)
	}
	b.WriteString(main + "\n")

	if m.projectState.Error != "" {
		b.WriteString("\n" + th.errorText.Render("⚠ "+m.projectState.Error) + "\n")
	}
	if toasts := m.renderToasts(th); toasts != "" {
		b.WriteString("\n" + toasts)
	}
	b.WriteString(m.renderFooter(th))

	return th.container.Render(b.String())
}

// showSidebar hides the project list on narrow terminals unless the user
// opened it.
func (m Model) showSidebar() bool {
	return !m.uiState.IsMobile || m.uiState.SidebarOpen
}

func (m Model) renderHeader(th theme) string {
	mode := "☀ light"
	if m.uiState.DarkMode {
		mode = "☾ dark"
	}

	parts := []string{
		th.header.Render(" hypewriter "),
		th.dim.Render(m.uiState.CurrentRoute),
	}
	if m.ui.IsProjectPage() {
		parts = append(parts, th.label.Render("section:")+" "+th.value.Render(m.ui.CurrentProjectSection()))
	}
	parts = append(parts, th.dim.Render(mode))
	if m.projectState.IsLoading || m.projectState.IsProjectLoading {
		parts = append(parts, th.warning.Render("loading…"))
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderSidebar(th theme) string {
	var b strings.Builder
	b.WriteString(th.section.Render("┃ Projects") + "\n")

	if len(m.projectState.Projects) == 0 {
		b.WriteString(th.dim.Render("  no projects yet, press n") + "\n")
		return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
	}

	for i, p := range m.projectState.Projects {
		marker := "  "
		if p.ID == m.currentID {
			marker = "● "
		}
		line := marker + p.Title
		switch {
		case i == m.cursor:
			line = th.selected.Render(line)
		case p.ID == m.currentID:
			line = th.current.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

func (m Model) renderProject(th theme) string {
	p := m.projectState.CurrentProject
	if p == nil {
		return th.dim.Render("No project selected.")
	}

	var b strings.Builder
	b.WriteString(th.section.Render("┃ "+p.Title) + "\n")
	if p.Author != "" {
		b.WriteString(th.label.Render("  Author: ") + th.value.Render(p.Author) + "\n")
	}
	if p.Genre != "" {
		b.WriteString(th.label.Render("  Genre: ") + th.value.Render(p.Genre) + "\n")
	}
	if p.Description != "" {
		b.WriteString(th.dim.Render("  "+p.Description) + "\n")
	}
	b.WriteString(th.label.Render("  Size: ") +
		th.value.Render(FormatWords(p.WordCount)) +
		th.dim.Render(", "+FormatChapters(p.ChapterCount)) + "\n")
	b.WriteString(th.label.Render("  Modified: ") + th.value.Render(FormatTimestamp(p.LastModified)) + "\n")

	total := 0
	counts := make([]float64, 0, len(m.projectState.Projects))
	for _, q := range m.projectState.Projects {
		total += q.WordCount
		counts = append(counts, float64(q.WordCount))
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(p.WordCount) / float64(total)
	}
	b.WriteString(th.label.Render("  Share: ") + m.share.ViewAs(ratio) + "\n")
	b.WriteString("\n" + th.section.Render("┃ Word counts") + "\n")
	b.WriteString("  " + createSparkline(th, counts) + "\n")
	return b.String()
}

// createSparkline charts values oldest first; the project list is newest
// first.
func createSparkline(th theme, values []float64) string {
	if len(values) == 0 {
		return th.dim.Render(fmt.Sprintf("%*s", sparklineWidth, "no data"))
	}

	spark := sparkline.New(sparklineWidth, sparklineHeight)
	for i := len(values) - 1; i >= 0; i-- {
		spark.Push(values[i])
	}
	spark.Draw()
	return th.sparkline.Render(spark.View())
}

func (m Model) renderToasts(th theme) string {
	var b strings.Builder
	for _, t := range m.uiState.Toasts {
		style := th.info
		switch t.Type {
		case toast.Success:
			style = th.success
		case toast.Warning:
			style = th.warning
		case toast.Error:
			style = th.errorText
		}
		line := style.Render(toastIcon(t.Type) + " " + t.Title)
		if t.Message != "" {
			line += th.dim.Render("  " + t.Message)
		}
		b.WriteString(line + "\n")
	}
	if n := len(m.toastList); n > 0 {
		last := m.toastList[n-1]
		b.WriteString(th.dim.Render(toastIcon(last.Type)+" "+last.Message) + "\n")
	}
	return b.String()
}

func (m Model) renderFooter(th theme) string {
	keys := []struct{ key, label string }{
		{"j/k", "move"},
		{"enter", "open"},
		{"n", "new"},
		{"i", "import"},
		{"d", "delete"},
		{"t", "theme"},
		{"s", "sidebar"},
		{"r", "reload"},
		{"x", "clear"},
		{"q", "quit"},
	}
	var parts []string
	for _, k := range keys {
		parts = append(parts, th.footerKey.Render("["+k.key+"]")+th.footer.UnsetMarginTop().Render(" "+k.label))
	}
	return th.footer.Render(strings.Join(parts, "  "))
}

// Run starts the program and blocks until it exits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	defer m.Close()
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
