package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/tui/components"
	"github.com/Veraticus/spendsync/internal/tui/themes"
)

// State represents the current state of the TUI.
type State int

const (
	StateDashboard State = iota
	StateForm
	StateConfirmDelete
	StateHelp
)

// wideLayout is the minimum width for the two-column dashboard.
const wideLayout = 100

// Model holds the main TUI state. All session access happens inside Update,
// so the session is only ever touched from the program's event loop.
type Model struct {
	ctx           context.Context
	theme         themes.Theme
	session       *engine.Session
	changes       *changeFeed
	help          help.Model
	config        Config
	keymap        KeyMap
	dashboard     aggregate.Dashboard
	pendingDelete components.DeleteRequestedMsg
	status        status
	accounts      components.AccountListModel
	budget        components.BudgetPanelModel
	recent        components.RecentListModel
	chart         components.CategoryChartModel
	form          components.FormModel
	height        int
	width         int
	state         State
	loaded        bool
	quitting      bool
}

// changeFeed is set by the store subscription and cleared once the derived
// views have been rebuilt. Shared by every copy of the model.
type changeFeed struct {
	dirty       bool
	unsubscribe func()
}

// New creates the dashboard model. A session is required.
func New(ctx context.Context, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Session == nil {
		return Model{}, common.ErrMissingConfig
	}
	return newModel(ctx, cfg), nil
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	m := Model{
		ctx:      ctx,
		state:    StateDashboard,
		config:   cfg,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		theme:    cfg.Theme,
		session:  cfg.Session,
		accounts: components.NewAccountListModel(cfg.Theme, cfg.Currency),
		budget:   components.NewBudgetPanelModel(cfg.Theme, cfg.Currency),
		recent:   components.NewRecentListModel(cfg.Theme, cfg.Currency),
		chart:    components.NewCategoryChartModel(cfg.Theme, cfg.Currency),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	feed := &changeFeed{dirty: true}
	feed.unsubscribe = cfg.Session.Store().Subscribe(func(model.Snapshot) {
		feed.dirty = true
	})
	m.changes = feed
	m.handleResize()
	m.syncDashboard()
	return m
}

// Init loads the cached snapshot and starts the first refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.restore(), m.refresh())
}

// Update handles messages and updates the model. Derived views are rebuilt
// whenever the store changed while handling msg.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncDashboard()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case resultMsg:
		return m.handleResult(msg.result)

	case components.CommandMsg:
		return m.dispatch(msg.Command)

	case components.DeleteRequestedMsg:
		m.pendingDelete = msg
		m.state = StateConfirmDelete
		return m, nil

	case components.FormCancelledMsg:
		m.state = StateDashboard
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.state {
	case StateHelp:
		m.state = StateDashboard
		return m, nil

	case StateForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case StateConfirmDelete:
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			m.state = StateDashboard
			return m.dispatch(engine.DeleteAccount{ID: m.pendingDelete.ID})
		case key.Matches(msg, m.keymap.Cancel):
			m.state = StateDashboard
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()

	case key.Matches(msg, m.keymap.Help):
		m.state = StateHelp
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		m.status = status{text: "Reloading…"}
		return m, m.refresh()

	case key.Matches(msg, m.keymap.AddAccount):
		m.openForm(components.NewAccountForm(m.theme))
		return m, nil

	case key.Matches(msg, m.keymap.AddTransaction):
		if !m.dashboard.HasActive() {
			m.setError(&common.PreconditionError{Action: "add transaction", Reason: "no account is active"})
			return m, nil
		}
		m.openForm(components.NewTransactionForm(m.theme, m.config.Now))
		return m, nil

	case key.Matches(msg, m.keymap.EditBudget):
		if !m.dashboard.HasActive() {
			m.setError(&common.PreconditionError{Action: "update budget", Reason: "no account is active"})
			return m, nil
		}
		m.openForm(components.NewBudgetForm(m.theme, m.dashboard.Budget.Limit))
		return m, nil
	}

	var cmd tea.Cmd
	m.accounts, cmd = m.accounts.Update(msg)
	return m, cmd
}

// dispatch applies cmd through the session and schedules its confirmation.
// A rejected command from a form keeps the form open with the reason shown.
func (m Model) dispatch(cmd engine.Command) (Model, tea.Cmd) {
	task, err := m.session.Dispatch(cmd)
	if err != nil {
		if m.state == StateForm {
			m.form.SetError(common.UserMessage(err))
			return m, nil
		}
		m.setError(err)
		return m, nil
	}

	m.state = StateDashboard
	if task != nil {
		m.status = status{text: "Saving…"}
	}
	return m, m.run(task)
}

// handleResult reconciles a finished task and chains any follow-up.
func (m Model) handleResult(res engine.Result) (Model, tea.Cmd) {
	outcome := m.session.Reconcile(res)
	if res.Op == engine.OpRefresh || res.Op == engine.OpRestore {
		m.loaded = true
	}

	switch {
	case outcome.Err != nil:
		m.setError(outcome.Err)
	case outcome.Notice != "":
		m.status = status{text: outcome.Notice, level: statusSuccess}
	case m.status.level == statusInfo:
		m.status = status{}
	}

	return m, m.run(outcome.Next)
}

func (m *Model) openForm(form components.FormModel) {
	form.Resize(min(m.width-4, 60))
	m.form = form
	m.state = StateForm
}

func (m *Model) setError(err error) {
	m.status = status{
		text:   common.UserMessage(err),
		level:  statusError,
		reload: common.NeedsReload(err),
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.changes.unsubscribe()
	return m, tea.Quit
}

// syncDashboard rebuilds every derived view from the session if the store
// changed since the last rebuild.
func (m *Model) syncDashboard() {
	if !m.changes.dirty {
		return
	}
	m.changes.dirty = false
	m.dashboard = m.session.Dashboard()
	m.accounts.SetCards(m.dashboard.Accounts)
	m.budget.SetUsage(m.dashboard.Budget, m.dashboard.HasActive())
	m.recent.SetTransactions(m.dashboard.Recent)
	m.chart.SetSegments(m.dashboard.Segments)
}

func (m *Model) handleResize() {
	column := m.width - 4
	if m.width >= wideLayout {
		column = (m.width - 6) / 2
	}
	m.accounts.Resize(column)
	m.budget.Resize(column)
	m.recent.Resize(column)
	m.chart.Resize(column)
	m.help.Width = m.width - 4
	if m.state == StateForm {
		m.form.Resize(min(m.width-4, 60))
	}
}
