package tui

import (
	"context"
	"time"

	"github.com/droneq/droneq/internal/bulk"
	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/core"
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/selection"
	"github.com/droneq/droneq/internal/tui/colors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 15 * time.Second

// Action names the bulk action a result message belongs to.
type Action int

const (
	ActionGrab Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "grab"
}

// ItemsLoadedMsg carries the result of a queue fetch. Requested is the page
// that was asked for; zero matches any page.
type ItemsLoadedMsg struct {
	Page      queue.Page
	Requested int
	Err       error
}

// ActionDoneMsg reports a finished grab or remove.
type ActionDoneMsg struct {
	Action Action
	Count  int
}

// ActionFailedMsg reports a grab or remove the service rejected. Failed
// actions are surfaced, never retried.
type ActionFailedMsg struct {
	Action Action
	Err    error
}

type refreshTickMsg struct{}

type pendingAction struct {
	action    Action
	ids       []string
	blacklist bool
}

// dispatcher collects the calls the coordinator makes to its handlers so
// Update can turn them into commands.
type dispatcher struct {
	pending []pendingAction
}

func (d *dispatcher) handlers() bulk.Handlers {
	return bulk.Handlers{
		Grab: func(ids []string) {
			d.pending = append(d.pending, pendingAction{action: ActionGrab, ids: ids})
		},
		Remove: func(ids []string, blacklist bool) {
			d.pending = append(d.pending, pendingAction{action: ActionRemove, ids: ids, blacklist: blacklist})
		},
	}
}

func (d *dispatcher) drain() []pendingAction {
	out := d.pending
	d.pending = nil
	return out
}

// Model is the bubbletea model of the queue view.
type Model struct {
	service  core.QueueService
	settings config.QueueSettings

	source    queue.Source
	sel       selection.State
	coord     *bulk.Coordinator
	actions   *dispatcher
	activity  bulk.Activity
	page      int
	refetch   bool // a refresh arrived while a fetch was in flight
	cursor    int
	blacklist bool
	status    string
	statusErr bool

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model

	width  int
	height int

	copyText func(string) error
}

// NewModel creates the queue view over service.
func NewModel(service core.QueueService, settings config.QueueSettings) Model {
	if settings.PageSize <= 0 {
		settings.PageSize = config.DefaultSettings().Queue.PageSize
	}
	if settings.RefreshInterval <= 0 {
		settings.RefreshInterval = config.DefaultSettings().Queue.RefreshInterval
	}

	d := &dispatcher{}

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = HeaderStyle

	bar := progress.New(
		progress.WithGradient(colors.ProgressStart, colors.ProgressEnd),
		progress.WithoutPercentage(),
		progress.WithWidth(colProgress),
	)

	// The first fetch is issued by Init.
	src := queue.Source{IsFetching: true, Page: 1, PageSize: settings.PageSize}

	return Model{
		service:  service,
		settings: settings,
		source:   src,
		sel:      selection.Empty(),
		coord:    bulk.NewCoordinator(d.handlers(), settings.PendingStatus),
		actions:  d,
		page:     1,
		keys:     Keys,
		help:     help.New(),
		spinner:  s,
		progress: bar,
		copyText: clipboard.WriteAll,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchCmd(m.service, m.page, m.settings.PageSize),
		tickCmd(m.settings.RefreshInterval),
		m.spinner.Tick,
	)
}

// Selection returns the current selection.
func (m Model) Selection() selection.State { return m.sel }

// Source returns the latest item snapshot.
func (m Model) Source() queue.Source { return m.source }

// Toolbar returns the derived toolbar state.
func (m Model) Toolbar() bulk.Toolbar {
	return m.coord.Toolbar(m.source, m.sel, m.activity)
}

func fetchCmd(svc core.QueueService, page, pageSize int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := svc.List(ctx, page, pageSize)
		return ItemsLoadedMsg{Page: p, Requested: page, Err: err}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func actionCmd(svc core.QueueService, a pendingAction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			n   int
			err error
		)
		switch a.action {
		case ActionGrab:
			n, err = svc.Grab(ctx, a.ids)
		case ActionRemove:
			n, err = svc.Remove(ctx, a.ids, a.blacklist)
		}
		if err != nil {
			return ActionFailedMsg{Action: a.action, Err: err}
		}
		return ActionDoneMsg{Action: a.action, Count: n}
	}
}
