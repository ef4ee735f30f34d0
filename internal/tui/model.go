package tui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendarview"
)

// loadedMsg 携带一次加载的结果，过期的结果在 Update 中被丢弃
type loadedMsg[T calendar.Item] struct {
	res calendarview.Result[T]
}

// LabelFunc 返回工作项在周视图格子里显示的文字
type LabelFunc[T calendar.Item] func(item T) string

type Options[T calendar.Item] struct {
	Title   string
	Ref     time.Time
	Mode    calendarview.Mode
	View    calendarview.Options
	Label   LabelFunc[T]
	Timeout time.Duration
	Logger  *slog.Logger
}

// Model 是周视图和月视图共用的日历页面
type Model[T calendar.Item] struct {
	title   string
	nav     *calendarview.Navigator
	ctrl    *calendarview.Controller[T]
	opts    calendarview.Options
	label   LabelFunc[T]
	timeout time.Duration
	l       *slog.Logger

	keys     keymap
	help     help.Model
	showHelp bool

	width   int
	loading bool
	res     *calendarview.Result[T]
	err     error
}

func New[T calendar.Item](fetcher calendarview.Fetcher[T], opts Options[T]) Model[T] {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Ref.IsZero() {
		opts.Ref = time.Now()
	}

	h := help.New()
	h.Styles = styleHelp

	return Model[T]{
		title:   opts.Title,
		nav:     calendarview.NewNavigator(opts.Ref, opts.Mode),
		ctrl:    calendarview.NewController(fetcher, opts.View),
		opts:    opts.View,
		label:   opts.Label,
		timeout: opts.Timeout,
		l:       opts.Logger,
		keys:    newKeymap(),
		help:    h,
		loading: true,
	}
}

func (m Model[T]) Init() tea.Cmd {
	return m.load(m.nav.Ref())
}

// load 在后台加载 ref，翻页时可能同时有多个加载在进行
func (m Model[T]) load(ref time.Time) tea.Cmd {
	ctrl, timeout, l := m.ctrl, m.timeout, m.l
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res := ctrl.Load(ctx, ref)
		if res.Err != nil {
			l.Error("加载日历失败", "ref", calendar.FormatDate(ref), "error", res.Err)
		}
		return loadedMsg[T]{res: res}
	}
}

func (m Model[T]) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case loadedMsg[T]:
		if msg.res.Stale {
			m.l.Debug("丢弃过期的加载结果", "ref", calendar.FormatDate(msg.res.Ref), "generation", msg.res.Generation)
			return m, nil
		}
		m.loading = false
		if msg.res.Err != nil {
			m.err = msg.res.Err
			return m, nil
		}
		m.err = nil
		m.res = &msg.res
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
		case key.Matches(msg, m.keys.toggleMode):
			m.nav.ToggleMode()
		case key.Matches(msg, m.keys.prev):
			return m.reload(m.nav.Prev())
		case key.Matches(msg, m.keys.next):
			return m.reload(m.nav.Next())
		case key.Matches(msg, m.keys.today):
			return m.reload(m.nav.Today())
		case key.Matches(msg, m.keys.reload):
			return m.reload(m.nav.Ref())
		}
	}
	return m, nil
}

func (m Model[T]) reload(ref time.Time) (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.load(ref)
}

// Err 返回最近一次加载的错误
func (m Model[T]) Err() error {
	return m.err
}

