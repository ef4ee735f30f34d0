package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keymap struct {
	prev       key.Binding
	next       key.Binding
	toggleMode key.Binding
	today      key.Binding
	reload     key.Binding
	help       key.Binding
	quit       key.Binding
}

func newKeymap() keymap {
	return keymap{
		prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("h, ←", "上一页"),
		),
		next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("l, →", "下一页"),
		),
		toggleMode: key.NewBinding(
			key.WithKeys("tab", "m"),
			key.WithHelp("m", "切换周/月"),
		),
		today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "今天"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "刷新"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "帮助"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "退出"),
		),
	}
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.prev, k.next, k.toggleMode, k.help, k.quit}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prev, k.next, k.today},
		{k.toggleMode, k.reload},
		{k.help, k.quit},
	}
}
