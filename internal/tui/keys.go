package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap atajos del tablero.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Open     key.Binding
	Back     key.Binding

	Search      key.Binding
	Date        key.Binding
	CycleStatus key.Binding
	Clear       key.Binding
	Reload      key.Binding

	// Sólo admin.
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	Quit key.Binding
}

// DefaultKeyMap navegación vim (j/k, h/l) junto a flechas.
var DefaultKeyMap = KeyMap{
	Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "subir")),
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "descer")),
	PrevPage:    key.NewBinding(key.WithKeys("h", "left", "pgup"), key.WithHelp("h/←", "página anterior")),
	NextPage:    key.NewBinding(key.WithKeys("l", "right", "pgdown"), key.WithHelp("l/→", "próxima página")),
	Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detalhes")),
	Back:        key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "voltar")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
	Date:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "data")),
	CycleStatus: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
	Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "limpar filtros")),
	Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recarregar")),
	Delete:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "excluir")),
	Confirm:     key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirmar")),
	Cancel:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancelar")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "sair")),
}
