// Package tui tablero de atendimentos en terminal. Admin y cliente usan el mismo Model; la
// listing.View del rol decide columnas y acciones.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/techfix-api/internal/client"
	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
)

// API llamadas remotas que usa el tablero; la implementa *client.Client.
type API interface {
	ListServices(ctx context.Context) ([]*entity.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status entity.Status) (*entity.Ticket, error)
	DeleteService(ctx context.Context, id int64) (string, error)
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDate
	modeDetail
	modeConfirmDelete
)

// requestTimeout tope por llamada a la API.
const requestTimeout = 15 * time.Second

type ticketsLoadedMsg struct {
	tickets []*entity.Ticket
	err     error
}

type statusUpdatedMsg struct {
	ticket *entity.Ticket
	err    error
}

type deletedMsg struct {
	id      int64
	message string
	err     error
}

// statusCycle orden de la tecla de filtro por estado.
var statusCycle = append([]string{listing.StatusAll}, statusNames()...)

func statusNames() []string {
	out := make([]string, 0, len(entity.Statuses))
	for _, s := range entity.Statuses {
		out = append(out, string(s))
	}
	return out
}

// Model estado del tablero.
type Model struct {
	api   API
	board *listing.Board
	keys  KeyMap

	mode     mode
	cursor   int   // índice dentro de la página actual
	selected int64 // atendimento abierto en detalle o a confirmar
	back     mode  // a dónde vuelve la confirmación de borrado
	input    textinput.Model

	// busy hay una llamada en curso; las teclas que disparan otra se ignoran.
	busy   bool
	loaded bool

	notice    string
	noticeErr bool
	expired   bool

	width, height int
}

// New crea el tablero para la vista del rol. loc nil = time.Local.
func New(api API, view listing.View, loc *time.Location) Model {
	in := textinput.New()
	in.CharLimit = 80
	return Model{
		api:   api,
		board: listing.NewBoard(view, loc),
		keys:  DefaultKeyMap,
		input: in,
		busy:  true, // Init dispara la primera carga
	}
}

// SessionExpired el servidor rechazó la sesión; el caller debe volver al login.
func (m Model) SessionExpired() bool { return m.expired }

// Board estado del listado.
func (m Model) Board() *listing.Board { return m.board }

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *Model) loadCmd() tea.Cmd {
	m.busy = true
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ts, err := api.ListServices(ctx)
		return ticketsLoadedMsg{tickets: ts, err: err}
	}
}

func (m *Model) updateStatusCmd(id int64, status entity.Status) tea.Cmd {
	m.busy = true
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := api.UpdateStatus(ctx, id, status)
		return statusUpdatedMsg{ticket: t, err: err}
	}
}

func (m *Model) deleteCmd(id int64) tea.Cmd {
	m.busy = true
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msg, err := api.DeleteService(ctx, id)
		return deletedMsg{id: id, message: msg, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case ticketsLoadedMsg:
		m.busy = false
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.loaded = true
		m.board.SetTickets(msg.tickets)
		m.clampCursor()
		return m, nil

	case statusUpdatedMsg:
		m.busy = false
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.board.Upsert(msg.ticket)
		m.mode = modeList
		m.clampCursor()
		m.setNotice(fmt.Sprintf("Status do serviço #%d atualizado para %s.", msg.ticket.ID, msg.ticket.Status.Label()), false)
		return m, nil

	case deletedMsg:
		m.busy = false
		if msg.err != nil {
			m.mode = m.back
			return m.fail(msg.err)
		}
		m.board.Remove(msg.id)
		m.mode = modeList
		m.clampCursor()
		notice := msg.message
		if notice == "" {
			notice = fmt.Sprintf("Serviço #%d excluído.", msg.id)
		}
		m.setNotice(notice, false)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch, modeDate:
			return m.updateInput(msg)
		case modeDetail:
			return m.updateDetail(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

// fail sesión vencida → salir; el resto se muestra en la barra de estado.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, client.ErrSessionExpired) || errors.Is(err, client.ErrNoSession) {
		m.expired = true
		return m, tea.Quit
	}
	if errors.Is(err, client.ErrConnection) {
		m.setNotice("Erro de conexão com o servidor. Tente novamente.", true)
		return m, nil
	}
	m.setNotice(err.Error(), true)
	return m, nil
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice, m.noticeErr = s, isErr
}

func (m *Model) clampCursor() {
	n := len(m.board.Current().Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// current atendimento bajo el cursor; nil con la página vacía.
func (m Model) current() *entity.Ticket {
	items := m.board.Current().Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return nil
	}
	return items[m.cursor]
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.board.View()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.board.Current().Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextPage):
		if m.board.NextPage() {
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.board.PrevPage() {
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.Open):
		if t := m.current(); t != nil {
			m.selected = t.ID
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.input.Placeholder = "nome, CPF, equipamento ou #id"
		m.input.SetValue(m.board.Filters().Query)
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Date):
		m.mode = modeDate
		m.input.Placeholder = "AAAA-MM-DD"
		m.input.SetValue(m.board.Filters().Date)
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.CycleStatus):
		m.board.SetStatus(nextStatus(m.board.Filters().Status))
		m.cursor = 0
	case key.Matches(msg, m.keys.Clear):
		m.board.ResetFilters()
		m.cursor = 0
	case key.Matches(msg, m.keys.Reload):
		if !m.busy {
			cmd := m.loadCmd()
			return m, cmd
		}
	case key.Matches(msg, m.keys.Delete):
		if t := m.current(); t != nil && view.Allows(listing.ActionDelete) && !m.busy {
			m.selected = t.ID
			m.back = modeList
			m.mode = modeConfirmDelete
		}
	}
	return m, nil
}

func nextStatus(cur string) string {
	if cur == "" {
		cur = listing.StatusAll
	}
	for i, s := range statusCycle {
		if s == cur {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return listing.StatusAll
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == modeSearch {
			m.board.SetQuery("")
		}
		m.input.Blur()
		m.mode = modeList
		m.cursor = 0
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		if m.mode == modeDate && value != "" {
			if _, err := time.Parse(listing.DateLayout, value); err != nil {
				m.setNotice("Data inválida, use AAAA-MM-DD.", true)
				return m, nil
			}
			m.board.SetDate(value)
		} else if m.mode == modeDate {
			m.board.SetDate("")
		}
		m.input.Blur()
		m.mode = modeList
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeSearch {
		m.board.SetQuery(m.input.Value())
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.board.View()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Delete):
		if view.Allows(listing.ActionDelete) && !m.busy {
			m.back = modeDetail
			m.mode = modeConfirmDelete
		}
		return m, nil
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && view.Allows(listing.ActionChangeStatus) {
		if i := int(msg.Runes[0] - '1'); i >= 0 && i < len(entity.Statuses) {
			if m.busy || m.board.Find(m.selected) == nil {
				return m, nil
			}
			cmd := m.updateStatusCmd(m.selected, entity.Statuses[i])
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if m.busy {
			return m, nil
		}
		cmd := m.deleteCmd(m.selected)
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		if !m.busy {
			m.mode = m.back
		}
	}
	return m, nil
}
