package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
	"github.com/jhoicas/techfix-api/internal/presenter"
	"github.com/jhoicas/techfix-api/pkg/brdoc"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).MarginRight(1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

var statusColors = map[entity.Status]lipgloss.Color{
	entity.StatusReceived:    "245",
	entity.StatusAnalysis:    "214",
	entity.StatusMaintenance: "39",
	entity.StatusFinished:    "42",
	entity.StatusCanceled:    "196",
}

var columnTitles = map[listing.Column]string{
	listing.ColumnID:        "#",
	listing.ColumnClient:    "Cliente",
	listing.ColumnCPF:       "CPF",
	listing.ColumnEquipment: "Equipamento",
	listing.ColumnService:   "Serviço",
	listing.ColumnStatus:    "Status",
	listing.ColumnCreated:   "Criado em",
}

var columnWidths = map[listing.Column]int{
	listing.ColumnID:        5,
	listing.ColumnClient:    22,
	listing.ColumnCPF:       15,
	listing.ColumnEquipment: 18,
	listing.ColumnService:   18,
	listing.ColumnStatus:    14,
	listing.ColumnCreated:   17,
}

func (m Model) View() string {
	if !m.loaded {
		if m.notice != "" {
			return m.statusLine() + "\n"
		}
		return "Carregando atendimentos...\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.board.View().Title))
	b.WriteString("\n")
	b.WriteString(m.metricsView())
	b.WriteString("\n")

	switch m.mode {
	case modeDetail, modeConfirmDelete:
		b.WriteString(m.detailView())
	default:
		b.WriteString(m.filtersView())
		b.WriteString("\n\n")
		b.WriteString(m.tableView())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) metricsView() string {
	mt := m.board.Metrics()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(fmt.Sprintf("Total\n%d", mt.Total)),
		cardStyle.Render(fmt.Sprintf("Em andamento\n%d", mt.InProgress)),
		cardStyle.Render(fmt.Sprintf("Finalizados\n%d", mt.Finished)),
	)
}

func (m Model) filtersView() string {
	f := m.board.Filters()
	status := "Todos"
	if f.Status != "" && f.Status != listing.StatusAll {
		status = entity.Status(f.Status).Label()
	}
	parts := []string{"Status: " + status}
	switch m.mode {
	case modeSearch:
		parts = append(parts, "Busca: "+m.input.View())
	case modeDate:
		parts = append(parts, "Data: "+m.input.View())
	default:
		if f.Query != "" {
			parts = append(parts, fmt.Sprintf("Busca: %q", f.Query))
		}
		if f.Date != "" {
			parts = append(parts, "Data: "+f.Date)
		}
	}
	return strings.Join(parts, "   ")
}

func (m Model) tableView() string {
	view := m.board.View()
	page := m.board.Current()
	if len(page.Items) == 0 {
		if m.board.Len() == 0 {
			return faintStyle.Render("Nenhum atendimento encontrado.")
		}
		return faintStyle.Render("Nenhum atendimento corresponde aos filtros.")
	}

	var b strings.Builder
	head := make([]string, 0, len(view.Columns))
	for _, c := range view.Columns {
		head = append(head, pad(columnTitles[c], columnWidths[c]))
	}
	b.WriteString(headerStyle.Render(strings.Join(head, " ")))
	b.WriteString("\n")

	for i, t := range page.Items {
		cells := make([]string, 0, len(view.Columns))
		for _, c := range view.Columns {
			cells = append(cells, pad(m.cell(t, c), columnWidths[c]))
		}
		line := strings.Join(cells, " ")
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(faintStyle.Render(fmt.Sprintf("Página %d de %d · %d resultado(s)", page.Page, page.TotalPages, page.Total)))
	return b.String()
}

func (m Model) cell(t *entity.Ticket, c listing.Column) string {
	switch c {
	case listing.ColumnID:
		return fmt.Sprintf("#%d", t.ID)
	case listing.ColumnClient:
		if t.RegisteredUserName != "" {
			return t.RegisteredUserName
		}
		return t.ClientName
	case listing.ColumnCPF:
		return brdoc.FormatCPF(t.ClientCPF)
	case listing.ColumnEquipment:
		return t.EquipmentType
	case listing.ColumnService:
		return t.ServiceType
	case listing.ColumnStatus:
		return t.Status.Label()
	case listing.ColumnCreated:
		if t.CreatedAt.IsZero() {
			return "N/A"
		}
		return t.CreatedAt.In(m.board.Location()).Format("02/01/2006 15:04")
	}
	return ""
}

func (m Model) detailView() string {
	t := m.board.Find(m.selected)
	if t == nil {
		return faintStyle.Render("Atendimento não está mais disponível.")
	}
	d := presenter.NewDetail(t, m.board.View(), m.board.Location())

	var b strings.Builder
	for i, line := range d.Lines() {
		if i == 0 {
			line = lipgloss.NewStyle().Bold(true).Foreground(statusColors[d.Status]).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if d.CanChangeStatus() {
		b.WriteString("\nAlterar status: ")
		opts := make([]string, 0, len(d.StatusOptions))
		for i, o := range d.StatusOptions {
			label := fmt.Sprintf("[%d] %s", i+1, o.Label)
			if o.Current {
				label = currentStyle.Render(label)
			}
			opts = append(opts, label)
		}
		b.WriteString(strings.Join(opts, "  "))
		b.WriteString("\n")
	}
	if m.mode == modeConfirmDelete {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Excluir o serviço #%d? (y/n)", d.ID)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.busy:
		return faintStyle.Render("Aguarde...")
	case m.notice == "":
		return ""
	case m.noticeErr:
		return errorStyle.Render(m.notice)
	default:
		return okStyle.Render(m.notice)
	}
}

func (m Model) helpLine() string {
	view := m.board.View()
	switch m.mode {
	case modeSearch, modeDate:
		return "enter aplicar · esc cancelar"
	case modeConfirmDelete:
		return "y confirmar · n cancelar"
	case modeDetail:
		parts := []string{"esc voltar"}
		if view.Allows(listing.ActionChangeStatus) {
			parts = append(parts, "1-5 status")
		}
		if view.Allows(listing.ActionDelete) {
			parts = append(parts, "x excluir")
		}
		return strings.Join(append(parts, "q sair"), " · ")
	}
	parts := []string{"j/k mover", "h/l página", "enter detalhes", "/ buscar", "t data", "s status", "c limpar", "r recarregar"}
	if view.Allows(listing.ActionDelete) {
		parts = append(parts, "x excluir")
	}
	return strings.Join(append(parts, "q sair"), " · ")
}

// pad trunca o completa a n columnas de terminal.
func pad(s string, n int) string {
	w := lipgloss.Width(s)
	if w > n {
		r := []rune(s)
		for lipgloss.Width(string(r)) > n-1 && len(r) > 0 {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	return s + strings.Repeat(" ", n-w)
}
