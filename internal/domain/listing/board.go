package listing

import (
	"time"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
)

// Board estado explícito de un tablero: colección cargada, filtros y página actual.
// Se construye por sesión de tablero y no se comparte entre goroutines.
type Board struct {
	view     View
	all      []*entity.Ticket
	filters  Filters
	page     int
	pageSize int
	loc      *time.Location
}

// NewBoard crea un tablero vacío en la página 1. loc nil = time.Local.
func NewBoard(view View, loc *time.Location) *Board {
	size := view.PageSize
	if size <= 0 {
		size = 5
	}
	if loc == nil {
		loc = time.Local
	}
	return &Board{view: view, page: 1, pageSize: size, loc: loc, filters: Filters{Status: StatusAll}}
}

func (b *Board) View() View {
	return b.view
}

func (b *Board) Filters() Filters {
	return b.filters
}

func (b *Board) CurrentPage() int {
	return b.page
}

func (b *Board) PageSize() int {
	return b.pageSize
}

func (b *Board) Len() int {
	return len(b.all)
}

func (b *Board) Metrics() Metrics {
	return ComputeMetrics(b.all)
}

func (b *Board) Current() Page {
	return Apply(b.all, b.filters, b.page, b.pageSize, b.loc)
}

func (b *Board) TotalPages() int {
	return TotalPages(len(Filter(b.all, b.filters, b.loc)), b.pageSize)
}

func (b *Board) Location() *time.Location {
	return b.loc
}

// SetTickets reemplaza la colección (recarga desde la API) y ajusta la página si quedó fuera de rango.
func (b *Board) SetTickets(tickets []*entity.Ticket) {
	b.all = append([]*entity.Ticket(nil), tickets...)
	b.clampPage()
}

// SetStatus cambia el filtro de estado y vuelve a la página 1.
func (b *Board) SetStatus(status string) {
	if status == "" {
		status = StatusAll
	}
	b.filters.Status = status
	b.page = 1
}

// SetQuery cambia la búsqueda libre y vuelve a la página 1.
func (b *Board) SetQuery(q string) {
	b.filters.Query = q
	b.page = 1
}

// SetDate cambia el filtro de fecha (YYYY-MM-DD o "") y vuelve a la página 1.
func (b *Board) SetDate(date string) {
	b.filters.Date = date
	b.page = 1
}

// ResetFilters limpia todos los filtros.
func (b *Board) ResetFilters() {
	b.filters = Filters{Status: StatusAll}
	b.page = 1
}

// SetPageSize cambia el tamaño de página y vuelve a la página 1; n <= 0 se ignora.
func (b *Board) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	b.pageSize = n
	b.page = 1
}

// NextPage avanza si hay página siguiente.
func (b *Board) NextPage() bool {
	if b.page < b.TotalPages() {
		b.page++
		return true
	}
	return false
}

// PrevPage retrocede si no está en la primera.
func (b *Board) PrevPage() bool {
	if b.page > 1 {
		b.page--
		return true
	}
	return false
}

// GoToPage salta a n si está en [1, TotalPages].
func (b *Board) GoToPage(n int) bool {
	if n >= 1 && n <= b.TotalPages() {
		b.page = n
		return true
	}
	return false
}

// Find busca un atendimento cargado por ID.
func (b *Board) Find(id int64) *entity.Ticket {
	for _, t := range b.all {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Upsert reemplaza el atendimento con el mismo ID (p. ej. tras cambiar el estado) o lo agrega.
// RegisteredUserName se conserva si la versión nueva no lo trae.
func (b *Board) Upsert(t *entity.Ticket) {
	if t == nil {
		return
	}
	for i, cur := range b.all {
		if cur.ID == t.ID {
			merged := *t
			if merged.RegisteredUserName == "" {
				merged.RegisteredUserName = cur.RegisteredUserName
			}
			b.all[i] = &merged
			b.clampPage()
			return
		}
	}
	b.all = append(b.all, t)
}

// Remove quita el atendimento y retrocede a la última página válida si la actual quedó vacía.
func (b *Board) Remove(id int64) bool {
	for i, t := range b.all {
		if t.ID == id {
			b.all = append(b.all[:i:i], b.all[i+1:]...)
			b.clampPage()
			return true
		}
	}
	return false
}

func (b *Board) clampPage() {
	total := b.TotalPages()
	switch {
	case total == 0:
		b.page = 1
	case b.page > total:
		b.page = total
	case b.page < 1:
		b.page = 1
	}
}
