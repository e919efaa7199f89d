// Package listing es el motor de listados de atendimentos: filtra, ordena por recencia y
// pagina una colección ya cargada en memoria. Todas las funciones son puras; el estado de
// un tablero (filtros, página actual) vive en Board.
package listing

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/pkg/brdoc"
)

// StatusAll desactiva el filtro de estado.
const StatusAll = "all"

// DateLayout formato del filtro de fecha (día calendario).
const DateLayout = "2006-01-02"

// Filters predicados activos de un listado. Status vacío equivale a StatusAll.
type Filters struct {
	Status string
	Query  string
	Date   string
}

// Active indica si algún predicado está activo.
func (f Filters) Active() bool {
	return (f.Status != "" && f.Status != StatusAll) || strings.TrimSpace(f.Query) != "" || f.Date != ""
}

// Page resultado paginado.
type Page struct {
	Items      []*entity.Ticket
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// Filter devuelve los atendimentos que cumplen todos los predicados de f, del más reciente
// al más antiguo. Empates por created_at conservan el orden relativo de entrada.
// loc define el día calendario del filtro de fecha; nil = time.Local.
func Filter(tickets []*entity.Ticket, f Filters, loc *time.Location) []*entity.Ticket {
	if loc == nil {
		loc = time.Local
	}
	status := f.Status
	if status == "" {
		status = StatusAll
	}
	folder := cases.Fold()
	query := folder.String(strings.TrimSpace(f.Query))
	queryDigits := brdoc.Digits(query)

	out := make([]*entity.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t == nil {
			continue
		}
		if status != StatusAll && string(t.Status) != status {
			continue
		}
		if query != "" && !matchesQuery(t, query, queryDigits, folder) {
			continue
		}
		if f.Date != "" && t.CreatedAt.In(loc).Format(DateLayout) != f.Date {
			continue
		}
		out = append(out, t)
	}
	SortByRecency(out)
	return out
}

// matchesQuery substring case-insensitive sobre nombre, equipo, id y dígitos del CPF.
func matchesQuery(t *entity.Ticket, query, queryDigits string, folder cases.Caser) bool {
	if strings.Contains(folder.String(t.ClientName), query) {
		return true
	}
	if strings.Contains(folder.String(t.EquipmentType), query) {
		return true
	}
	if strings.Contains(strconv.FormatInt(t.ID, 10), query) {
		return true
	}
	return queryDigits != "" && strings.Contains(brdoc.Digits(t.ClientCPF), queryDigits)
}

// SortByRecency ordena in place por created_at descendente (estable).
func SortByRecency(tickets []*entity.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}

// TotalPages ceil(count/pageSize); 0 si pageSize <= 0.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate devuelve la ventana [(page-1)*pageSize, page*pageSize). Páginas fuera de rango
// devuelven Items vacío; page < 1 se trata como 1.
func Paginate(tickets []*entity.Ticket, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	p := Page{
		Items:      []*entity.Ticket{},
		Page:       page,
		PageSize:   pageSize,
		Total:      len(tickets),
		TotalPages: TotalPages(len(tickets), pageSize),
	}
	if pageSize <= 0 {
		return p
	}
	start := (page - 1) * pageSize
	if start >= len(tickets) {
		return p
	}
	end := start + pageSize
	if end > len(tickets) {
		end = len(tickets)
	}
	p.Items = tickets[start:end]
	return p
}

// Apply Filter + Paginate.
func Apply(tickets []*entity.Ticket, f Filters, page, pageSize int, loc *time.Location) Page {
	return Paginate(Filter(tickets, f, loc), page, pageSize)
}

// Metrics contadores de las tarjetas del tablero.
type Metrics struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Finished   int `json:"finished"`
}

// ComputeMetrics cuenta sobre la colección completa (sin filtros).
func ComputeMetrics(tickets []*entity.Ticket) Metrics {
	var m Metrics
	for _, t := range tickets {
		if t == nil {
			continue
		}
		m.Total++
		switch {
		case t.Status.InProgress():
			m.InProgress++
		case t.Status == entity.StatusFinished:
			m.Finished++
		}
	}
	return m
}
