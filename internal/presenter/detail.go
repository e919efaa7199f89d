// Package presenter arma la vista de detalle de un atendimento: campos formateados para
// pantalla y el control de cambio de estado. Lo consumen el tablero de terminal y el PDF.
package presenter

import (
	"fmt"
	"time"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
	"github.com/jhoicas/techfix-api/pkg/brdoc"
)

const (
	dateTimeLayout = "02/01/2006 15:04"
	notAvailable   = "N/A"
)

// StatusOption un botón del control de estado.
type StatusOption struct {
	Status  entity.Status
	Label   string
	Current bool
}

// Detail datos listos para mostrar.
type Detail struct {
	ID            int64
	Title         string
	ClientName    string
	ClientCPF     string // enmascarado
	ClientPhone   string // enmascarado
	EquipmentType string
	ServiceType   string
	Description   string
	Status        entity.Status
	StatusLabel   string
	CreatedAt     string
	UpdatedAt     string
	PhotoURL      string

	// StatusOptions los cinco estados; vacío si la vista no permite cambiar el estado.
	StatusOptions []StatusOption
}

// CanChangeStatus indica si se ofrece el control de estado.
func (d Detail) CanChangeStatus() bool {
	return len(d.StatusOptions) > 0
}

// HasPhoto indica si hay foto para mostrar.
func (d Detail) HasPhoto() bool {
	return d.PhotoURL != ""
}

// NewDetail construye el detalle del atendimento para la vista del rol. loc nil = time.Local.
func NewDetail(t *entity.Ticket, view listing.View, loc *time.Location) Detail {
	if loc == nil {
		loc = time.Local
	}
	heading := t.ServiceType
	if heading == "" {
		heading = t.EquipmentType
	}
	d := Detail{
		ID:            t.ID,
		Title:         fmt.Sprintf("#%d - %s", t.ID, heading),
		ClientName:    orNA(t.ClientName),
		ClientCPF:     orNA(brdoc.FormatCPF(t.ClientCPF)),
		ClientPhone:   brdoc.FormatPhone(t.ClientPhone),
		EquipmentType: orNA(t.EquipmentType),
		ServiceType:   t.ServiceType,
		Description:   t.Description,
		Status:        t.Status,
		StatusLabel:   t.Status.Label(),
		CreatedAt:     formatTime(t.CreatedAt, loc),
		UpdatedAt:     formatTime(t.UpdatedAt, loc),
		PhotoURL:      t.PhotoURL,
	}
	if view.Allows(listing.ActionChangeStatus) {
		d.StatusOptions = make([]StatusOption, 0, len(entity.Statuses))
		for _, s := range entity.Statuses {
			d.StatusOptions = append(d.StatusOptions, StatusOption{Status: s, Label: s.Label(), Current: s == t.Status})
		}
	}
	return d
}

// Lines representación texto del detalle, una línea por campo presente.
func (d Detail) Lines() []string {
	lines := []string{
		d.Title + " [" + d.StatusLabel + "]",
		fmt.Sprintf("Cliente: %s (CPF: %s)", d.ClientName, d.ClientCPF),
	}
	if d.ClientPhone != "" {
		lines = append(lines, "Telefone: "+d.ClientPhone)
	}
	lines = append(lines, "Tipo de Equipamento: "+d.EquipmentType)
	if d.ServiceType != "" {
		lines = append(lines, "Tipo de Serviço: "+d.ServiceType)
	}
	lines = append(lines,
		"Data de Criação: "+d.CreatedAt,
		"Última Atualização: "+d.UpdatedAt,
		"Descrição: "+d.Description,
	)
	if d.HasPhoto() {
		lines = append(lines, "Foto: "+d.PhotoURL)
	}
	return lines
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.In(loc).Format(dateTimeLayout)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
