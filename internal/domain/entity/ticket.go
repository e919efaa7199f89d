package entity

import "time"

// Status estado del ciclo de vida de un atendimento.
type Status string

const (
	StatusReceived    Status = "received"
	StatusAnalysis    Status = "analysis"
	StatusMaintenance Status = "maintenance"
	StatusFinished    Status = "finished"
	StatusCanceled    Status = "canceled"
)

// Statuses lista los estados en el orden en que se muestran.
var Statuses = []Status{StatusReceived, StatusAnalysis, StatusMaintenance, StatusFinished, StatusCanceled}

var statusLabels = map[Status]string{
	StatusReceived:    "Recebido",
	StatusAnalysis:    "Em Análise",
	StatusMaintenance: "Em Manutenção",
	StatusFinished:    "Finalizado",
	StatusCanceled:    "Cancelado",
}

// Valid indica si s es uno de los cinco estados.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label etiqueta pt-BR para pantalla; estados desconocidos se muestran tal cual.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	if s == "" {
		return "N/A"
	}
	return string(s)
}

// IsTerminal finished y canceled son terminales por convención; no se impone en UpdateStatus.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusCanceled
}

// InProgress analysis y maintenance cuentan como "em andamento" en las métricas.
func (s Status) InProgress() bool {
	return s == StatusAnalysis || s == StatusMaintenance
}

// Ticket atendimento (service request). Nombre, teléfono del cliente se capturan al crear
// y no se sincronizan con el registro de User.
type Ticket struct {
	ID            int64
	ClientCPF     string
	ClientName    string
	ClientPhone   string
	EquipmentType string
	ServiceType   string
	Description   string
	Status        Status
	PhotoURL      string // vacío = sin foto
	AdminID       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// RegisteredUserName nombre del User con el mismo CPF (sólo en el listado de admin).
	RegisteredUserName string
}

// HasPhoto indica si el atendimento tiene foto asociada.
func (t *Ticket) HasPhoto() bool {
	return t.PhotoURL != ""
}
