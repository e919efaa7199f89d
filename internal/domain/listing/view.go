package listing

import "github.com/jhoicas/techfix-api/internal/domain/entity"

// Column columna visible en un tablero.
type Column string

const (
	ColumnID        Column = "id"
	ColumnClient    Column = "client"
	ColumnCPF       Column = "cpf"
	ColumnEquipment Column = "equipment"
	ColumnService   Column = "service"
	ColumnStatus    Column = "status"
	ColumnCreated   Column = "created_at"
)

// Action acción disponible sobre un atendimento.
type Action string

const (
	ActionView         Action = "view"
	ActionChangeStatus Action = "change_status"
	ActionDelete       Action = "delete"
)

// View configuración por rol de un tablero: qué columnas se muestran y qué acciones se ofrecen.
// Admin y cliente comparten el mismo motor; sólo cambia este dato.
type View struct {
	Role     string
	Title    string
	Columns  []Column
	Actions  []Action
	PageSize int
}

// AdminView tablero de administración.
func AdminView() View {
	return View{
		Role:     entity.RoleAdmin,
		Title:    "Painel do Administrador",
		Columns:  []Column{ColumnID, ColumnClient, ColumnCPF, ColumnEquipment, ColumnStatus, ColumnCreated},
		Actions:  []Action{ActionView, ActionChangeStatus, ActionDelete},
		PageSize: 5,
	}
}

// ClientView tablero del cliente: sólo lectura.
func ClientView() View {
	return View{
		Role:     entity.RoleClient,
		Title:    "Meus Atendimentos",
		Columns:  []Column{ColumnID, ColumnEquipment, ColumnService, ColumnStatus, ColumnCreated},
		Actions:  []Action{ActionView},
		PageSize: 5,
	}
}

// ViewFor devuelve la vista del rol; roles desconocidos reciben la de cliente.
func ViewFor(role string) View {
	if role == entity.RoleAdmin {
		return AdminView()
	}
	return ClientView()
}

// Allows indica si la vista ofrece la acción.
func (v View) Allows(a Action) bool {
	for _, x := range v.Actions {
		if x == a {
			return true
		}
	}
	return false
}
