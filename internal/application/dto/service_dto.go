package dto

import (
	"time"

	"github.com/jhoicas/techfix-api/internal/domain/entity"
	"github.com/jhoicas/techfix-api/internal/domain/listing"
)

// CreateServiceRequest campos del formulario multipart de alta (la foto va aparte, campo "photo").
type CreateServiceRequest struct {
	ClientName    string `form:"clientName"`
	ClientPhone   string `form:"clientPhone"`
	ClientCPF     string `form:"clientCpf"`
	EquipmentType string `form:"equipmentType"`
	ServiceType   string `form:"serviceType"`
	Description   string `form:"description"`
}

// UpdateStatusRequest cuerpo de PUT /api/services/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ServiceResponse forma única de un atendimento en la API. photo_url es null sin foto.
type ServiceResponse struct {
	ID                 int64     `json:"id"`
	ClientCPF          string    `json:"client_cpf"`
	ClientName         string    `json:"client_name"`
	ClientPhone        string    `json:"client_phone"`
	EquipmentType      string    `json:"equipment_type"`
	ServiceType        string    `json:"service_type"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	PhotoURL           *string   `json:"photo_url"`
	AdminID            int64     `json:"admin_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	RegisteredUserName string    `json:"registered_user_name,omitempty"`
}

// CreateServiceResponse salida de alta.
type CreateServiceResponse struct {
	Message string          `json:"message"`
	Service ServiceResponse `json:"service"`
}

// MetricsResponse tarjetas del encabezado del tablero.
type MetricsResponse struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Finished   int `json:"finished"`
}

// ServicePageResponse listado filtrado y paginado en el servidor.
type ServicePageResponse struct {
	Items []ServiceResponse `json:"items"`
	PageResponse
	Metrics MetricsResponse `json:"metrics"`
}

// ToServiceResponse mapea la entidad a la respuesta.
func ToServiceResponse(t *entity.Ticket) ServiceResponse {
	r := ServiceResponse{
		ID:                 t.ID,
		ClientCPF:          t.ClientCPF,
		ClientName:         t.ClientName,
		ClientPhone:        t.ClientPhone,
		EquipmentType:      t.EquipmentType,
		ServiceType:        t.ServiceType,
		Description:        t.Description,
		Status:             string(t.Status),
		AdminID:            t.AdminID,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		RegisteredUserName: t.RegisteredUserName,
	}
	if t.PhotoURL != "" {
		url := t.PhotoURL
		r.PhotoURL = &url
	}
	return r
}

// ToServiceResponses nunca devuelve nil, para que la lista vacía se serialice como [].
func ToServiceResponses(ts []*entity.Ticket) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, ToServiceResponse(t))
	}
	return out
}

// ToServicePageResponse mapea una página del List Engine junto con las métricas del conjunto.
func ToServicePageResponse(p listing.Page, m listing.Metrics) ServicePageResponse {
	return ServicePageResponse{
		Items: ToServiceResponses(p.Items),
		PageResponse: PageResponse{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      p.Total,
			TotalPages: p.TotalPages,
		},
		Metrics: MetricsResponse{Total: m.Total, InProgress: m.InProgress, Finished: m.Finished},
	}
}

// Entity normaliza la respuesta de la API al tipo de dominio (lado cliente).
func (r ServiceResponse) Entity() *entity.Ticket {
	t := &entity.Ticket{
		ID:                 r.ID,
		ClientCPF:          r.ClientCPF,
		ClientName:         r.ClientName,
		ClientPhone:        r.ClientPhone,
		EquipmentType:      r.EquipmentType,
		ServiceType:        r.ServiceType,
		Description:        r.Description,
		Status:             entity.Status(r.Status),
		AdminID:            r.AdminID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		RegisteredUserName: r.RegisteredUserName,
	}
	if r.PhotoURL != nil {
		t.PhotoURL = *r.PhotoURL
	}
	return t
}
