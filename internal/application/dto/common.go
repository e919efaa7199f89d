package dto

// ListQuery parámetros opcionales del listado; sin ninguno se devuelve el arreglo plano.
type ListQuery struct {
	Status   string `query:"status"`
	Q        string `query:"q"`
	Date     string `query:"date"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// IsPaged indica si el caller pidió filtrado o paginación en el servidor.
func (q ListQuery) IsPaged() bool {
	return q.Status != "" || q.Q != "" || q.Date != "" || q.Page > 0 || q.PageSize > 0
}

// DefaultPage aplica valores por defecto si Page/PageSize son cero.
func (q *ListQuery) DefaultPage() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 5
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// MessageResponse respuesta con sólo un mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
