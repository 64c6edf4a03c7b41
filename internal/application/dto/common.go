package dto

// DefaultPageLimit tamaño de página cuando el cliente no pide uno: los
// listados de facturas y pagos devuelven como mucho esta cantidad.
const DefaultPageLimit = 20

// MaxPageLimit tope de registros por página en cualquier listado.
const MaxPageLimit = 100

// PageRequest paginación para listados de facturas y pagos.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage normaliza la página: aplica DefaultPageLimit si el cliente
// no pidió límite y descarta offsets negativos.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página que acompañan a los listados.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP con código estable para el cliente.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
