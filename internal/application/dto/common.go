package dto

// Límites de paginación compartidos por los listados.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto y recorta al máximo permitido.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas. Total no depende de limit/offset.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. MaterialID identifica el material que provocó
// un error de stock o de material inexistente.
type ErrorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	MaterialID string `json:"material_id,omitempty"`
}
