package dto

// Paginacion is embedded in every list filter.
type Paginacion struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=20" validate:"min=1,max=100"`
}

// Normalizar clamps page and limit into their valid ranges.
func (p *Paginacion) Normalizar() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p Paginacion) Offset() int { return (p.Page - 1) * p.Limit }

// ListResponse is the paginated result every Listar operation returns.
type ListResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func NewListResponse[T any](data []T, total int64, p Paginacion) *ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return &ListResponse[T]{Data: data, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}
