package store

// Pagination limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams controls page-based pagination of list queries.
type PaginationParams struct {
	Page int // Zero-based page index (defaults to 0)
	Size int // The number of items per page (defaults to 20 with a maximum of 100)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Page: 0,
		Size: DefaultPageSize,
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

// Offset returns the row offset for the current page.
func (p PaginationParams) Offset() int {
	return p.Page * p.Size
}

// NewPaginatedResult builds a result with derived metadata.
func NewPaginatedResult[T any](items []T, total int, params PaginationParams) *PaginatedResult[T] {
	totalPages := 0
	if params.Size > 0 {
		totalPages = (total + params.Size - 1) / params.Size
	}
	return &PaginatedResult[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		Size:       params.Size,
		TotalPages: totalPages,
		HasMore:    params.Page+1 < totalPages,
	}
}
