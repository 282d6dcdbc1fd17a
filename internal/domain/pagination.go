package domain

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a validated page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest validates a one-based page number and a page size in [1, MaxPageSize].
func NewPageRequest(page, limit int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, NewValidationErrorWithCode(CodeInvalidPage, "Page number must be greater than 0")
	}
	if limit < 1 || limit > MaxPageSize {
		return PageRequest{}, NewValidationErrorWithCode(CodeInvalidPageSize, "Limit must be between 1 and 100")
	}
	return PageRequest{Page: page, Limit: limit}, nil
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata block returned with a page of results.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	PageSize        int   `json:"pageSize"`
	TotalCount      int64 `json:"totalCount"`
	TotalPages      int64 `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination computes page metadata for a total row count.
func NewPagination(req PageRequest, total int64) Pagination {
	size := int64(req.Limit)
	totalPages := (total + size - 1) / size
	return Pagination{
		CurrentPage:     req.Page,
		PageSize:        req.Limit,
		TotalCount:      total,
		TotalPages:      totalPages,
		HasNextPage:     int64(req.Page) < totalPages,
		HasPreviousPage: req.Page > 1,
	}
}
