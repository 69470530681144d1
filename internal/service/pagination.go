package service

import (
	"math"

	"github.com/aanand-mishra/schools-api/internal/types"
)

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page     int
	PageSize int
}

// normalize clamps Page to at least 1 and rejects a non-positive PageSize.
func (r PageRequest) normalize() (PageRequest, error) {
	if r.PageSize < 1 {
		return r, invalid("pageSize", msgPageSizeOutOfRange)
	}
	if r.Page < 1 {
		r.Page = 1
	}
	return r, nil
}

// offset returns the number of rows to skip, and false when that number
// does not fit in an int64.
func (r PageRequest) offset() (int64, bool) {
	page, size := int64(r.Page-1), int64(r.PageSize)
	if page > math.MaxInt64/size {
		return 0, false
	}
	return page * size, true
}

func newPagination(r PageRequest, total int64) types.Pagination {
	size := int64(r.PageSize)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return types.Pagination{
		CurrentPage: r.Page,
		PageSize:    r.PageSize,
		TotalItems:  total,
		TotalPages:  pages,
	}
}
