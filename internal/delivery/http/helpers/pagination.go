package helpers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"conferencecentral/internal/domain"
)

// Pagination query parameters and their limits.
const (
	PageParam       = "page"
	PageSizeParam   = "page_size"
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps the row offset of the last page within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// ParsePagination reads page and page_size from the query string. Missing,
// malformed or non-positive values use the defaults. page_size is capped at
// MaxPageSize and page at MaxPage.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     min(positiveInt(q.Get(PageParam), DefaultPage), MaxPage),
		PageSize: min(positiveInt(q.Get(PageSizeParam), DefaultPageSize), MaxPageSize),
	}
}

// positiveInt parses s, keeping the clamped value when it overflows int.
func positiveInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if (err == nil || errors.Is(err, strconv.ErrRange)) && v >= 1 {
		return v
	}
	return fallback
}

// PaginationMeta describes the page returned in a paginated list response.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPaginationMeta computes TotalPages as ceil(total/pageSize); it is 0 when pageSize is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	meta := PaginationMeta{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		meta.TotalPages = (total + pageSize - 1) / pageSize
	}
	meta.HasNext = page < meta.TotalPages
	return meta
}
