package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
)

// Pages are 1-based. Sizes outside (0, MaxPageSize] fall back to DefaultPageSize.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func normalize(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// CalculateOffsetLimit turns a page request into an offset/limit pair.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	page, limit = normalize(page, size)
	return uint64(page-1) * uint64(limit), limit
}

// NewPaginationInfo describes a page of totalItems. An empty list still has
// one (empty) page. page and size are normalized the same way
// CalculateOffsetLimit normalizes them, so CurrentPage is the page whose
// offset was queried, even past TotalPages.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = normalize(page, size)

	totalPages := 1
	if totalItems > 0 {
		totalPages = int((totalItems + int64(size) - 1) / int64(size))
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams reads ?page and ?size, ignoring malformed values.
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page"))
	size, _ = strconv.Atoi(c.Query("size"))
	return normalize(page, size)
}
