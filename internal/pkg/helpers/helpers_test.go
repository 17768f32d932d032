package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.EqualValues(t, 40, offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.EqualValues(t, 0, offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.EqualValues(t, 25, info.TotalItems)

	info = NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, info.TotalPages)

	info = NewPaginationInfo(5, 9, 10)
	assert.Equal(t, 9, info.CurrentPage)
	assert.Equal(t, 1, info.TotalPages)

	info = NewPaginationInfo(5, -4, 0)
	assert.Equal(t, DefaultPage, info.CurrentPage)
	assert.Equal(t, DefaultPageSize, info.PageSize)

	info = NewPaginationInfo(30, 1, 500)
	assert.Equal(t, DefaultPageSize, info.PageSize)
	assert.Equal(t, 3, info.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/news?page=2&size=5", nil)
	page, size := ParsePaginationParams(c)
	assert.Equal(t, 2, page)
	assert.Equal(t, 5, size)

	// gin caches parsed query values per context
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/news?page=-1&size=abc", nil)
	page, size = ParsePaginationParams(c)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestPaginationAgreesWithOffset(t *testing.T) {
	for _, tt := range []struct{ page, size int }{{1, 10}, {4, 10}, {0, 0}, {-2, 1000}, {7, 3}} {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		info := NewPaginationInfo(20, tt.page, tt.size)
		assert.Equal(t, limit, info.PageSize)
		assert.EqualValues(t, uint64(info.CurrentPage-1)*uint64(info.PageSize), offset)
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-1s", time.Minute))
}
