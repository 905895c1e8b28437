package helpers

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size         int
		wantOffset, wantLi uint64
	}{
		{page: 1, size: 10, wantOffset: 0, wantLi: 10},
		{page: 3, size: 20, wantOffset: 40, wantLi: 20},
		{page: 0, size: 0, wantOffset: 0, wantLi: DefaultPageSize},
		{page: 2, size: 500, wantOffset: MaxPageSize, wantLi: MaxPageSize},
		{page: math.MaxInt, size: MaxPageSize, wantOffset: uint64(MaxPage-1) * MaxPageSize, wantLi: MaxPageSize},
	}
	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, offset)
		assert.Equal(t, tt.wantLi, limit)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(21, 2, 10)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 10, info.PageSize)
	assert.Equal(t, int64(21), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query          string
		wantPage, want int
	}{
		{query: "", wantPage: 1, want: 10},
		{query: "?page=3&limit=25", wantPage: 3, want: 25},
		{query: "?page=-1&limit=abc", wantPage: 1, want: 10},
		{query: "?limit=1000", wantPage: 1, want: MaxPageSize},
		{query: "?page=9223372036854775807&limit=100", wantPage: MaxPage, want: MaxPageSize},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/announcements"+tt.query, nil)

		page, size := ParsePaginationParams(c)

		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.want, size, tt.query)
	}
}

func TestCalculateOffsetLimit_HugePageStaysPositive(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/clubs?page=9223372036854775807&limit=100", nil)

	// Act
	page, size := ParsePaginationParams(c)
	offset, limit := CalculateOffsetLimit(page, size)

	// Assert
	assert.LessOrEqual(t, offset, uint64(math.MaxInt64))
	assert.Equal(t, uint64(MaxPageSize), limit)
}
