package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

type Pagination struct {
	Page    int
	PerPage int
}

// PaginationFromQuery reads ?page= and ?per_page=, clamping bad values.
func PaginationFromQuery(c *gin.Context) Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Apply adds LIMIT/OFFSET to a query.
func (p Pagination) Apply(db *gorm.DB) *gorm.DB {
	if p.PerPage == 0 {
		return db
	}
	return db.Offset(p.Offset()).Limit(p.PerPage)
}

func (p Pagination) Meta(total int64) PageMeta {
	return PageMeta{Page: p.Page, PerPage: p.PerPage, Total: total}
}
