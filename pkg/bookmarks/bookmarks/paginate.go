package bookmarks

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
)

const (
	defaultPage    = 1
	defaultPerPage = 5
	maxPerPage     = 100
)

// Page is one page of bookmarks
type Page struct {
	Items []models.Bookmark
	Meta  Meta
}

// Meta describes where a page sits in the owner's collection.
// PrevPage and NextPage are nil when there is no such page.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Pages      int   `json:"pages"`
	TotalCount int64 `json:"total_count"`
	PrevPage   *int  `json:"prev_page"`
	NextPage   *int  `json:"next_page"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func newMeta(page, perPage int, total int64) Meta {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	meta := Meta{
		Page:       page,
		PerPage:    perPage,
		Pages:      pages,
		TotalCount: total,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
	if meta.HasPrev {
		prev := page - 1
		meta.PrevPage = &prev
	}
	if meta.HasNext {
		next := page + 1
		meta.NextPage = &next
	}
	return meta
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// parsePagination reads page and per_page from the query string.
// Unparsable values fall back to the defaults; per_page is silently capped.
func parsePagination(c *gin.Context) (page, perPage int) {
	page, perPage = defaultPage, defaultPerPage
	if p, err := strconv.Atoi(c.Query("page")); err == nil {
		page = p
	}
	if pp, err := strconv.Atoi(c.Query("per_page")); err == nil {
		perPage = pp
	}
	return normalizePage(page, perPage)
}
