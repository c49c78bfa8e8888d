package httpapi

import (
	"strconv"
	"strings"

	"birthdayReminderTracker/repository"
)

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// parsePage reads page and limit query values. Missing or unusable values
// fall back to page 1 and the default page size; limit is capped.
func parsePage(rawPage, rawLimit string) (page, limit int) {
	page = 1
	if v, err := strconv.Atoi(strings.TrimSpace(rawPage)); err == nil && v > 0 {
		page = v
	}
	limit = repository.DefaultPageSize
	if v, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil && v > 0 {
		limit = v
	}
	if limit > repository.MaxPageSize {
		limit = repository.MaxPageSize
	}
	return page, limit
}
