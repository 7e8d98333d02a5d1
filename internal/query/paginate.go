package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type PageLink struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	URL   string `json:"url,omitempty"`
}

type Pagination struct {
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	TotalItems  int64     `json:"totalItems"`
	Limit       int       `json:"limit"`
	Estimated   bool      `json:"estimated,omitempty"`
	Previous    *PageLink `json:"previous,omitempty"`
	Next        *PageLink `json:"next,omitempty"`
}

func parsePageParams(params url.Values) (page, limit int, err error) {
	page, err = positiveInt(params.Get("page"), DefaultPage, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err = positiveInt(params.Get("limit"), DefaultLimit, "limit")
	if err != nil {
		return 0, 0, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, nil
}

func positiveInt(raw string, def int, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, httperr.Validation("invalid_pagination", fmt.Sprintf("%s must be an integer", name))
	}
	if n < 1 {
		return 0, httperr.Validation("invalid_pagination", fmt.Sprintf("%s must be greater than or equal to 1", name))
	}
	return n, nil
}

func totalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// paginate builds the pagination block. Asking for a page past the end of
// a non-empty result is an error when the total is exact.
func paginate(page, limit int, total int64, exact bool, baseURL string, params url.Values) (Pagination, error) {
	pages := totalPages(total, limit)
	if exact && total > 0 && page > pages {
		return Pagination{}, httperr.Validation(
			"page_out_of_range",
			fmt.Sprintf("Page %d does not exist. Maximum page is %d", page, pages),
		)
	}

	p := Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       limit,
		Estimated:   !exact,
	}
	if page > 1 && pages > 0 {
		p.Previous = link(page-1, limit, baseURL, params)
	}
	if page < pages {
		p.Next = link(page+1, limit, baseURL, params)
	}
	return p, nil
}

func link(page, limit int, baseURL string, params url.Values) *PageLink {
	l := &PageLink{Page: page, Limit: limit}
	if baseURL == "" {
		return l
	}
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	l.URL = baseURL + "?" + q.Encode()
	return l
}
