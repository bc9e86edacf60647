package server

import (
	"net/url"
	"strconv"
)

// option is one entry of a <select>.
type option struct {
	Value    string
	Label    string
	Selected bool
}

func markSelected(opts []option, value string) []option {
	for i := range opts {
		opts[i].Selected = opts[i].Value == value
	}
	return opts
}

// statusOptions is the tri-state activo filter; an empty value means any.
func statusOptions(value string) []option {
	return markSelected([]option{
		{Value: "true", Label: "Activo"},
		{Value: "false", Label: "Inactivo"},
	}, value)
}

// pager holds the links of a paginated list.
type pager struct {
	Page    int
	Count   int
	PrevURL string
	NextURL string
}

func newPager(path string, query url.Values, page, count int, hasPrev, hasNext bool) pager {
	p := pager{Page: page, Count: count}
	if hasPrev && page > 1 {
		p.PrevURL = pageURL(path, query, page-1)
	}
	if hasNext {
		p.NextURL = pageURL(path, query, page+1)
	}
	return p
}

func pageURL(path string, query url.Values, page int) string {
	q := url.Values{}
	for k, v := range query {
		if k == paramError || k == paramMessage {
			continue
		}
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}

// queryPage reads ?page=, defaulting to the first page.
func queryPage(query url.Values) int {
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// exportURL keeps the list query but drops the flash parameters.
func exportURL(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		if k == paramError || k == paramMessage {
			continue
		}
		q[k] = append([]string(nil), v...)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// parseTriState reads "true", "false" or "" from a form.
func parseTriState(value string) *bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &b
}
