package controller

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

type pageSpec struct {
	Page    int
	PerPage int
	Search  string
}

func parsePageSpec(r *http.Request) (pageSpec, error) {
	qs := r.URL.Query()

	page := 1
	if v := qs.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return pageSpec{}, errInvalidPage
		}
		page = n
	}

	perPage := defaultPerPage
	if v := qs.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return pageSpec{}, errInvalidPerPage
		}
		if n > maxPerPage {
			n = maxPerPage
		}
		perPage = n
	}

	return pageSpec{Page: page, PerPage: perPage, Search: qs.Get("search")}, nil
}

// pathID parses the {id} route variable as an entity id.
func pathID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

var (
	errInvalidPage    = &parseError{msg: "invalid page"}
	errInvalidPerPage = &parseError{msg: "invalid per_page"}
)

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
