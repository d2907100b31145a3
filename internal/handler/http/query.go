package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// pagination reads page and limit, falling back to 1 and 20.
func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	return page, limit
}

func queryString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func queryDate(r *http.Request, key string) (*time.Time, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, false
	}
	return &d, true
}

func invalidID(field string) validator.ValidationErrors {
	return validator.ValidationErrors{{Field: field, Message: field + " must be a valid UUID"}}
}

// urlID returns the named path parameter, rejecting anything that is not a UUID.
func urlID(r *http.Request, key string) (string, error) {
	id := chi.URLParam(r, key)
	if !validator.IsValidUUID(id) {
		return "", invalidID(key)
	}
	return id, nil
}

// queryID reads an optional UUID query parameter.
func queryID(r *http.Request, key string) (*string, error) {
	v := queryString(r, key)
	if v != nil && !validator.IsValidUUID(*v) {
		return nil, invalidID(key)
	}
	return v, nil
}
