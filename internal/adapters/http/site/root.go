// Package site serves the landing route of the service.
package site

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Register attaches the landing route to mux. GET / sends browsers to the
// talent card page of the current year.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /{$}", NewRootHandler(time.Now))
}

// RootHandler redirects the root path.
type RootHandler struct {
	now func() time.Time
}

// NewRootHandler creates a root handler that picks the year from now.
func NewRootHandler(now func() time.Time) *RootHandler {
	return &RootHandler{now: now}
}

// ServeHTTP handles GET / requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/report?year="+strconv.Itoa(h.now().Year()), http.StatusFound)
}
