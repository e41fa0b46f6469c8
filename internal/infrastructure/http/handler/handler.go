// Package handler adapts HTTP requests to the sales application service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/domain"
	"github.com/truestate/sales/internal/infrastructure/http/response"
)

// SalesQuerier runs a sales query from raw request parameters.
// *sales.Service satisfies it.
type SalesQuerier interface {
	Query(ctx context.Context, params sales.Params) (*domain.SalesPage, error)
}

// SalesHandler serves the sales query endpoint.
type SalesHandler struct {
	sales SalesQuerier
}

// NewSalesHandler creates a new HTTP API handler.
func NewSalesHandler(svc SalesQuerier) *SalesHandler {
	return &SalesHandler{sales: svc}
}

// NewRouter returns the API routes, to be mounted under /api.
func NewRouter(svc SalesQuerier) http.Handler {
	h := NewSalesHandler(svc)

	r := chi.NewRouter()
	r.Get("/sales", h.ListSales)
	return r
}

// ListSales handles GET /api/sales.
// Parameters never cause a 400: unparsable values fall back to defaults and
// an inverted age range is reported in the body.
func (h *SalesHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	params := sales.ParamsFromValues(r.URL.Query())

	page, err := h.sales.Query(r.Context(), params)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to query sales via HTTP",
			"query", r.URL.RawQuery,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapSalesPageToDTO(page))
}
