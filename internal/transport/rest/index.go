package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/abgdnv/productapi/pkg/web"
	"github.com/go-chi/chi/v5"
)

const (
	indexGreeting    = "Hello from the product server"
	newRouteGreeting = "Hello from the new route"
	missingParams    = "missing parameters"
	readinessTimeout = 2 * time.Second
)

type categoryProduct struct {
	CategoryID string `json:"categoryId"`
	ProductID  string `json:"productId"`
}

type usersPage struct {
	Limit  string `json:"limit"`
	Offset string `json:"offset"`
}

func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	web.RespondText(w, http.StatusOK, indexGreeting)
}

func (h *Handler) NewRoute(w http.ResponseWriter, _ *http.Request) {
	web.RespondText(w, http.StatusOK, newRouteGreeting)
}

// CategoryProduct echoes both path parameters.
func (h *Handler) CategoryProduct(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, categoryProduct{
		CategoryID: chi.URLParam(r, "categoryId"),
		ProductID:  chi.URLParam(r, "productId"),
	})
}

// Users echoes limit and offset when both are present.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	limit := r.URL.Query().Get("limit")
	offset := r.URL.Query().Get("offset")
	if limit == "" || offset == "" {
		web.RespondText(w, http.StatusOK, missingParams)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, usersPage{Limit: limit, Offset: offset})
}

// HealthCheck is the liveness probe.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessCheck reports whether the product store is reachable.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		web.RespondJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ready"})
}
