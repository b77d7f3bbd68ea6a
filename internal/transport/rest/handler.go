// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productapi/internal/service"
	"github.com/abgdnv/productapi/pkg/apperrors"
	"github.com/abgdnv/productapi/pkg/web"
	"github.com/go-chi/chi/v5"
)

const (
	apiPrefix      = "/api/v1"
	filterResponse = "I am a filter"
)

// Pinger reports whether the storage behind the service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service   service.ProductService
	validator *web.SchemaValidator
	pinger    Pinger
	logger    *slog.Logger
}

// NewHandler creates a new instance of the product HTTP API.
func NewHandler(svc service.ProductService, pinger Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		service:   svc,
		validator: web.NewSchemaValidator(logger),
		pinger:    pinger,
		logger:    logger.With("component", "rest"),
	}
}

// routes returns the API route table relative to apiPrefix. Order matters: a literal
// segment must come before a parameterized sibling at the same depth.
func (h *Handler) routes() []route {
	query := web.Validate[productQuery](h.validator, web.Query)
	params := web.Validate[productParams](h.validator, web.Params)
	createBody := web.Validate[service.ProductCreateDto](h.validator, web.Body)
	updateBody := web.Validate[service.ProductUpdateDto](h.validator, web.Body)

	return []route{
		{method: http.MethodGet, pattern: "/products", middlewares: mw(query), handler: h.FindAll},
		{method: http.MethodPost, pattern: "/products", middlewares: mw(createBody), handler: h.Create},
		{method: http.MethodGet, pattern: "/products/filter", handler: h.Filter},
		{method: http.MethodGet, pattern: "/products/{id}", middlewares: mw(params), handler: h.FindByID},
		{method: http.MethodPatch, pattern: "/products/{id}", middlewares: mw(params, updateBody), handler: h.Update},
		{method: http.MethodDelete, pattern: "/products/{id}", middlewares: mw(params), handler: h.DeleteByID},
		{method: http.MethodGet, pattern: "/categories/{categoryId}/products/{productId}", handler: h.CategoryProduct},
		{method: http.MethodGet, pattern: "/users", handler: h.Users},
	}
}

func mw(m ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	return m
}

// RegisterRoutes registers the HTTP routes for the product service.
// It panics if the route table violates the literal-before-parameter order.
func (h *Handler) RegisterRoutes(r chi.Router) {
	routes := h.routes()
	if err := checkRouteOrder(routes); err != nil {
		panic(err)
	}

	r.Get("/", h.Index)
	r.Get("/new-route", h.NewRoute)
	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)

	r.Route(apiPrefix, func(r chi.Router) {
		for _, rt := range routes {
			r.With(rt.middlewares...).Method(rt.method, rt.pattern, rt.handler)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		web.RespondError(w, r, h.logger, apperrors.NewNotFound("Route not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSON(w, h.logger, http.StatusMethodNotAllowed, web.ErrorResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Error:      http.StatusText(http.StatusMethodNotAllowed),
			Message:    "Method not allowed",
		})
	})
}

// FindAll returns every product, optionally capped by ?limit.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	query, _ := web.Payload[productQuery](r.Context(), web.Query)

	list, err := h.service.FindAll(r.Context(), query.Limit)
	if err != nil {
		web.RespondError(w, r, h.logger, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Filter is a fixed text endpoint that shares its depth with /products/{id}.
func (h *Handler) Filter(w http.ResponseWriter, _ *http.Request) {
	web.RespondText(w, http.StatusOK, filterResponse)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	params, _ := web.Payload[productParams](r.Context(), web.Params)

	found, err := h.service.FindByID(r.Context(), params.ID)
	if err != nil {
		web.RespondError(w, r, h.logger, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, _ := web.Payload[service.ProductCreateDto](r.Context(), web.Body)

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		web.RespondError(w, r, h.logger, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// Update applies a partial update to a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	params, _ := web.Payload[productParams](r.Context(), web.Params)
	changes, _ := web.Payload[service.ProductUpdateDto](r.Context(), web.Body)

	updated, err := h.service.Update(r.Context(), params.ID, changes)
	if err != nil {
		web.RespondError(w, r, h.logger, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID removes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	params, _ := web.Payload[productParams](r.Context(), web.Params)

	deleted, err := h.service.DeleteByID(r.Context(), params.ID)
	if err != nil {
		web.RespondError(w, r, h.logger, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", deleted.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, deleted)
}
