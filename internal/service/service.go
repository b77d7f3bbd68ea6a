// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/productapi/internal/errors"
	"github.com/abgdnv/productapi/internal/store"
	"github.com/abgdnv/productapi/pkg/apperrors"
	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/abgdnv/productapi/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const (
	maxUpdateAttempts = 3

	msgNotFound = "Product not found"
	msgBlocked  = "Product is blocked"
	msgConflict = "Product was modified concurrently, retry the request"
)

// ProductService defines the methods for managing products.
// It is the only place where store signals become domain errors.
type ProductService interface {
	// FindAll returns all products in insertion order, truncated to limit when it is set.
	FindAll(ctx context.Context, limit *int) ([]ProductDto, error)

	// FindByID retrieves a single product.
	// Returns a NotFound error if it does not exist and a Conflict error if it is blocked.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// Create stores a new product under a freshly generated id.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update merges the set fields of changes into the product. The id never changes.
	// Returns a NotFound error if the product does not exist.
	Update(ctx context.Context, id string, changes ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product and echoes its id.
	// Returns a NotFound error if the product does not exist.
	DeleteByID(ctx context.Context, id string) (*DeletedDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	store            store.ProductStore
	publisher        messaging.Publisher
	logger           *slog.Logger
	mutationsCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService.
func NewService(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("product-service")
	mutationsCounter, err := meter.Int64Counter("product_mutations", metric.WithDescription("Total number of product mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_mutations counter: %v", err))
	}
	return &Service{
		store:            productStore,
		publisher:        publisher,
		logger:           logger.With("component", "product-service"),
		mutationsCounter: mutationsCounter,
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	IsBlocked bool   `json:"isBlocked"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name      string `json:"name"      validate:"required,min=3,max=100"`
	Price     *int64 `json:"price"     validate:"required,min=0"`
	Image     string `json:"image"     validate:"required,url"`
	IsBlocked *bool  `json:"isBlocked"`
}

// ProductUpdateDto represents a partial update. Nil fields are left unchanged.
type ProductUpdateDto struct {
	Name      *string `json:"name"      validate:"omitnil,min=3,max=100"`
	Price     *int64  `json:"price"     validate:"omitnil,min=0"`
	Image     *string `json:"image"     validate:"omitnil,url"`
	IsBlocked *bool   `json:"isBlocked"`
}

// DeletedDto is returned by DeleteByID.
type DeletedDto struct {
	ID string `json:"id"`
}

// FindAll retrieves all products, at most limit of them when limit is set.
func (s *Service) FindAll(ctx context.Context, limit *int) ([]ProductDto, error) {
	products, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit != nil && *limit >= 0 && *limit < len(products) {
		products = products[:*limit]
	}
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = toDto(&products[i])
	}
	return dtos, nil
}

// FindByID retrieves a readable product by its ID.
func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if product.IsBlocked {
		return nil, apperrors.NewConflict(msgBlocked, nil)
	}
	dto := toDto(product)
	return &dto, nil
}

// Create creates a new product. The input is expected to be validated already.
func (s *Service) Create(ctx context.Context, input ProductCreateDto) (*ProductDto, error) {
	product := store.Product{
		ID:   uuid.NewString(),
		Name: input.Name,
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	product.Image = input.Image
	if input.IsBlocked != nil {
		product.IsBlocked = *input.IsBlocked
	}

	created, err := s.store.Insert(ctx, product)
	if err != nil {
		return nil, err
	}
	dto := toDto(created)
	s.publish(ctx, "create", events.ProductCreatedEvent{
		Carrier:    traceCarrier(ctx),
		Product:    snapshot(dto),
		OccurredAt: time.Now().UTC(),
	})
	return &dto, nil
}

// Update merges changes into the stored product. A concurrent modification between the read
// and the write is retried from a fresh read, up to maxUpdateAttempts times.
func (s *Service) Update(ctx context.Context, id string, changes ProductUpdateDto) (*ProductDto, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		current, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, translate(err)
		}
		updated, err := s.store.Replace(ctx, id, merge(*current, changes))
		if errors.Is(err, perrors.ErrVersionConflict) {
			s.logger.DebugContext(ctx, "Version conflict on update, retrying", "id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, translate(err)
		}
		dto := toDto(updated)
		s.publish(ctx, "update", events.ProductUpdatedEvent{
			Carrier:    traceCarrier(ctx),
			Product:    snapshot(dto),
			OccurredAt: time.Now().UTC(),
		})
		return &dto, nil
	}
	return nil, apperrors.NewConflict(msgConflict, perrors.ErrVersionConflict)
}

// DeleteByID removes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id string) (*DeletedDto, error) {
	if err := s.store.RemoveByID(ctx, id); err != nil {
		return nil, translate(err)
	}
	s.publish(ctx, "delete", events.ProductDeletedEvent{
		Carrier:    traceCarrier(ctx),
		ProductID:  id,
		OccurredAt: time.Now().UTC(),
	})
	return &DeletedDto{ID: id}, nil
}

// publish sends the event and counts the mutation. Publishing failures are logged only.
func (s *Service) publish(ctx context.Context, operation string, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
	s.mutationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// traceCarrier captures the span context of ctx so consumers can continue the trace.
func traceCarrier(ctx context.Context) propagation.MapCarrier {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

// translate maps store signals to domain errors and passes anything else through.
func translate(err error) error {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		return apperrors.NewNotFound(msgNotFound, err)
	case errors.Is(err, perrors.ErrVersionConflict):
		return apperrors.NewConflict(msgConflict, err)
	default:
		return err
	}
}

func merge(p store.Product, changes ProductUpdateDto) store.Product {
	if changes.Name != nil {
		p.Name = *changes.Name
	}
	if changes.Price != nil {
		p.Price = *changes.Price
	}
	if changes.Image != nil {
		p.Image = *changes.Image
	}
	if changes.IsBlocked != nil {
		p.IsBlocked = *changes.IsBlocked
	}
	return p
}

func toDto(p *store.Product) ProductDto {
	return ProductDto{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		IsBlocked: p.IsBlocked,
	}
}

func snapshot(dto ProductDto) events.ProductSnapshot {
	return events.ProductSnapshot(dto)
}
