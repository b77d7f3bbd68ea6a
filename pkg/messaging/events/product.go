package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/productapi/pkg/messaging"
	"go.opentelemetry.io/otel/propagation"
)

// ProductSnapshot is the product state carried by created and updated events.
type ProductSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	IsBlocked bool   `json:"isBlocked"`
}

type ProductCreatedEvent struct {
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	Product    ProductSnapshot        `json:"product"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductUpdatedEvent struct {
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	Product    ProductSnapshot        `json:"product"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e ProductUpdatedEvent) Subject() string {
	return messaging.ProductsUpdatedSubject
}

func (e ProductUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductDeletedEvent struct {
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID  string                 `json:"product_id"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e ProductDeletedEvent) Subject() string {
	return messaging.ProductsDeletedSubject
}

func (e ProductDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
