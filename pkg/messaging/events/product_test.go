package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEvents_Subjects(t *testing.T) {
	testCases := []struct {
		name    string
		event   messaging.Event
		subject string
	}{
		{name: "created", event: ProductCreatedEvent{}, subject: "products.created"},
		{name: "updated", event: ProductUpdatedEvent{}, subject: "products.updated"},
		{name: "deleted", event: ProductDeletedEvent{}, subject: "products.deleted"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.subject, tc.event.Subject())
		})
	}
}

func TestProductCreatedEvent_Payload(t *testing.T) {
	// given
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	event := ProductCreatedEvent{
		Product:    ProductSnapshot{ID: "42", Name: "Chair", Price: 10, Image: "https://example.com/c.png"},
		OccurredAt: at,
	}
	// when
	data, err := event.Payload()
	// then
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product": {"id": "42", "name": "Chair", "price": 10, "image": "https://example.com/c.png", "isBlocked": false},
		"occurred_at": "2025-01-02T03:04:05Z"
	}`, string(data))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "carrier")
}
