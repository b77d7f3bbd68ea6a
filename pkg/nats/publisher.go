package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsPublisher writes product events into a single JetStream stream. A publish whose subject
// is captured by a different stream, or by none, is rejected by the server.
type NatsPublisher struct {
	js     jetstream.JetStream
	stream string
}

var _ messaging.Publisher = (*NatsPublisher)(nil)

func NewNatsPublisher(js jetstream.JetStream, stream string) *NatsPublisher {
	return &NatsPublisher{js: js, stream: stream}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Subject(), err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")

	if _, err = p.js.PublishMsg(ctx, msg, jetstream.WithExpectStream(p.stream)); err != nil {
		return fmt.Errorf("failed to publish %s to stream %s: %w", event.Subject(), p.stream, err)
	}
	return nil
}
