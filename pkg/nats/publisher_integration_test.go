package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/abgdnv/productapi/pkg/messaging/events"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "PRODUCT_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *tcnats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = tcnats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")

	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to create JetStream context")
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestEnsureStream_Idempotent() {
	name := "PRODUCTS_" + uuid.NewString()[:8]

	_, err := EnsureStream(s.ctx, s.js, name, "idem."+name+".>")
	s.Require().NoError(err)
	stream, err := EnsureStream(s.ctx, s.js, name, "idem."+name+".>")
	s.Require().NoError(err)

	info, err := stream.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(name, info.Config.Name)
}

func (s *PublisherSuite) TestPublish_ProductEvents() {
	// given
	stream, err := EnsureStream(s.ctx, s.js, "PRODUCTS", messaging.ProductsSubjects)
	s.Require().NoError(err)
	before, err := stream.Info(s.ctx)
	s.Require().NoError(err)

	publisher := NewNatsPublisher(s.js, "PRODUCTS")
	id := uuid.NewString()

	// when
	s.Require().NoError(publisher.Publish(s.ctx, events.ProductCreatedEvent{
		Product:    events.ProductSnapshot{ID: id, Name: "Chair", Price: 10, Image: "https://example.com/c.png"},
		OccurredAt: time.Now(),
	}))
	s.Require().NoError(publisher.Publish(s.ctx, events.ProductDeletedEvent{ProductID: id, OccurredAt: time.Now()}))

	// then
	after, err := stream.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(before.State.Msgs+2, after.State.Msgs)

	msg, err := stream.GetLastMsgForSubject(s.ctx, messaging.ProductsDeletedSubject)
	s.Require().NoError(err)
	var deleted events.ProductDeletedEvent
	s.Require().NoError(json.Unmarshal(msg.Data, &deleted))
	s.Equal(id, deleted.ProductID)
	s.Equal("application/json", msg.Header.Get("Content-Type"))
}

// subjectEvent is an event with an arbitrary subject and an empty JSON payload.
type subjectEvent string

func (e subjectEvent) Subject() string        { return string(e) }
func (subjectEvent) Payload() ([]byte, error) { return []byte("{}"), nil }

func (s *PublisherSuite) TestPublish_NoStream() {
	publisher := NewNatsPublisher(s.js, "PRODUCTS")

	err := publisher.Publish(s.ctx, subjectEvent("nowhere."+uuid.NewString()))

	s.Require().Error(err)
}

func (s *PublisherSuite) TestPublish_SubjectOwnedByAnotherStream() {
	// given
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	other, err := EnsureStream(s.ctx, s.js, "AUDIT_"+suffix, "audit."+suffix+".>")
	s.Require().NoError(err)
	publisher := NewNatsPublisher(s.js, "PRODUCTS")

	// when
	err = publisher.Publish(s.ctx, subjectEvent("audit."+suffix+".product"))

	// then
	s.Require().Error(err)
	s.Contains(err.Error(), "PRODUCTS")
	info, err := other.Info(s.ctx)
	s.Require().NoError(err)
	s.Zero(info.State.Msgs)
}
