package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func Test_ContextHandler_Handle(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	testCases := []struct {
		name     string
		ctx      context.Context
		expected map[string]string
		absent   []string
	}{
		{
			name:   "Empty context",
			ctx:    context.Background(),
			absent: []string{"request_id", "trace_id", "span_id"},
		},
		{
			name:     "Request ID only",
			ctx:      context.WithValue(context.Background(), middleware.RequestIDKey, "req-1"),
			expected: map[string]string{"request_id": "req-1"},
			absent:   []string{"trace_id"},
		},
		{
			name: "Request and trace IDs",
			ctx: trace.ContextWithSpanContext(
				context.WithValue(context.Background(), middleware.RequestIDKey, "req-2"), spanCtx),
			expected: map[string]string{
				"request_id": "req-2",
				"trace_id":   traceID.String(),
				"span_id":    spanID.String(),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "test")
			// when
			logger.InfoContext(tc.ctx, "message")
			// then
			record := decode(t, &buf)
			assert.Equal(t, "test", record["component"])
			for k, v := range tc.expected {
				assert.Equal(t, v, record[k], k)
			}
			for _, k := range tc.absent {
				assert.NotContains(t, record, k)
			}
		})
	}
}

func Test_ContextHandler_RequestIDWrittenOnce(t *testing.T) {
	// given
	var buf bytes.Buffer
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-3")
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).
		With("component", "rest").
		With("operation", "create")

	// when
	logger.InfoContext(ctx, "first")
	logger.WarnContext(ctx, "second")

	// then
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"request_id":"req-3"`), line)
	}
}
