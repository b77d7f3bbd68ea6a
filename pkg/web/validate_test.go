package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type bodySchema struct {
	Name  string `json:"name"  validate:"required,min=3,max=10"`
	Price *int64 `json:"price" validate:"required,min=0"`
}

type querySchema struct {
	Limit *int `form:"limit" validate:"omitnil,min=1,max=1000"`
}

type paramsSchema struct {
	ID string `form:"id" validate:"required,uuid"`
}

// capture records whether the handler ran and what payload it saw.
type capture[T any] struct {
	called  bool
	payload T
	found   bool
}

func (c *capture[T]) handler(loc Location) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.payload, c.found = Payload[T](r.Context(), loc)
		w.WriteHeader(http.StatusNoContent)
	})
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestValidate_Body(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectedCode int
		details      []string
	}{
		{name: "valid", body: `{"name":"Chair","price":0}`, expectedCode: http.StatusNoContent},
		{name: "empty body", body: ``, expectedCode: http.StatusBadRequest, details: []string{"request body is required"}},
		{name: "invalid json", body: `{"name":`, expectedCode: http.StatusBadRequest, details: []string{"request body must be valid JSON"}},
		{name: "wrong type", body: `{"name":"Chair","price":true}`, expectedCode: http.StatusBadRequest, details: []string{"price must be of type integer"}},
		{name: "unknown field", body: `{"name":"Chair","price":1,"x":1}`, expectedCode: http.StatusBadRequest, details: []string{`"x" is not allowed`}},
		{name: "trailing newline", body: "{\"name\":\"Chair\",\"price\":1}\n", expectedCode: http.StatusNoContent},
		{
			name:         "second object",
			body:         `{"name":"Chair","price":1}{"name":"Table","price":2}`,
			expectedCode: http.StatusBadRequest,
			details:      []string{"request body must contain a single JSON object"},
		},
		{name: "trailing garbage", body: `{"name":"Chair","price":1} x`, expectedCode: http.StatusBadRequest, details: []string{"request body must contain a single JSON object"}},
		{
			name:         "several violations",
			body:         `{"name":"ab"}`,
			expectedCode: http.StatusBadRequest,
			details:      []string{"name must be at least 3 characters long", "price is required"},
		},
		{name: "too long", body: `{"name":"abcdefghijk","price":1}`, expectedCode: http.StatusBadRequest, details: []string{"name must be at most 10 characters long"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			sv := NewSchemaValidator(testLogger)
			c := &capture[bodySchema]{}
			h := Validate[bodySchema](sv, Body)(c.handler(Body))
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			// when
			h.ServeHTTP(rec, req)
			// then
			require.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedCode == http.StatusNoContent {
				assert.True(t, c.called)
				require.True(t, c.found)
				assert.Equal(t, "Chair", c.payload.Name)
				return
			}
			assert.False(t, c.called, "handler must not run on invalid input")
			body := decodeErrorResponse(t, rec)
			assert.Equal(t, http.StatusBadRequest, body.StatusCode)
			assert.Equal(t, "Bad Request", body.Error)
			assert.ElementsMatch(t, tc.details, body.Details)
		})
	}
}

func TestValidate_BodyTooLarge(t *testing.T) {
	sv := NewSchemaValidator(testLogger)
	c := &capture[bodySchema]{}
	h := Validate[bodySchema](sv, Body)(c.handler(Body))
	large := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `","price":1}`
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(large)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, c.called)
}

func TestValidate_Query(t *testing.T) {
	testCases := []struct {
		name         string
		query        string
		expectedCode int
		expected     *int
		details      []string
	}{
		{name: "absent", query: "", expectedCode: http.StatusNoContent},
		{name: "coerced from string", query: "?limit=25", expectedCode: http.StatusNoContent, expected: intPtr(25)},
		{name: "below minimum", query: "?limit=0", expectedCode: http.StatusBadRequest, details: []string{"limit must be greater than or equal to 1"}},
		{name: "above maximum", query: "?limit=1001", expectedCode: http.StatusBadRequest, details: []string{"limit must be less than or equal to 1000"}},
		{name: "not a number", query: "?limit=ten", expectedCode: http.StatusBadRequest, details: []string{"limit has an invalid value"}},
		{name: "repeated", query: "?limit=1&limit=2", expectedCode: http.StatusBadRequest, details: []string{"limit must be provided only once"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sv := NewSchemaValidator(testLogger)
			c := &capture[querySchema]{}
			h := Validate[querySchema](sv, Query)(c.handler(Query))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+tc.query, nil))

			require.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedCode == http.StatusNoContent {
				assert.Equal(t, tc.expected, c.payload.Limit)
				return
			}
			assert.False(t, c.called)
			assert.Equal(t, tc.details, decodeErrorResponse(t, rec).Details)
		})
	}
}

func TestValidate_Params(t *testing.T) {
	testCases := []struct {
		name         string
		id           string
		expectedCode int
	}{
		{name: "valid uuid", id: "123e4567-e89b-12d3-a456-426614174000", expectedCode: http.StatusNoContent},
		{name: "invalid uuid", id: "filter", expectedCode: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sv := NewSchemaValidator(testLogger)
			c := &capture[paramsSchema]{}
			r := chi.NewRouter()
			r.With(Validate[paramsSchema](sv, Params)).Method(http.MethodGet, "/items/{id}", c.handler(Params))
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+tc.id, nil))

			require.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedCode == http.StatusNoContent {
				assert.Equal(t, tc.id, c.payload.ID)
				return
			}
			assert.False(t, c.called)
			assert.Equal(t, []string{"id must be a valid GUID"}, decodeErrorResponse(t, rec).Details)
		})
	}
}

func TestPayload_DistinctLocations(t *testing.T) {
	ctx := withPayload(t.Context(), Params, paramsSchema{ID: "a"})

	_, ok := Payload[paramsSchema](ctx, Body)
	assert.False(t, ok)
	p, ok := Payload[paramsSchema](ctx, Params)
	assert.True(t, ok)
	assert.Equal(t, "a", p.ID)
}

func intPtr(v int) *int { return &v }
