package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverer(t *testing.T) {
	// given
	h := Recoverer(testLogger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	// when
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	// then
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeErrorResponse(t, rec)
	assert.Equal(t, internalErrorMessage, body.Message)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRecoverer_AbortHandlerIsRethrown(t *testing.T) {
	h := Recoverer(testLogger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecoverer_KeepsStartedResponse(t *testing.T) {
	// given
	h := Recoverer(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late failure")
	}))
	rec := httptest.NewRecorder()
	// when
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	// then
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRecoverer_DoesNotAppendErrorBody(t *testing.T) {
	// given
	h := Recoverer(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	}))
	rec := httptest.NewRecorder()
	// when
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestStructuredLogger_PassesThrough(t *testing.T) {
	h := StructuredLogger(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
