package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stowage-labs/stowage/internal/llm"
	"github.com/stowage-labs/stowage/internal/model"
)

type stubClassifier struct {
	result  model.ClassificationResult
	err     error
	panics  bool
	gotDesc string
}

func (s *stubClassifier) Classify(_ context.Context, description string) (model.ClassificationResult, error) {
	s.gotDesc = description
	if s.panics {
		panic("boom")
	}
	return s.result, s.err
}

type stubSink struct {
	saved []model.FeedbackEntry
	err   error
}

func (s *stubSink) SaveFeedback(_ context.Context, entry model.FeedbackEntry) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, entry)
	return nil
}

func newTestServer(classifier Classifier, sink FeedbackSink) *httptest.Server {
	return httptest.NewServer(NewHandler(Deps{Classifier: classifier, Feedback: sink}))
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestClassifyEndpoint(t *testing.T) {
	classifier := &stubClassifier{result: model.ClassificationResult{
		Classification: model.CategoryPouch,
		Confidence:     92,
		Reasoning:      "small and light",
	}}
	srv := newTestServer(classifier, &stubSink{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/classify", `{"description": "  a deck of cards  "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "POUCH", body["classification"])
	assert.Equal(t, float64(92), body["confidence"])
	assert.Equal(t, "a deck of cards", classifier.gotDesc, "description is trimmed")
}

func TestClassifyValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{not json`, "Invalid JSON in request body"},
		{"missing description", `{}`, "Missing required field: description"},
		{"blank description", `{"description": "   "}`, "Please enter a product description"},
		{"too long", `{"description": "` + strings.Repeat("a", 2001) + `"}`, "Description must not exceed 2000 characters"},
	}

	srv := newTestServer(&stubClassifier{}, &stubSink{})
	defer srv.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/classify", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, "validation_error", body["error"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestClassifyEngineErrorsSurfaceCallerSafeMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"timeout", llm.ErrTimeout, "Request timed out. Please try again."},
		{"rate limited", llm.ErrRateLimited, "Service is busy. Please try again in a moment."},
		{"connection", llm.ErrConnection, "Unable to connect to classification service."},
		{"service", llm.ErrService, "Classification service error. Please try again."},
		{"unexpected", assert.AnError, "Service temporarily unavailable. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubClassifier{err: tt.err}, &stubSink{})
			defer srv.Close()

			resp := postJSON(t, srv.URL+"/classify", `{"description": "a thing"}`)
			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, "service_error", body["error"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestPanicBecomesGenericServiceError(t *testing.T) {
	srv := newTestServer(&stubClassifier{panics: true}, &stubSink{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/classify", `{"description": "a thing"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "service_error", body["error"])
	assert.Equal(t, "Service temporarily unavailable. Please try again.", body["message"])
	assert.NotContains(t, body["message"], "boom")
}

func TestFeedbackEndpoint(t *testing.T) {
	sink := &stubSink{}
	srv := newTestServer(&stubClassifier{}, sink)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/feedback",
		`{"description": "electric kick scooter", "classification": "OVERSIZED", "is_correct": true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "saved", body["status"])
	assert.NotEmpty(t, body["id"])

	require.Len(t, sink.saved, 1)
	entry := sink.saved[0]
	assert.Equal(t, model.CategoryOversized, entry.Classification)
	assert.True(t, entry.IsCorrect)
	assert.Contains(t, entry.Keywords, "scooter")
}

func TestFeedbackValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing classification", `{"description": "a thing", "is_correct": true}`, "Missing required field: classification"},
		{"bad classification", `{"description": "a thing", "classification": "HUGE", "is_correct": true}`, `Invalid classification: "HUGE"`},
		{"missing is_correct", `{"description": "a thing", "classification": "TOTE"}`, "Missing required field: is_correct"},
		{"missing description", `{"classification": "TOTE", "is_correct": false}`, "Missing required field: description"},
	}

	srv := newTestServer(&stubClassifier{}, &stubSink{})
	defer srv.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/feedback", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, "validation_error", body["error"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubClassifier{}, &stubSink{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&stubClassifier{}, &stubSink{})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/classify", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newTestServer(&stubClassifier{}, &stubSink{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "not_found", body["error"])
	assert.Contains(t, body["message"], "GET /nope")
}
