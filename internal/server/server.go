// Package server exposes the classification service over HTTP: POST
// /classify, POST /feedback, and GET /health, with CORS for browser
// clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stowage-labs/stowage/internal/feedback"
	"github.com/stowage-labs/stowage/internal/llm"
	"github.com/stowage-labs/stowage/internal/model"
)

// maxDescriptionLength bounds the description field, in characters.
const maxDescriptionLength = 2000

const maxBodySize = 64 << 10 // 64KB

// genericServiceMessage is the only message unexpected failures leak.
const genericServiceMessage = "Service temporarily unavailable. Please try again."

// Classifier runs one classification request.
type Classifier interface {
	Classify(ctx context.Context, description string) (model.ClassificationResult, error)
}

// FeedbackSink persists user feedback entries.
type FeedbackSink interface {
	SaveFeedback(ctx context.Context, entry model.FeedbackEntry) error
}

// Deps carries the collaborators the HTTP layer composes.
type Deps struct {
	Classifier Classifier
	Feedback   FeedbackSink
	Logger     *slog.Logger
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewHandler builds the service router.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(cors)
	r.Use(recoverer(deps.Logger))

	r.Get("/health", handleHealth)
	r.Post("/classify", handleClassify(deps))
	r.Post("/feedback", handleFeedback(deps))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: fmt.Sprintf("Unknown endpoint: %s %s", req.Method, req.URL.Path),
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: fmt.Sprintf("Unknown endpoint: %s %s", req.Method, req.URL.Path),
		})
	})

	return r
}

// cors sets permissive CORS headers and answers preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// recoverer converts panics into the generic service error. Internal details
// never reach the caller.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic serving request",
						"method", req.Method, "path", req.URL.Path, "panic", rec)
					writeJSON(w, http.StatusInternalServerError, errorResponse{
						Error:   "service_error",
						Message: genericServiceMessage,
					})
				}
			}()
			next.ServeHTTP(w, req)
		})
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type classifyRequest struct {
	Description *string `json:"description"`
}

func handleClassify(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, maxBodySize)
		defer req.Body.Close()

		var body classifyRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			validationError(w, "Invalid JSON in request body")
			return
		}

		description, errMsg := validateDescription(body.Description)
		if errMsg != "" {
			validationError(w, errMsg)
			return
		}

		result, err := deps.Classifier.Classify(req.Context(), description)
		if err != nil {
			deps.Logger.Error("classification failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error:   "service_error",
				Message: serviceMessage(err),
			})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

type feedbackRequest struct {
	Description    *string `json:"description"`
	Classification *string `json:"classification"`
	IsCorrect      *bool   `json:"is_correct"`
}

func handleFeedback(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, maxBodySize)
		defer req.Body.Close()

		var body feedbackRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			validationError(w, "Invalid JSON in request body")
			return
		}

		description, errMsg := validateDescription(body.Description)
		if errMsg != "" {
			validationError(w, errMsg)
			return
		}
		if body.Classification == nil {
			validationError(w, "Missing required field: classification")
			return
		}
		classification, err := model.ParseCategory(*body.Classification)
		if err != nil {
			validationError(w, fmt.Sprintf("Invalid classification: %q", *body.Classification))
			return
		}
		if body.IsCorrect == nil {
			validationError(w, "Missing required field: is_correct")
			return
		}

		entry := feedback.NewEntry(description, classification, *body.IsCorrect)
		if err := deps.Feedback.SaveFeedback(req.Context(), entry); err != nil {
			deps.Logger.Error("failed to save feedback", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error:   "service_error",
				Message: genericServiceMessage,
			})
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{
			"id":     entry.ID,
			"status": "saved",
		})
	}
}

// validateDescription enforces the 1-2000 character, non-blank contract
// shared by both POST endpoints. Returns the trimmed value or a message
// naming the violation.
func validateDescription(description *string) (string, string) {
	if description == nil {
		return "", "Missing required field: description"
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return "", "Please enter a product description"
	}
	if len([]rune(trimmed)) > maxDescriptionLength {
		return "", "Description must not exceed 2000 characters"
	}
	return trimmed, ""
}

// serviceMessage maps a classification error onto its caller-safe message.
// Only the known engine taxonomy is surfaced verbatim.
func serviceMessage(err error) string {
	for _, sentinel := range []error{llm.ErrTimeout, llm.ErrRateLimited, llm.ErrConnection, llm.ErrService} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return genericServiceMessage
}

func validationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "validation_error",
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
