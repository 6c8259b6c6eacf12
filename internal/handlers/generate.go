package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"promptswitcher/internal/generator"
	"promptswitcher/pkg/logging/logging"
)

// Error bodies returned to clients. Details stay in the server log.
const (
	msgNoIdea        = "No idea provided"
	msgNoTextOutput  = "OpenAI returned no text output"
	msgUpstreamError = "OpenAI failed"
	msgBodyTooLarge  = "Request body too large"
)

// Generator is the part of generator.Service the handler needs.
type Generator interface {
	Generate(ctx context.Context, idea string) (*generator.Generation, error)
}

// GenerateHandler serves POST /generate.
type GenerateHandler struct {
	Generator Generator
}

func NewGenerateHandler(g Generator) *GenerateHandler {
	return &GenerateHandler{Generator: g}
}

type generateRequest struct {
	Idea string `json:"idea"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req generateRequest
	if !isJSON(r.Header.Get("Content-Type")) {
		// non-JSON bodies count as "no idea"
		logger.Debug("unsupported content type", zap.String("content_type", r.Header.Get("Content-Type")))
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("request body too large", zap.Int64("limit", tooLarge.Limit))
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgBodyTooLarge})
			return
		}
		// unreadable bodies count as "no idea"
		logger.Debug("invalid request body", zap.Error(err))
	}

	gen, err := h.Generator.Generate(ctx, req.Idea)
	if err != nil {
		status, msg := classify(err)
		logger.Warn("generate failed",
			zap.Int("status", status),
			zap.Error(err),
			zap.Duration("total_latency", time.Since(start)),
		)
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	logger.Info("generate",
		zap.String("hash", gen.Key.Hash),
		zap.Bool("cache_hit", gen.CacheHit),
		zap.Duration("total_latency", time.Since(start)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gen.Payload)
}

// isJSON accepts application/json and any +json media type.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

// classify maps generator errors onto the HTTP status and client message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, generator.ErrInvalidInput):
		return http.StatusBadRequest, msgNoIdea
	case errors.Is(err, generator.ErrNoTextReturned):
		return http.StatusInternalServerError, msgNoTextOutput
	default:
		return http.StatusInternalServerError, msgUpstreamError
	}
}

// writeJSON is a small helper to send JSON responses consistently.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
