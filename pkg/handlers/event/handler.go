package event

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

// Handler exposes the remediation pipeline over HTTP for systems that push
// Trusted Advisor events at us instead of invoking the CLI.
type Handler struct {
	pipeline *remediation.Pipeline
	registry remediation.Registry
}

func NewHandler(pipeline *remediation.Pipeline, registry remediation.Registry) *Handler {
	return &Handler{pipeline: pipeline, registry: registry}
}

// HandleEvent runs one inbound event through the named remediator.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	name := chi.URLParam(r, "remediator")

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.Run(ctx, name, raw)
	if err != nil {
		var notRegistered *remediation.ErrNotRegistered
		switch {
		case errors.As(err, &notRegistered):
			http.Error(w, err.Error(), http.StatusNotFound)
		case remediation.IsValidation(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			// Unexpected provider failure; surface it so the invoking
			// system's retry policy can take over.
			http.Error(w, "remediation failed", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Error().Err(err).Msg("failed to encode result")
	}
}

// ListRemediators returns the registered remediator names.
func (h *Handler) ListRemediators(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.registry.List()); err != nil {
		logger.Error().Err(err).Msg("failed to encode remediator list")
	}
}
