package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/socialchef/cocktail-studio/internal/config"
	apperrors "github.com/socialchef/cocktail-studio/internal/errors"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/logger"
	"github.com/socialchef/cocktail-studio/internal/selftest"
	"github.com/socialchef/cocktail-studio/internal/sentry"
	"github.com/socialchef/cocktail-studio/internal/services/recipe"
	"github.com/socialchef/cocktail-studio/internal/studio"
	"github.com/socialchef/cocktail-studio/internal/validation"
)

const maxBodyBytes = 64 << 10

type Server struct {
	cfg    *config.Config
	studio *studio.Studio
}

func NewServer(cfg *config.Config, st *studio.Studio) *Server {
	return &Server{
		cfg:    cfg,
		studio: st,
	}
}

// InputRequest is the body of every endpoint that takes free text. Input is
// decoded loosely: anything that is not a JSON string counts as empty.
type InputRequest struct {
	Input any `json:"input"`
}

type TriggerResponse struct {
	Triggered bool `json:"triggered"`
	State     any  `json:"state"`
}

type SetTabRequest struct {
	Tab string `json:"tab"`
}

type SetTabResponse struct {
	Active studio.Tab `json:"active"`
}

type SanitizeResponse struct {
	Sanitized string `json:"sanitized"`
}

type RecipesResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

type SelfTestResponse struct {
	Passed  bool              `json:"passed"`
	Results []selftest.Result `json:"results"`
}

type ErrorResponse struct {
	Type               apperrors.ErrorType `json:"type"`
	Message            string              `json:"message"`
	ErrorCode          string              `json:"errorCode"`
	RecoverySuggestion string              `json:"recoverySuggestion,omitempty"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) HandleGetStudio(w http.ResponseWriter, r *http.Request) {
	snap, err := s.studio.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) HandleSetTab(w http.ResponseWriter, r *http.Request) {
	var req SetTabRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tab, err := s.studio.SetActive(r.Context(), req.Tab)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SetTabResponse{Active: tab})
}

// HandleTrigger starts kind with the request input. An input that sanitizes
// to nothing is answered with 200 and the unchanged state.
func (s *Server) HandleTrigger(kind flow.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InputRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		triggered, err := s.studio.Trigger(r.Context(), kind, validation.SanitizeValue(req.Input))
		if err != nil {
			writeError(w, r, err)
			return
		}

		state, err := s.studio.FlowState(r.Context(), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}

		status := http.StatusOK
		if triggered {
			status = http.StatusAccepted
		}
		writeJSON(w, status, TriggerResponse{Triggered: triggered, State: state})
	}
}

func (s *Server) HandleFlowState(kind flow.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.studio.FlowState(r.Context(), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) HandleSanitize(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SanitizeResponse{Sanitized: validation.SanitizeValue(req.Input)})
}

// HandlePreviewRecipes runs the template generator without the simulated
// latency.
func (s *Server) HandlePreviewRecipes(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecipesResponse{
		Recipes: recipe.GenerateMockRecipes(validation.SanitizeValue(req.Input)),
	})
}

func (s *Server) HandleSelfTest(w http.ResponseWriter, r *http.Request) {
	results := selftest.Run()
	writeJSON(w, http.StatusOK, SelfTestResponse{
		Passed:  selftest.Passed(results),
		Results: results,
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is empty", "EMPTY_BODY", "Send a JSON object.")
		}
		return apperrors.NewValidationError("invalid request body", "INVALID_BODY", "Send a valid JSON object.")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("unexpected error", "INTERNAL", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", logger.WithTraceContext(r.Context()),
			"method", r.Method, "path", r.URL.Path, "code", appErr.ErrorCode, "error", err)
		sentry.CaptureError(r.Context(), err, map[string]string{"error_code": appErr.ErrorCode})
	}
	if appErr.IsRetryable() {
		w.Header().Set("Retry-After", "1")
	}

	writeJSON(w, appErr.StatusCode, ErrorResponse{
		Type:               appErr.Type,
		Message:            appErr.Message,
		ErrorCode:          appErr.ErrorCode,
		RecoverySuggestion: appErr.RecoverySuggestion(),
	})
}
