// Package server exposes the advisor engine over HTTP for the web
// frontend: one JSON endpoint that evaluates a position.
package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"pickomino/engine"
	"pickomino/searcher"
)

type Handler struct {
	engine *engine.Engine
}

func New(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// Routes wires the API endpoints.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/evaluate", h.handleEvaluate)
	return withCORS(mux)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	logger := log.With().Str("requestId", uuid.NewString()).Logger()

	var req engine.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logger.Info().
		Ints("hand", req.Hand).
		Ints("diceThrow", req.DiceThrow).
		Int("simulations", req.Simulations).
		Msg("evaluation requested")

	results, err := h.engine.Evaluate(req)
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrEngineUnavailable):
		logger.Error().Err(err).Msg("engine unavailable")
		writeError(w, http.StatusServiceUnavailable, "engine unavailable")
	case err != nil:
		logger.Error().Err(err).Msg("evaluation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, evaluateResponse{Actions: toRecords(results)})
	}
}

// Wire records mirror the shape the frontend charts were built against.

type historyPoint struct {
	Simulations   int     `json:"simulations"`
	ExpectedScore float64 `json:"expected_score"`
}

type actionRecord struct {
	Action        string         `json:"action"`
	ExpectedScore float64        `json:"expected_score"`
	VisitCount    int            `json:"visit_count"`
	History       []historyPoint `json:"history"`
}

type evaluateResponse struct {
	Actions []actionRecord `json:"actions"`
}

func toRecords(results []searcher.ActionResult) []actionRecord {
	records := make([]actionRecord, 0, len(results))
	for _, result := range results {
		history := make([]historyPoint, 0, len(result.Convergence))
		for _, sample := range result.Convergence {
			history = append(history, historyPoint{
				Simulations:   sample.Simulations,
				ExpectedScore: sample.ExpectedValue,
			})
		}
		records = append(records, actionRecord{
			Action:        result.Action.String(),
			ExpectedScore: result.ExpectedValue,
			VisitCount:    result.Visits,
			History:       history,
		})
	}
	return records
}
