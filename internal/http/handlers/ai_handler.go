package handlers

import (
	"net/http"

	"service-planner/internal/domain"
	"service-planner/internal/schedule"
	"service-planner/internal/service"
)

type AIHandler struct {
	ai *service.AIService
}

func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

func (h *AIHandler) Register(mux *http.ServeMux, auth *AuthMiddleware) {
	mux.HandleFunc("POST /api/ai/suggest-timetable", auth.Require(h.handleSuggestTimetable))
	mux.HandleFunc("POST /api/ai/suggest", auth.Require(h.handleSuggestPlacements))
}

type suggestTimetableRequest struct {
	Prompt string            `json:"prompt"`
	Events []domain.RawEvent `json:"events"`
}

type suggestPlacementsRequest struct {
	Tasks       []domain.ScheduleTask `json:"tasks"`
	Constraints struct {
		Earliest string `json:"earliest"`
		Latest   string `json:"latest"`
	} `json:"constraints"`
}

func (h *AIHandler) handleSuggestTimetable(w http.ResponseWriter, r *http.Request) {
	var req suggestTimetableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.ai.SuggestTimetable(r.Context(), req.Prompt, req.Events)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"result":       result.JSON,
		"fallbackUsed": result.FallbackUsed,
	})
}

func (h *AIHandler) handleSuggestPlacements(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req suggestPlacementsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	placed, err := h.ai.SuggestPlacements(r.Context(), userID, req.Tasks, schedule.Constraints{
		Earliest: req.Constraints.Earliest,
		Latest:   req.Constraints.Latest,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"suggested": placed,
	})
}
