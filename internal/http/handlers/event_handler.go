package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"service-planner/internal/domain"
	"service-planner/internal/service"
)

type EventHandler struct {
	events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) Register(mux *http.ServeMux, auth *AuthMiddleware) {
	mux.HandleFunc("GET /api/events", auth.Require(h.handleList))
	mux.HandleFunc("GET /api/events/export.ics", auth.Require(h.handleExportICS))
	mux.HandleFunc("GET /api/events/{id}", auth.Require(h.handleGet))
	mux.HandleFunc("POST /api/events", auth.Require(h.handleCreate))
	mux.HandleFunc("POST /api/events/multiple", auth.Require(h.handleCreateMultiple))
	mux.HandleFunc("PUT /api/events/{id}", auth.Require(h.handleUpdate))
	mux.HandleFunc("DELETE /api/events/clear", auth.Require(h.handleClear))
	mux.HandleFunc("DELETE /api/events/{id}", auth.Require(h.handleDelete))
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Recurrence  string `json:"recurrence"`
}

type updateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Day         *string `json:"day"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
}

func (h *EventHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	events, err := h.events.List(r.Context(), userID, r.URL.Query().Get("day"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(events),
		"data":    events,
	})
}

func (h *EventHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.events.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": event})
}

func (h *EventHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.events.Create(r.Context(), userID, service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Day:         req.Day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "events created",
		"count":   len(created),
		"data":    created,
	})
}

func (h *EventHandler) handleCreateMultiple(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var raws []domain.RawEvent
	if !decodeBody(w, r, &raws) {
		return
	}

	created, err := h.events.CreateBatch(r.Context(), userID, raws)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "multiple events created",
		"count":   len(created),
		"data":    created,
	})
}

func (h *EventHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req updateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.events.Update(r.Context(), userID, id, service.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Day:         req.Day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
}

func (h *EventHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.events.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (h *EventHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	removed, err := h.events.Clear(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "all events deleted",
		"count":   removed,
	})
}

func (h *EventHandler) handleExportICS(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ics, err := h.events.ExportICS(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	_, _ = w.Write([]byte(ics))
}
