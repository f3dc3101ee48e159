package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"roombook/internal/availability"
	"roombook/internal/meetings/service"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type MeetingHandler struct {
	service service.MeetingService
	log     *logger.Logger
}

func NewMeetingHandler(service service.MeetingService, log *logger.Logger) *MeetingHandler {
	return &MeetingHandler{
		service: service,
		log:     log,
	}
}

type AvailabilityResponse struct {
	RoomID                string    `json:"room_id,omitempty"`
	UserID                string    `json:"user_id,omitempty"`
	StartDate             time.Time `json:"start_date"`
	DurationMin           int       `json:"duration_min"`
	Available             bool      `json:"available"`
	ConflictingMeetingIDs []string  `json:"conflicting_meeting_ids"`
}

func newAvailabilityResponse(result availability.Availability, start time.Time, duration time.Duration) AvailabilityResponse {
	ids := result.ConflictIDs()
	if ids == nil {
		ids = []string{}
	}
	return AvailabilityResponse{
		StartDate:             start,
		DurationMin:           int(duration / time.Minute),
		Available:             result.Available,
		ConflictingMeetingIDs: ids,
	}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var meeting model.Meeting
	if !h.decode(w, r, "Create", &meeting) {
		return
	}

	if err := h.service.Create(r.Context(), &meeting); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, meeting); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *MeetingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	meeting, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", meeting)
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.MeetingUpdate
	if !h.decode(w, r, "Update", &updates) {
		return
	}

	meeting, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	h.writeSuccess(w, "Update", meeting)
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, r, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *MeetingHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	meeting, err := h.service.Approve(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Approve", err)
		return
	}

	h.writeSuccess(w, "Approve", meeting)
}

// RoomAvailability answers whether a room is free for start/duration_min,
// optionally ignoring the meeting being edited.
func (h *MeetingHandler) RoomAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, duration, err := extractWindow(r)
	if err != nil {
		h.writeError(w, r, "RoomAvailability", err)
		return
	}

	roomID := ps.ByName("id")
	result, err := h.service.CheckRoom(r.Context(), roomID, start, duration, r.URL.Query().Get("exclude_meeting_id"))
	if err != nil {
		h.writeError(w, r, "RoomAvailability", err)
		return
	}

	resp := newAvailabilityResponse(result, start, duration)
	resp.RoomID = roomID
	h.writeSuccess(w, "RoomAvailability", resp)
}

func (h *MeetingHandler) ParticipantAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, duration, err := extractWindow(r)
	if err != nil {
		h.writeError(w, r, "ParticipantAvailability", err)
		return
	}

	userID := ps.ByName("id")
	result, err := h.service.CheckParticipant(r.Context(), userID, start, duration)
	if err != nil {
		h.writeError(w, r, "ParticipantAvailability", err)
		return
	}

	resp := newAvailabilityResponse(result, start, duration)
	resp.UserID = userID
	h.writeSuccess(w, "ParticipantAvailability", resp)
}

func (h *MeetingHandler) Recommend(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RecommendationRequest
	if !h.decode(w, r, "Recommend", &req) {
		return
	}

	recs, err := h.service.Recommend(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "Recommend", err)
		return
	}

	h.writeSuccess(w, "Recommend", recs)
}

func (h *MeetingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/meetings", h.Create)
	router.GET("/api/v1/meetings/id/:id", h.GetByID)
	router.PATCH("/api/v1/meetings/id/:id", h.Update)
	router.DELETE("/api/v1/meetings/id/:id", h.Delete)
	router.POST("/api/v1/meetings/id/:id/approve", h.Approve)

	router.GET("/api/v1/rooms/:id/availability", h.RoomAvailability)
	router.GET("/api/v1/users/:id/availability", h.ParticipantAvailability)

	router.POST("/api/v1/recommendations", h.Recommend)
}

func extractWindow(r *http.Request) (time.Time, time.Duration, error) {
	start, err := httputil.ExtractTime(r, "start")
	if err != nil {
		return time.Time{}, 0, err
	}
	duration, err := httputil.ExtractMinutes(r, "duration_min")
	if err != nil {
		return time.Time{}, 0, err
	}
	return start, duration, nil
}

func (h *MeetingHandler) decode(w http.ResponseWriter, r *http.Request, handler string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, handler, apperrors.New(apperrors.CodeBadRequest, "Invalid request body", http.StatusBadRequest))
		return false
	}
	return true
}

func (h *MeetingHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	log := logger.FromContext(r.Context(), h.log)
	switch {
	case apperrors.AsAppError(err).StatusCode() >= http.StatusInternalServerError:
		log.Error("request failed", "handler", handler, "error", err)
	case apperrors.IsCode(err, apperrors.CodeRoomNotAvailable):
		log.Info("room not available", "handler", handler, "details", apperrors.AsAppError(err).Details)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *MeetingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
