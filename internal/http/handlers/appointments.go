package handlers

import (
	"errors"
	"net/http"
	"time"

	"savora-admin-service/internal/docstore"
	"savora-admin-service/internal/middleware"
	"savora-admin-service/internal/queue"
	"savora-admin-service/internal/reporting"
	"savora-admin-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var appointmentStatuses = map[string]bool{
	string(reporting.StatusNotReceivedRoom):  true,
	string(reporting.StatusReceivedRoom):     true,
	string(reporting.StatusNotReceivedGoods): true,
	string(reporting.StatusReceivedGoods):    true,
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) AppointmentsList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.FetchOnce(r.Context(), reporting.CollectionAppointments)
	if err != nil {
		h.Logger.Error("appointments fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load appointments")
		return
	}
	response.Success(w, documentList(docs))
}

func (h *Handler) AppointmentGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.Store.GetDocument(r.Context(), reporting.CollectionAppointments, id)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Appointment not found")
		return
	}
	if err != nil {
		h.Logger.Error("appointment fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load appointment")
		return
	}
	response.Success(w, documentPayload(doc))
}

// AppointmentUpdateStatus moves a booking through its lifecycle and emits a
// status event for the notification workers when a queue is attached.
func (h *Handler) AppointmentUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if !appointmentStatuses[req.Status] {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status: "+req.Status)
		return
	}

	doc, err := h.Store.GetDocument(ctx, reporting.CollectionAppointments, id)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Appointment not found")
		return
	}
	if err != nil {
		h.Logger.Error("appointment fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update appointment")
		return
	}

	oldStatus, _ := doc.Fields["status"].(string)
	if err := h.Store.UpdateDocument(ctx, reporting.CollectionAppointments, id, map[string]any{
		"status": req.Status,
	}); err != nil {
		h.Logger.Error("status update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update appointment")
		return
	}

	if h.Queue != nil {
		actor := ""
		if ac, ok := middleware.GetAuthContext(ctx); ok {
			actor = ac.UserID
		}
		event := queue.AppointmentStatusEvent{
			AppointmentID: id,
			OldStatus:     oldStatus,
			NewStatus:     req.Status,
			ChangedBy:     actor,
			ChangedAt:     time.Now().UTC(),
		}
		if err := h.Queue.PublishAppointmentStatus(ctx, event); err != nil {
			h.Logger.Warn("status event publish failed", zap.String("appointment_id", id), zapError(err))
		}
	}

	response.Success(w, map[string]any{"id": id, "status": req.Status})
}

func (h *Handler) AppointmentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteDocument(r.Context(), reporting.CollectionAppointments, id); err != nil {
		h.Logger.Error("appointment delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete appointment")
		return
	}
	response.Success(w, map[string]any{"deleted": id})
}
