package handlers

import (
	"errors"
	"net/http"

	"savora-admin-service/internal/docstore"
	"savora-admin-service/internal/reporting"
	"savora-admin-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) UsersList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.FetchOnce(r.Context(), reporting.CollectionUsers)
	if err != nil {
		h.Logger.Error("users fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load users")
		return
	}

	// Password hashes never leave the service.
	users := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		payload := documentPayload(doc)
		delete(payload, "passwordHash")
		users = append(users, payload)
	}
	response.Success(w, users)
}

func (h *Handler) UserGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.Store.GetDocument(r.Context(), reporting.CollectionUsers, id)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	if err != nil {
		h.Logger.Error("user fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load user")
		return
	}
	payload := documentPayload(doc)
	delete(payload, "passwordHash")
	response.Success(w, payload)
}

func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteDocument(r.Context(), reporting.CollectionUsers, id); err != nil {
		h.Logger.Error("user delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete user")
		return
	}
	response.Success(w, map[string]any{"deleted": id})
}
