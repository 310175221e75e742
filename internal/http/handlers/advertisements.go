package handlers

import (
	"errors"
	"net/http"

	"savora-admin-service/internal/docstore"
	"savora-admin-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

const collectionAdvertisements = "advertisements"

func (h *Handler) AdvertisementsList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.FetchOnce(r.Context(), collectionAdvertisements)
	if err != nil {
		h.Logger.Error("advertisements fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load advertisements")
		return
	}
	response.Success(w, documentList(docs))
}

func (h *Handler) AdvertisementCreate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if _, err := requiredString(fields, "image"); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	id, err := h.Store.AddDocument(r.Context(), collectionAdvertisements, fields)
	if err != nil {
		h.Logger.Error("advertisement create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create advertisement")
		return
	}
	response.Created(w, map[string]any{"id": id})
}

func (h *Handler) AdvertisementUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	err := h.Store.UpdateDocument(r.Context(), collectionAdvertisements, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Advertisement not found")
		return
	}
	if err != nil {
		h.Logger.Error("advertisement update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update advertisement")
		return
	}
	response.Success(w, map[string]any{"id": id})
}

func (h *Handler) AdvertisementDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if doc, err := h.Store.GetDocument(ctx, collectionAdvertisements, id); err == nil {
		h.deleteImageField(ctx, doc.Fields, "image")
	}
	if err := h.Store.DeleteDocument(ctx, collectionAdvertisements, id); err != nil {
		h.Logger.Error("advertisement delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete advertisement")
		return
	}
	response.Success(w, map[string]any{"deleted": id})
}
