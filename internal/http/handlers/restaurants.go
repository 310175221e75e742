package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"savora-admin-service/internal/docstore"
	"savora-admin-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const collectionRestaurants = "restaurants"

func tablesCollection(restaurantID string) string {
	return fmt.Sprintf("%s/%s/tables", collectionRestaurants, restaurantID)
}

func optionsCollection(restaurantID string, tableID string) string {
	return fmt.Sprintf("%s/%s/tables/%s/options", collectionRestaurants, restaurantID, tableID)
}

func (h *Handler) RestaurantsList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.FetchOnce(r.Context(), collectionRestaurants)
	if err != nil {
		h.Logger.Error("restaurants fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load restaurants")
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, _ := docs[i].Fields["restaurantName"].(string)
		b, _ := docs[j].Fields["restaurantName"].(string)
		return strings.ToLower(a) < strings.ToLower(b)
	})

	response.Success(w, documentList(docs))
}

func (h *Handler) RestaurantGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.Store.GetDocument(r.Context(), collectionRestaurants, id)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}
	if err != nil {
		h.Logger.Error("restaurant fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load restaurant")
		return
	}
	response.Success(w, documentPayload(doc))
}

func (h *Handler) RestaurantCreate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	for _, key := range []string{"restaurantName", "describe", "businessAddress", "latitude", "longitude"} {
		if _, err := requiredString(fields, key); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	id, err := h.Store.AddDocument(r.Context(), collectionRestaurants, fields)
	if err != nil {
		h.Logger.Error("restaurant create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create restaurant")
		return
	}
	response.Created(w, map[string]any{"id": id})
}

func (h *Handler) RestaurantUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if len(fields) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}

	err := h.Store.UpdateDocument(r.Context(), collectionRestaurants, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}
	if err != nil {
		h.Logger.Error("restaurant update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update restaurant")
		return
	}
	response.Success(w, map[string]any{"id": id})
}

// RestaurantDelete removes a restaurant with its table and option
// subcollections. Stored images are deleted first, best-effort, so a failed
// image removal never leaves a half-deleted restaurant behind.
func (h *Handler) RestaurantDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	doc, err := h.Store.GetDocument(ctx, collectionRestaurants, id)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}
	if err != nil {
		h.Logger.Error("restaurant fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete restaurant")
		return
	}

	tables, err := h.Store.FetchOnce(ctx, tablesCollection(id))
	if err != nil {
		h.Logger.Error("tables fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete restaurant")
		return
	}
	for _, table := range tables {
		options, err := h.Store.FetchOnce(ctx, optionsCollection(id, table.ID))
		if err != nil {
			h.Logger.Error("options fetch failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete restaurant")
			return
		}
		for _, option := range options {
			h.deleteImageField(ctx, option.Fields, "image")
		}
		h.deleteImageField(ctx, table.Fields, "image")
	}
	h.deleteImageField(ctx, doc.Fields, "images")

	if err := h.Store.DeleteCollection(ctx, collectionRestaurants+"/"+id); err != nil {
		h.Logger.Error("subcollection delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete restaurant")
		return
	}
	if err := h.Store.DeleteDocument(ctx, collectionRestaurants, id); err != nil {
		h.Logger.Error("restaurant delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete restaurant")
		return
	}

	response.Success(w, map[string]any{"deleted": id})
}

func (h *Handler) TablesList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	docs, err := h.Store.FetchOnce(r.Context(), tablesCollection(id))
	if err != nil {
		h.Logger.Error("tables fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load tables")
		return
	}
	response.Success(w, documentList(docs))
}

func (h *Handler) TableCreate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if _, err := requiredString(fields, "name"); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tableID, err := h.Store.AddDocument(r.Context(), tablesCollection(id), fields)
	if err != nil {
		h.Logger.Error("table create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create table")
		return
	}
	response.Created(w, map[string]any{"id": tableID})
}

func (h *Handler) TableUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tableID := chi.URLParam(r, "tableId")
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	err := h.Store.UpdateDocument(r.Context(), tablesCollection(id), tableID, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Table not found")
		return
	}
	if err != nil {
		h.Logger.Error("table update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update table")
		return
	}
	response.Success(w, map[string]any{"id": tableID})
}

func (h *Handler) TableDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	tableID := chi.URLParam(r, "tableId")

	options, err := h.Store.FetchOnce(ctx, optionsCollection(id, tableID))
	if err != nil {
		h.Logger.Error("options fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete table")
		return
	}
	for _, option := range options {
		h.deleteImageField(ctx, option.Fields, "image")
		if err := h.Store.DeleteDocument(ctx, optionsCollection(id, tableID), option.ID); err != nil {
			h.Logger.Error("option delete failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete table")
			return
		}
	}

	if doc, err := h.Store.GetDocument(ctx, tablesCollection(id), tableID); err == nil {
		h.deleteImageField(ctx, doc.Fields, "image")
	}
	if err := h.Store.DeleteDocument(ctx, tablesCollection(id), tableID); err != nil {
		h.Logger.Error("table delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete table")
		return
	}
	response.Success(w, map[string]any{"deleted": tableID})
}

func (h *Handler) TableOptionsList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.FetchOnce(r.Context(), optionsCollection(chi.URLParam(r, "id"), chi.URLParam(r, "tableId")))
	if err != nil {
		h.Logger.Error("options fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load options")
		return
	}
	response.Success(w, documentList(docs))
}

func (h *Handler) TableOptionCreate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	optionID, err := h.Store.AddDocument(r.Context(), optionsCollection(chi.URLParam(r, "id"), chi.URLParam(r, "tableId")), fields)
	if err != nil {
		h.Logger.Error("option create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create option")
		return
	}
	response.Created(w, map[string]any{"id": optionID})
}

func (h *Handler) TableOptionDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := optionsCollection(chi.URLParam(r, "id"), chi.URLParam(r, "tableId"))
	optionID := chi.URLParam(r, "optionId")

	if doc, err := h.Store.GetDocument(ctx, collection, optionID); err == nil {
		h.deleteImageField(ctx, doc.Fields, "image")
	}
	if err := h.Store.DeleteDocument(ctx, collection, optionID); err != nil {
		h.Logger.Error("option delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete option")
		return
	}
	response.Success(w, map[string]any{"deleted": optionID})
}

// deleteImageField removes the object(s) behind an image URL field,
// best-effort. The field may hold a single URL or a list of URLs.
func (h *Handler) deleteImageField(ctx context.Context, fields map[string]any, key string) {
	if h.Objects == nil {
		return
	}
	var urls []string
	switch value := fields[key].(type) {
	case string:
		urls = append(urls, value)
	case []any:
		for _, item := range value {
			if url, ok := item.(string); ok {
				urls = append(urls, url)
			}
		}
	}
	for _, url := range urls {
		if strings.TrimSpace(url) == "" {
			continue
		}
		if err := h.Objects.DeleteURL(ctx, url); err != nil {
			h.Logger.Warn("image delete failed", zap.String("url", url), zapError(err))
		}
	}
}

func documentPayload(doc docstore.Document) map[string]any {
	payload := map[string]any{"id": doc.ID}
	for key, value := range doc.Fields {
		payload[key] = value
	}
	return payload
}

func documentList(docs []docstore.Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentPayload(doc))
	}
	return out
}
