package handlers

import (
	"errors"
	"net/http"

	"savora-admin-service/internal/docstore"
	"savora-admin-service/internal/reporting"
	"savora-admin-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) MenuCategoriesList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.FetchOnce(r.Context(), reporting.CollectionMenu)
	if err != nil {
		h.Logger.Error("menu fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load menu categories")
		return
	}
	response.Success(w, documentList(docs))
}

func (h *Handler) MenuCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if _, err := requiredString(fields, "name"); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	id, err := h.Store.AddDocument(r.Context(), reporting.CollectionMenu, fields)
	if err != nil {
		h.Logger.Error("category create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create category")
		return
	}
	response.Created(w, map[string]any{"id": id})
}

func (h *Handler) MenuCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryId")
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	err := h.Store.UpdateDocument(r.Context(), reporting.CollectionMenu, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}
	if err != nil {
		h.Logger.Error("category update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update category")
		return
	}
	response.Success(w, map[string]any{"id": id})
}

// MenuCategoryDelete removes a category together with its products and their
// stored images.
func (h *Handler) MenuCategoryDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "categoryId")

	products, err := h.Store.FetchOnce(ctx, reporting.ProductsCollection(id))
	if err != nil {
		h.Logger.Error("products fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete category")
		return
	}
	for _, product := range products {
		h.deleteImageField(ctx, product.Fields, "image")
	}
	if doc, err := h.Store.GetDocument(ctx, reporting.CollectionMenu, id); err == nil {
		h.deleteImageField(ctx, doc.Fields, "image")
	}

	if err := h.Store.DeleteCollection(ctx, reporting.CollectionMenu+"/"+id); err != nil {
		h.Logger.Error("products delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete category")
		return
	}
	if err := h.Store.DeleteDocument(ctx, reporting.CollectionMenu, id); err != nil {
		h.Logger.Error("category delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete category")
		return
	}
	response.Success(w, map[string]any{"deleted": id})
}

func (h *Handler) ProductsList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Store.FetchOnce(r.Context(), reporting.ProductsCollection(chi.URLParam(r, "categoryId")))
	if err != nil {
		h.Logger.Error("products fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load products")
		return
	}
	response.Success(w, documentList(docs))
}

func (h *Handler) ProductCreate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if _, err := requiredString(fields, "name"); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	id, err := h.Store.AddDocument(r.Context(), reporting.ProductsCollection(chi.URLParam(r, "categoryId")), fields)
	if err != nil {
		h.Logger.Error("product create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create product")
		return
	}
	response.Created(w, map[string]any{"id": id})
}

func (h *Handler) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	collection := reporting.ProductsCollection(chi.URLParam(r, "categoryId"))
	id := chi.URLParam(r, "productId")
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	err := h.Store.UpdateDocument(r.Context(), collection, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}
	if err != nil {
		h.Logger.Error("product update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update product")
		return
	}
	response.Success(w, map[string]any{"id": id})
}

func (h *Handler) ProductDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := reporting.ProductsCollection(chi.URLParam(r, "categoryId"))
	id := chi.URLParam(r, "productId")

	if doc, err := h.Store.GetDocument(ctx, collection, id); err == nil {
		h.deleteImageField(ctx, doc.Fields, "image")
	}
	if err := h.Store.DeleteDocument(ctx, collection, id); err != nil {
		h.Logger.Error("product delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not delete product")
		return
	}
	response.Success(w, map[string]any{"deleted": id})
}
