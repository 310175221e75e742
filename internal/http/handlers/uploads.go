package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"savora-admin-service/internal/utils"
	"savora-admin-service/pkg/response"

	"go.uber.org/zap"
)

const (
	uploadMaxSide     = 1400
	uploadJpegQuality = 82
	thumbSize         = 300
	thumbJpegQuality  = 80
)

// uploadKinds are the object key prefixes the API accepts for image uploads.
var uploadKinds = map[string]bool{
	"restaurants":    true,
	"tables":         true,
	"options":        true,
	"products":       true,
	"categories":     true,
	"advertisements": true,
}

// readImageUpload pulls the file part out of the multipart body, reading at
// most maxBytes+1 so oversized uploads are rejected without buffering more
// than the cap.
func (h *Handler) readImageUpload(r *http.Request) ([]byte, string, *handlerError) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", &handlerError{message: "File is required"}
	}
	defer file.Close()

	maxBytes := h.Config.MaxFileSizeBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, "", &handlerError{message: "Could not read upload"}
	}
	if int64(len(data)) > maxBytes {
		return nil, "", &handlerError{message: fmt.Sprintf("File size must be less than %d bytes", maxBytes)}
	}
	return data, header.Filename, nil
}

// UploadImage accepts a multipart image, normalizes it to JPEG (EXIF
// orientation applied, long side capped) plus a square thumbnail, and stores
// both in the object store.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	kind := r.FormValue("kind")
	if !uploadKinds[kind] {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown upload kind: "+kind)
		return
	}

	data, filename, readErr := h.readImageUpload(r)
	if readErr != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", readErr.message)
		return
	}

	contentType := utils.DetectContentType(data)
	if !utils.ValidateImageContentType(contentType) {
		response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "Unsupported image type: "+contentType)
		return
	}

	if h.Objects == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Object storage is not configured")
		return
	}

	main, err := utils.EncodeJpegFitInside(data, uploadMaxSide, uploadJpegQuality)
	if err != nil {
		h.Logger.Warn("image encode failed", zap.String("filename", filename), zapError(err))
		response.Error(w, http.StatusUnprocessableEntity, "DECODE_ERROR", "Could not decode image")
		return
	}
	thumb, err := utils.EncodeJpegCoverSquare(data, thumbSize, thumbJpegQuality)
	if err != nil {
		h.Logger.Warn("thumbnail encode failed", zap.String("filename", filename), zapError(err))
		response.Error(w, http.StatusUnprocessableEntity, "DECODE_ERROR", "Could not decode image")
		return
	}

	base := uploadBaseName()
	mainKey := fmt.Sprintf("%s/%s.jpg", kind, base)
	thumbKey := fmt.Sprintf("%s/%s_thumb.jpg", kind, base)

	mainURL, err := h.Objects.PutObject(r.Context(), mainKey, main, "image/jpeg")
	if err != nil {
		h.Logger.Error("object upload failed", zap.String("key", mainKey), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not store image")
		return
	}
	thumbURL, err := h.Objects.PutObject(r.Context(), thumbKey, thumb, "image/jpeg")
	if err != nil {
		h.Logger.Error("thumbnail upload failed", zap.String("key", thumbKey), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not store image")
		return
	}

	response.Created(w, map[string]any{
		"url":      mainURL,
		"thumbUrl": thumbURL,
	})
}

func uploadBaseName() string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
