package handlers

import (
	"net/http"
	"strings"
	"time"

	"savora-admin-service/internal/auth"
	"savora-admin-service/pkg/response"

	"golang.org/x/crypto/bcrypt"
)

const collectionAdmins = "admins"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	admins, err := h.Store.FetchOnce(r.Context(), collectionAdmins)
	if err != nil {
		h.Logger.Error("admin lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	for _, doc := range admins {
		email, _ := doc.Fields["email"].(string)
		if !strings.EqualFold(strings.TrimSpace(email), req.Email) {
			continue
		}
		hash, _ := doc.Fields["passwordHash"].(string)
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			break
		}

		role := auth.RoleAdmin
		if value, _ := doc.Fields["role"].(string); value == string(auth.RoleManager) {
			role = auth.RoleManager
		}
		expiry := time.Duration(h.Config.JWTExpirySeconds) * time.Second
		token, err := auth.GenerateAccessToken(doc.ID, role, req.Email, h.Config.JWTSecret, expiry)
		if err != nil {
			h.Logger.Error("token generation failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
			return
		}

		name, _ := doc.Fields["name"].(string)
		response.Success(w, map[string]any{
			"accessToken": token,
			"expiresIn":   h.Config.JWTExpirySeconds,
			"user": map[string]any{
				"id":    doc.ID,
				"email": req.Email,
				"name":  name,
				"role":  role,
			},
		})
		return
	}

	response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
}
