package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cardops/emboss-services/internal/embosssvc/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler verifies credentials and issues a session token carrying the
// identity the query scope is derived from.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Message: "invalid request body", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.CreateResponse(w, Response{Message: "login failed", Code: http.StatusUnauthorized, Error: err.Error()})
			return
		}
		h.writeError(w, err)
		return
	}

	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"user_id": user.Username,
		"name":    user.Name,
		"role":    string(user.Role),
		"branch":  user.Branch,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "login successful",
		Code:    http.StatusOK,
		Data: map[string]interface{}{
			"token": tokenString,
			"user":  user,
		},
	})
}
