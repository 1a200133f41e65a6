package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: users})
}

type createUserRequest struct {
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Branch   string      `json:"branch"`
	Role     models.Role `json:"role"`
	Password string      `json:"password"`
}

func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Message: "invalid request body", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	user := models.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Branch:   req.Branch,
		Role:     req.Role,
	}
	if err := h.users.Create(r.Context(), user, req.Password); err != nil {
		h.CreateResponse(w, Response{Message: "user not created", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}
	h.CreateResponse(w, Response{Message: "user created", Code: http.StatusCreated, Data: user})
}

func (h *Handler) DeactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.users.Deactivate(r.Context(), username); err != nil {
		h.CreateResponse(w, Response{Message: "user not deactivated", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}
	h.CreateResponse(w, Response{Message: "user deactivated", Code: http.StatusOK})
}
