package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
	"github.com/cardops/emboss-services/internal/embosssvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	ingest    *service.IngestService
	query     *service.QueryService
	export    *service.ExportService
	users     *service.UserService
}

func NewHandler(ingest *service.IngestService, query *service.QueryService,
	export *service.ExportService, users *service.UserService) *Handler {
	return &Handler{ingest: ingest, query: query, export: export, users: users}
}

func (h *Handler) InitAuth(secret string) {
	h.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

// writeError maps the service error taxonomy onto HTTP statuses. Validation
// and decode failures are the caller's to fix; persistence failures are ours.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	var decodeErr *models.DecodeError

	switch {
	case errors.As(err, &validationErr):
		h.CreateResponse(w, Response{
			Message: "upload rejected",
			Code:    http.StatusBadRequest,
			Data:    map[string]interface{}{"missing_columns": validationErr.MissingColumns},
			Error:   validationErr.Error(),
		})
	case errors.As(err, &decodeErr):
		h.CreateResponse(w, Response{
			Message: "upload rejected",
			Code:    http.StatusBadRequest,
			Error:   decodeErr.Error(),
		})
	default:
		h.CreateResponse(w, Response{
			Message: "internal error",
			Code:    http.StatusInternalServerError,
			Error:   err.Error(),
		})
	}
}

// requestScope rebuilds the requester scope from the verified JWT claims.
func (h *Handler) requestScope(r *http.Request) (models.RequesterScope, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return models.RequesterScope{}, err
	}
	return models.RequesterScope{
		UserID: claimString(claims, "user_id"),
		Role:   models.Role(claimString(claims, "role")),
		Branch: claimString(claims, "branch"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "card tracking service is running",
		Code:    http.StatusOK,
	})
}
