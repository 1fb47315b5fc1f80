package staff

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"doorparts-be/internal/httpx"

	"github.com/gorilla/mux"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts auth endpoints on the public router and staff
// administration on the admin router.
func (h *Handler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	public.HandleFunc("/auth/password-reset", h.requestReset).Methods(http.MethodPost)
	public.HandleFunc("/auth/password-reset/confirm", h.confirmReset).Methods(http.MethodPost)

	admin.HandleFunc("/staff", h.create).Methods(http.MethodPost)
	admin.HandleFunc("/staff", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/staff/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/staff/{id}", h.update).Methods(http.MethodPut)
	admin.HandleFunc("/staff/{id}", h.delete).Methods(http.MethodDelete)
}

type staffResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(s *Staff) staffResponse {
	return staffResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Role:      s.Role,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteValidationError(w,
			httpx.FieldError{Field: "email", Message: "required"},
			httpx.FieldError{Field: "password", Message: "required"},
		)
		return
	}

	token, member, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"staff": toResponse(member),
	})
}

func (h *Handler) requestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to process reset request")
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

func (h *Handler) confirmReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) < 8 {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "password", Message: "must be at least 8 characters"})
		return
	}

	err := h.svc.ConfirmPasswordReset(r.Context(), req.Token, req.Password)
	if errors.Is(err, ErrResetTokenInvalid) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     Role   `json:"role"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || len(req.Password) < 8 {
		httpx.WriteValidationError(w,
			httpx.FieldError{Field: "email", Message: "required"},
			httpx.FieldError{Field: "password", Message: "must be at least 8 characters"},
		)
		return
	}

	member, err := h.svc.Create(r.Context(), req.Name, req.Email, req.Password, req.Role)
	switch {
	case errors.Is(err, ErrEmailExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create staff member")
	default:
		httpx.WriteJSON(w, http.StatusCreated, toResponse(member))
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list staff")
		return
	}

	out := make([]staffResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func idFromRequest(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	return uint(id), err
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	member, err := h.svc.GetByID(r.Context(), id)
	if errors.Is(err, ErrStaffNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load staff member")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(member))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   Role   `json:"role"`
		Active bool   `json:"active"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member := &Staff{ID: id, Name: req.Name, Email: req.Email, Role: req.Role, Active: req.Active}
	err = h.svc.Update(r.Context(), member)
	switch {
	case errors.Is(err, ErrStaffNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update staff member")
	default:
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = h.svc.Delete(r.Context(), id)
	if errors.Is(err, ErrStaffNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete staff member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
