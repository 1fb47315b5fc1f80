package enquiry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"doorparts-be/internal/httpx"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Notifier announces a new enquiry to the back office.
type Notifier interface {
	EnquiryReceived(ctx context.Context, name, email string)
}

type Handler struct {
	repo     Repository
	notifier Notifier
}

func NewHandler(repo Repository, notifier Notifier) *Handler {
	return &Handler{repo: repo, notifier: notifier}
}

func (h *Handler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/enquiries", h.create).Methods(http.MethodPost)

	admin.HandleFunc("/enquiries", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/enquiries/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/enquiries/{id}", h.delete).Methods(http.MethodDelete)
	admin.HandleFunc("/enquiries/{id}/resolve", h.resolve).Methods(http.MethodPost)
}

type createRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Subject   string  `json:"subject"`
	Message   string  `json:"message"`
	ProductID *string `json:"productId,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var fields []httpx.FieldError
	if req.Name == "" {
		fields = append(fields, httpx.FieldError{Field: "name", Message: "required"})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields = append(fields, httpx.FieldError{Field: "email", Message: "valid email required"})
	}
	if req.Message == "" {
		fields = append(fields, httpx.FieldError{Field: "message", Message: "required"})
	}
	if len(fields) > 0 {
		httpx.WriteValidationError(w, fields...)
		return
	}

	e := &Enquiry{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if req.ProductID != nil {
		pid, err := uuid.Parse(*req.ProductID)
		if err != nil {
			httpx.WriteValidationError(w, httpx.FieldError{Field: "productId", Message: "invalid uuid"})
			return
		}
		e.ProductID = &pid
	}

	if err := h.repo.Create(r.Context(), e); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to submit enquiry")
		return
	}

	h.notifier.EnquiryReceived(r.Context(), e.Name, e.Email)

	httpx.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var status *Status
	if s := q.Get("status"); s == string(StatusOpen) || s == string(StatusResolved) {
		st := Status(s)
		status = &st
	}

	limit := int32(20)
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	page := int32(1)
	if v, err := strconv.ParseInt(q.Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}

	enquiries, err := h.repo.List(r.Context(), status, limit, (page-1)*limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list enquiries")
		return
	}
	if enquiries == nil {
		enquiries = []*Enquiry{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"enquiries": enquiries})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid enquiry id")
		return
	}

	e, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrEnquiryNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load enquiry")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid enquiry id")
		return
	}

	err = h.repo.SetStatus(r.Context(), id, StatusResolved)
	if errors.Is(err, ErrEnquiryNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to resolve enquiry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid enquiry id")
		return
	}

	err = h.repo.Delete(r.Context(), id)
	if errors.Is(err, ErrEnquiryNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete enquiry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
