package customer

import (
	"errors"
	"net/http"
	"strconv"

	"doorparts-be/internal/httpx"
	"doorparts-be/internal/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(admin *mux.Router) {
	admin.HandleFunc("/customers", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/customers/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/customers/{id}/notes", h.listNotes).Methods(http.MethodGet)
	admin.HandleFunc("/customers/{id}/notes", h.addNote).Methods(http.MethodPost)
	admin.HandleFunc("/customers/{id}/emails", h.emailHistory).Methods(http.MethodGet)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := &FilterInput{}
	if s := q.Get("search"); s != "" {
		filter.Search = &s
	}

	limit := int32(20)
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	page := int32(1)
	if v, err := strconv.ParseInt(q.Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}

	customers, total, err := h.svc.List(r.Context(), filter, limit, (page-1)*limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	if customers == nil {
		customers = []*Customer{}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"customers": customers,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	c, err := h.svc.GetByID(r.Context(), id)
	if errors.Is(err, ErrCustomerNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load customer")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	notes, err := h.svc.Notes(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	if notes == nil {
		notes = []*Note{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "body", Message: "required"})
		return
	}

	staffID, ok := middleware.StaffIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	n, err := h.svc.AddNote(r.Context(), id, staffID, req.Body)
	if errors.Is(err, ErrCustomerNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to add note")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) emailHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	limit := int32(50)
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}

	entries, err := h.svc.EmailHistory(r.Context(), id, limit)
	if errors.Is(err, ErrCustomerNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load email history")
		return
	}
	if entries == nil {
		entries = []*EmailLogEntry{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"emails": entries})
}
