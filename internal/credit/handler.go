package credit

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/logistiga/logistiga/internal/platform/httpx"
	"github.com/logistiga/logistiga/internal/shared"
)

// Handler manages bank credit endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers credit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.updateTerms)
	r.Post("/echeances/{id}/paiement", h.recordRepayment)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCreditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	credit, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create credit", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, credit)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	credit, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get credit", err)
		return
	}
	httpx.JSON(w, http.StatusOK, credit)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	credits, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, "list credits", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"credits": credits,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) updateTerms(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	var req UpdateTermsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	credit, err := h.service.UpdateTerms(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update credit terms", err)
		return
	}
	httpx.JSON(w, http.StatusOK, credit)
}

func (h *Handler) recordRepayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	var req RecordRepaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	echeance, err := h.service.RecordRepayment(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "record repayment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, echeance)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "credit not found")
	case errors.Is(err, ErrInvalidTerms):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrAlreadyPaid):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
