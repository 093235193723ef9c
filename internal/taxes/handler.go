package taxes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/logistiga/logistiga/internal/platform/httpx"
)

// Handler manages tax aggregate endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers tax routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{annee}", h.listYear)
	r.Get("/{annee}/{mois}", h.listMonth)
	r.Post("/{annee}/{mois}/recompute", h.recompute)
	r.Post("/{annee}/{mois}/cloture", h.closeMonth)
}

func (h *Handler) listYear(w http.ResponseWriter, r *http.Request) {
	annee, err := strconv.Atoi(chi.URLParam(r, "annee"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}

	buckets, err := h.service.ListYear(r.Context(), annee)
	if err != nil {
		h.respondError(w, "list tax year", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"taxes": buckets})
}

func (h *Handler) listMonth(w http.ResponseWriter, r *http.Request) {
	annee, mois, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}

	buckets, err := h.service.ListMonth(r.Context(), annee, mois)
	if err != nil {
		h.respondError(w, "list tax month", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"taxes": buckets})
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	annee, mois, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}

	if err := h.service.RecomputeMonth(r.Context(), annee, mois); err != nil {
		h.respondError(w, "recompute tax month", err)
		return
	}

	buckets, err := h.service.ListMonth(r.Context(), annee, mois)
	if err != nil {
		h.respondError(w, "list tax month", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"taxes": buckets})
}

func (h *Handler) closeMonth(w http.ResponseWriter, r *http.Request) {
	annee, mois, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}

	if err := h.service.CloseMonth(r.Context(), annee, mois); err != nil {
		h.respondError(w, "close tax month", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrInvalidPeriod) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func parsePeriod(r *http.Request) (int, int, error) {
	annee, err := strconv.Atoi(chi.URLParam(r, "annee"))
	if err != nil {
		return 0, 0, err
	}
	mois, err := strconv.Atoi(chi.URLParam(r, "mois"))
	if err != nil {
		return 0, 0, err
	}
	return annee, mois, nil
}
