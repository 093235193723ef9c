package config

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/logistiga/logistiga/internal/platform/httpx"
	"github.com/logistiga/logistiga/internal/shared"
)

// Handler manages configuration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	repo    *Repository
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, repo *Repository) *Handler {
	return &Handler{logger: logger, service: service, repo: repo}
}

// MountRoutes registers configuration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/taxes", h.getTaxRates)
	r.Put("/taxes", h.updateTaxRates)
	r.Get("/numbering", h.getNumbering)
}

type taxRatesRequest struct {
	TVATaux  decimal.Decimal `json:"tva_taux"`
	CSSTaux  decimal.Decimal `json:"css_taux"`
	TVAActif bool            `json:"tva_actif"`
	CSSActif bool            `json:"css_actif"`
}

func (h *Handler) getTaxRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.TaxRates(r.Context())
	if err != nil {
		h.logger.Error("get tax rates", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, taxRatesRequest{
		TVATaux:  rates.TVATaux,
		CSSTaux:  rates.CSSTaux,
		TVAActif: rates.TVAActif,
		CSSActif: rates.CSSActif,
	})
}

func (h *Handler) updateTaxRates(w http.ResponseWriter, r *http.Request) {
	var req taxRatesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if req.TVATaux.IsNegative() || req.CSSTaux.IsNegative() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "rates must not be negative")
		return
	}

	rates := TaxRates{
		TVATaux:  req.TVATaux,
		CSSTaux:  req.CSSTaux,
		TVAActif: req.TVAActif,
		CSSActif: req.CSSActif,
	}
	if err := h.service.UpdateTaxRates(r.Context(), rates); err != nil {
		h.logger.Error("update tax rates", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) getNumbering(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.repo.Get(r.Context(), KeyNumbering)
	if err != nil {
		h.logger.Error("get numbering config", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg.Data)
}
