package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/logistiga/logistiga/internal/platform/httpx"
)

// Handler exposes read endpoints over the cash ledger.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/balances", h.balances)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f := filtersFromQuery(r)

	var (
		entries  []Entry
		total    int
		balances []Balance
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		entries, total, err = h.repo.List(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = h.repo.Balances(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("list ledger entries", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":  entries,
		"total":    total,
		"balances": balances,
		"limit":    f.Limit,
		"offset":   f.Offset,
	})
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.repo.Balances(r.Context())
	if err != nil {
		h.logger.Error("ledger balances", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"balances": balances})
}

func filtersFromQuery(r *http.Request) ListFilters {
	q := r.URL.Query()
	f := ListFilters{Limit: 50}

	if v := q.Get("compte"); v == string(CompteCaisse) || v == string(CompteBanque) {
		c := Compte(v)
		f.Compte = &c
	}
	if v := q.Get("sens"); v == string(SensEntree) || v == string(SensSortie) {
		s := Sens(v)
		f.Sens = &s
	}
	if v := q.Get("categorie"); v != "" {
		f.Categorie = &v
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateTo = &t
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}
	return f
}
