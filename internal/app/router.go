package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/logistiga/logistiga/internal/clients"
	"github.com/logistiga/logistiga/internal/config"
	"github.com/logistiga/logistiga/internal/credit"
	"github.com/logistiga/logistiga/internal/documents"
	"github.com/logistiga/logistiga/internal/ledger"
	"github.com/logistiga/logistiga/internal/observability"
	"github.com/logistiga/logistiga/internal/taxes"
	"github.com/logistiga/logistiga/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Metrics          *observability.Metrics
	ClientsHandler   *clients.Handler
	ConfigHandler    *config.Handler
	DocumentsHandler *documents.Handler
	CreditHandler    *credit.Handler
	TaxesHandler     *taxes.Handler
	LedgerHandler    *ledger.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Logistiga defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.ClientsHandler != nil {
			api.Route("/clients", params.ClientsHandler.MountRoutes)
		}
		if params.ConfigHandler != nil {
			api.Route("/config", params.ConfigHandler.MountRoutes)
		}
		if params.DocumentsHandler != nil {
			api.Route("/documents", params.DocumentsHandler.MountRoutes)
		}
		if params.CreditHandler != nil {
			api.Route("/credits", params.CreditHandler.MountRoutes)
		}
		if params.TaxesHandler != nil {
			api.Route("/taxes", params.TaxesHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			api.Route("/ledger", params.LedgerHandler.MountRoutes)
		}
		if params.JobsHandler != nil {
			api.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
