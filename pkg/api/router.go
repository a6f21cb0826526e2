package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options tunes the router around the handlers.
type Options struct {
	DeletedSheet  string
	ResolvedSheet string
	// RateLimit is requests per second; 0 disables throttling.
	RateLimit   float64
	RateBurst   int
	CORSOrigins []string
}

// GetRouter initialises a new http router and applies all routes
func GetRouter(store WellStore, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}
	if opts.RateLimit > 0 {
		r.Use(throttle(opts.RateLimit, opts.RateBurst))
	}

	h := NewHandler(store, opts.DeletedSheet, opts.ResolvedSheet)
	return applyRoutes(r, h)
}

func applyRoutes(r chi.Router, h *Handler) chi.Router {
	r.Route("/", func(r chi.Router) {
		r.Get("/", h.getIndex)
		r.Get("/health", h.getHealth)

		r.Post("/get_pe_re_list", h.getPeReList)
		r.Post("/get_total_gain", h.getTotalGain)
		r.Post("/get_wells", h.getWells)
		r.Post("/save_well", h.saveWell)
		r.Post("/save_well2", h.saveWell)
		r.Post("/add_well", h.addWell)
		r.Post("/delete_well", h.deleteWell)
		r.Post("/move_to_delete", h.moveWell(h.deletedSheet))
		r.Post("/move_to_resolved", h.moveWell(h.resolvedSheet))
		r.Post("/get_dropdown_options", h.getDropdownOptions)
		r.Post("/get_history", h.getHistory)
	})

	return r
}
