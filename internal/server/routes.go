package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"auto_crm/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/deals", func(r chi.Router) {
				r.Post("/", handler(s.postV1Deal))
				r.Get("/", handler(s.getV1Deals))
				r.Get("/{id}", handler(s.getV1Deal))
				r.Post("/{id}/status", handler(s.postV1DealStatus))
				r.Put("/{id}/commission-rate", handler(s.putV1DealCommissionRate))
			})

			r.Get("/statuses/{status}/transitions", handler(s.getV1StatusTransitions))
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
