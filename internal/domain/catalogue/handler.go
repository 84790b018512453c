package catalogue

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adearn/adearn-api/internal/pkg/response"
)

// Handler serves the read-only catalogue.
type Handler struct {
	catalogue *Catalogue
}

func NewHandler(c *Catalogue) *Handler {
	return &Handler{catalogue: c}
}

// ListPackages handles GET /catalogue/packages
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.catalogue.Packages())
}

// ListAds handles GET /catalogue/ads
func (h *Handler) ListAds(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.catalogue.Ads())
}

// ListPaymentMethods handles GET /catalogue/payment-methods
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.catalogue.PaymentMethods())
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/packages", h.ListPackages)
	r.Get("/ads", h.ListAds)
	r.Get("/payment-methods", h.ListPaymentMethods)
	return r
}
