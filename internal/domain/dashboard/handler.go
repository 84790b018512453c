package dashboard

import (
	"net/http"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/middleware"
	"github.com/adearn/adearn-api/internal/pkg/response"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /me/dashboard
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), middleware.GetAccountID(r.Context()))
	if err != nil {
		account.WriteError(w, err)
		return
	}
	response.OK(w, d)
}
