package insight

import (
	"net/http"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/middleware"
	"github.com/adearn/adearn-api/internal/pkg/response"
)

type Response struct {
	Text string `json:"text"`
}

type Handler struct {
	service  *Service
	accounts *account.Service
}

func NewHandler(service *Service, accounts *account.Service) *Handler {
	return &Handler{service: service, accounts: accounts}
}

// Get handles GET /insight
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.accounts.Load(r.Context(), middleware.GetAccountID(r.Context()))
	if err != nil {
		account.WriteError(w, err)
		return
	}
	text := h.service.Insight(r.Context(), snap.Account.Name, snap.Account.Balance)
	response.OK(w, Response{Text: text})
}
