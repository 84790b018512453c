package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/ledger"
	"github.com/adearn/adearn-api/internal/middleware"
	"github.com/adearn/adearn-api/internal/pkg/logger"
	"github.com/adearn/adearn-api/internal/pkg/response"
)

// Handler lets reviewers settle pending deposits and withdrawals.
type Handler struct {
	accounts *account.Service
}

func NewHandler(accounts *account.Service) *Handler {
	return &Handler{accounts: accounts}
}

// SettlementResponse for approve and reject
type SettlementResponse struct {
	AccountID   string             `json:"account_id"`
	Balance     int64              `json:"balance"`
	Transaction ledger.Transaction `json:"transaction"`
}

// ListPending handles GET /admin/transactions
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.accounts.Pending(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("list pending failed")
		response.InternalError(w)
		return
	}
	if pending == nil {
		pending = []account.PendingEntry{}
	}
	response.OK(w, pending)
}

// Approve handles POST /admin/transactions/{ns}/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, true)
}

// Reject handles POST /admin/transactions/{ns}/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, false)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request, approve bool) {
	ns := chi.URLParam(r, "ns")
	id := chi.URLParam(r, "id")

	snap, tx, err := h.accounts.Settle(r.Context(), ns, id, approve)
	if err != nil {
		account.WriteError(w, err)
		return
	}

	logger.FromContext(r.Context()).Info().
		Str("reviewer", middleware.GetAccountID(r.Context())).
		Str("account_id", ns).
		Str("settles", id).
		Str("status", string(tx.Status)).
		Msg("transaction settled")

	response.OK(w, SettlementResponse{AccountID: ns, Balance: snap.Account.Balance, Transaction: tx})
}

// Routes requires an admin token.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())
	r.Get("/", h.ListPending)
	r.Post("/{ns}/{id}/approve", h.Approve)
	r.Post("/{ns}/{id}/reject", h.Reject)
	return r
}
