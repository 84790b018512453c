package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adearn/adearn-api/internal/domain/ledger"
	"github.com/adearn/adearn-api/internal/middleware"
	"github.com/adearn/adearn-api/internal/pkg/response"
	"github.com/adearn/adearn-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ns := middleware.GetAccountID(r.Context())
	snap, err := h.svc.Load(r.Context(), ns)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, NewAccountResponse(snap.Account, h.svc.Catalogue()))
}

// Purchase handles POST /packages/{id}/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	ns := middleware.GetAccountID(r.Context())
	snap, tx, err := h.svc.Purchase(r.Context(), ns, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	h.mutated(w, snap, tx)
}

// Withdraw handles POST /wallet/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ns := middleware.GetAccountID(r.Context())
	snap, tx, err := h.svc.Withdraw(r.Context(), ns, req.Amount, req.Method, req.AccountNo)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.mutated(w, snap, tx)
}

// Deposit handles POST /wallet/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ns := middleware.GetAccountID(r.Context())
	snap, tx, err := h.svc.Deposit(r.Context(), ns, req.Amount, req.Method, req.TrxID)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.mutated(w, snap, tx)
}

// Transactions handles GET /wallet/transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	ns := middleware.GetAccountID(r.Context())
	txs, err := h.svc.Transactions(r.Context(), ns)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, TransactionsResponse{Transactions: txs, Count: len(txs), GeneratedAt: h.svc.Now()})
}

func (h *Handler) mutated(w http.ResponseWriter, snap Snapshot, tx ledger.Transaction) {
	response.OK(w, MutationResponse{
		Account:     NewAccountResponse(snap.Account, h.svc.Catalogue()),
		Transaction: tx,
	})
}

// WalletRoutes serves /wallet.
func (h *Handler) WalletRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/withdraw", h.Withdraw)
	r.Post("/deposit", h.Deposit)
	r.Get("/transactions", h.Transactions)
	return r
}

// PackageRoutes serves /packages.
func (h *Handler) PackageRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/{id}/purchase", h.Purchase)
	return r
}
