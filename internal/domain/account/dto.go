package account

import (
	"time"

	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/ledger"
)

// WithdrawRequest for POST /wallet/withdraw. Amount and required fields are
// checked by the rules so the error order matches the wallet forms.
type WithdrawRequest struct {
	Amount    int64  `json:"amount"`
	Method    string `json:"method" validate:"payment_method"`
	AccountNo string `json:"account_no" validate:"max=32"`
}

// DepositRequest for POST /wallet/deposit
type DepositRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method" validate:"payment_method"`
	TrxID  string `json:"trx_id" validate:"max=64"`
}

// QuotaResponse describes today's ad allowance.
type QuotaResponse struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// AccountResponse represents the account in API responses
type AccountResponse struct {
	Account
	Package *catalogue.Package `json:"package,omitempty"`
	Quota   QuotaResponse      `json:"quota"`
}

// MutationResponse is returned by every operation that records a ledger entry.
type MutationResponse struct {
	Account     AccountResponse    `json:"account"`
	Transaction ledger.Transaction `json:"transaction"`
}

// TransactionsResponse for GET /wallet/transactions
type TransactionsResponse struct {
	Transactions []ledger.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// NewAccountResponse joins the account with its package and quota.
func NewAccountResponse(a Account, cat *catalogue.Catalogue) AccountResponse {
	resp := AccountResponse{Account: a, Quota: QuotaResponse{Used: a.AdsViewedToday}}
	if pkg, ok := cat.Package(a.CurrentPackageID); ok {
		resp.Package = &pkg
		resp.Quota.Limit = pkg.DailyAds
		resp.Quota.Remaining = max(pkg.DailyAds-a.AdsViewedToday, 0)
	}
	return resp
}
