package account

import (
	"time"

	"github.com/adearn/adearn-api/internal/domain/ledger"
)

// Account is the state of one logged-in user.
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Avatar       string `json:"avatar"`
	ReferralCode string `json:"referral_code"`

	Balance     int64 `json:"balance"`
	TotalEarned int64 `json:"total_earned"`

	CurrentPackageID   string     `json:"current_package_id,omitempty"`
	PackageActivatedAt *time.Time `json:"package_activated_at,omitempty"`

	AdsViewedToday int        `json:"ads_viewed_today"`
	LastAdViewAt   *time.Time `json:"last_ad_view_at,omitempty"`
}

// HasSubscription reports whether a package is active.
func (a Account) HasSubscription() bool {
	return a.CurrentPackageID != ""
}

// Snapshot is the durable unit: an account with its ledger.
type Snapshot struct {
	Account Account
	Ledger  ledger.Ledger
}
