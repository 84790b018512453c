package dashboard

import (
	"context"
	"time"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/ledger"
)

const (
	recentLimit = 5
	chartDays   = 7
)

// DayIncome is one bar of the weekly income chart.
type DayIncome struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Income int64  `json:"income"`
}

// Stats summarises an account for the home screen.
type Stats struct {
	Balance          int64 `json:"balance"`
	TotalEarned      int64 `json:"total_earned"`
	EarnedToday      int64 `json:"earned_today"`
	PendingWithdraw  int64 `json:"pending_withdraw"`
	PendingDeposit   int64 `json:"pending_deposit"`
	ReferralEarnings int64 `json:"referral_earnings"`
}

// Dashboard is the GET /me/dashboard payload.
type Dashboard struct {
	Account account.AccountResponse `json:"account"`
	Stats   Stats                   `json:"stats"`
	Weekly  []DayIncome             `json:"weekly"`
	Recent  []ledger.Transaction    `json:"recent"`
	Insight string                  `json:"insight"`
}

// Insighter supplies the advisory line.
type Insighter interface {
	Insight(ctx context.Context, name string, balance int64) string
}

type Service struct {
	accounts *account.Service
	insight  Insighter
}

func NewService(accounts *account.Service, insight Insighter) *Service {
	return &Service{accounts: accounts, insight: insight}
}

func (s *Service) Get(ctx context.Context, namespace string) (*Dashboard, error) {
	snap, err := s.accounts.Load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	d := Build(snap, s.accounts.Catalogue(), s.accounts.Now())
	if s.insight != nil {
		d.Insight = s.insight.Insight(ctx, snap.Account.Name, snap.Account.Balance)
	}
	return d, nil
}

// Build derives the dashboard from a snapshot. Days are calendar days in
// now's location, oldest first.
func Build(snap account.Snapshot, cat *catalogue.Catalogue, now time.Time) *Dashboard {
	d := &Dashboard{
		Account: account.NewAccountResponse(snap.Account, cat),
		Stats: Stats{
			Balance:     snap.Account.Balance,
			TotalEarned: snap.Account.TotalEarned,
		},
		Recent: snap.Ledger.Recent(recentLimit),
	}

	if d.Recent == nil {
		d.Recent = []ledger.Transaction{}
	}

	today := startOfDay(now)
	first := today.AddDate(0, 0, -(chartDays - 1))
	d.Weekly = make([]DayIncome, chartDays)
	for i := range d.Weekly {
		day := first.AddDate(0, 0, i)
		d.Weekly[i] = DayIncome{Name: day.Weekday().String()[:3], Date: day.Format(time.DateOnly)}
	}

	pending := snap.Ledger.Pending()
	for _, tx := range pending {
		switch tx.Type {
		case ledger.TypeWithdraw:
			d.Stats.PendingWithdraw += tx.Amount
		case ledger.TypeDeposit:
			d.Stats.PendingDeposit += tx.Amount
		}
	}

	for tx := range snap.Ledger.Entries() {
		if tx.Status != ledger.StatusCompleted {
			continue
		}
		if tx.Type == ledger.TypeReferral {
			d.Stats.ReferralEarnings += tx.Amount
		}
		if tx.Type != ledger.TypeEarning && tx.Type != ledger.TypeReferral {
			continue
		}
		day := startOfDay(tx.Date.In(now.Location()))
		if day.Before(first) || day.After(today) {
			continue
		}
		idx := dayIndex(first, day)
		d.Weekly[idx].Income += tx.Amount
		if idx == chartDays-1 {
			d.Stats.EarnedToday += tx.Amount
		}
	}

	return d
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayIndex counts calendar days, which stays correct across DST changes.
func dayIndex(first, day time.Time) int {
	for i := 0; i < chartDays; i++ {
		if first.AddDate(0, 0, i).Equal(day) {
			return i
		}
	}
	return chartDays - 1
}
