package account

import (
	"math"
	"strings"
	"time"

	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/ledger"
)

const (
	MinWithdrawAmount int64 = 100
	MinDepositAmount  int64 = 500
	MaxDepositAmount  int64 = 1_000_000

	MethodWallet   = "wallet"
	MethodAdSystem = "Ad System"
)

// The Apply* functions are pure: they take an account by value and return
// the next account plus the ledger entry to prepend. On error the input is
// returned unchanged and no entry is produced.

// ApplyPurchase activates pkg. Switching from another package is allowed;
// the unused quota of the previous package is dropped.
func ApplyPurchase(a Account, pkg catalogue.Package, now time.Time) (Account, ledger.Transaction, error) {
	if a.Balance < pkg.Price {
		return a, ledger.Transaction{}, ErrInsufficientBalance
	}

	next := a
	next.Balance -= pkg.Price
	next.CurrentPackageID = pkg.ID
	activated := now
	next.PackageActivatedAt = &activated

	tx := ledger.NewTransaction(ledger.TypeDeposit, pkg.Price, ledger.StatusCompleted, MethodWallet, now)
	return next, tx, nil
}

// ApplyAdReward credits a completed ad view. It never fails.
func ApplyAdReward(a Account, ad catalogue.Ad, now time.Time) (Account, ledger.Transaction) {
	next := a
	next.Balance += ad.Reward
	next.TotalEarned += ad.Reward
	next.AdsViewedToday++
	viewed := now
	next.LastAdViewAt = &viewed

	tx := ledger.NewTransaction(ledger.TypeEarning, ad.Reward, ledger.StatusCompleted, MethodAdSystem, now)
	return next, tx
}

// ApplyWithdraw debits the balance immediately; the entry stays pending
// until a reviewer settles it.
func ApplyWithdraw(a Account, amount int64, method, accountNo string, now time.Time) (Account, ledger.Transaction, error) {
	if amount < MinWithdrawAmount || amount > a.Balance {
		return a, ledger.Transaction{}, ErrInvalidAmount
	}
	if strings.TrimSpace(method) == "" {
		return a, ledger.Transaction{}, missing("method")
	}
	if strings.TrimSpace(accountNo) == "" {
		return a, ledger.Transaction{}, missing("account_no")
	}

	next := a
	next.Balance -= amount

	tx := ledger.NewTransaction(ledger.TypeWithdraw, amount, ledger.StatusPending, method, now)
	tx.Destination = accountNo
	return next, tx, nil
}

// ApplyDeposit records a pending deposit. The balance is credited only
// when the deposit is approved.
func ApplyDeposit(a Account, amount int64, method, trxID string, now time.Time) (Account, ledger.Transaction, error) {
	if amount < MinDepositAmount || amount > MaxDepositAmount {
		return a, ledger.Transaction{}, ErrInvalidAmount
	}
	if strings.TrimSpace(method) == "" {
		return a, ledger.Transaction{}, missing("method")
	}
	if strings.TrimSpace(trxID) == "" {
		return a, ledger.Transaction{}, missing("trx_id")
	}

	tx := ledger.NewTransaction(ledger.TypeDeposit, amount, ledger.StatusPending, method, now)
	tx.Reference = trxID
	return a, tx, nil
}

// ApplySettlement resolves a pending deposit or withdrawal. The pending
// entry is left as is; a new completed or rejected entry pointing at it is
// produced instead. Approved deposits credit the balance and rejected
// withdrawals refund it.
func ApplySettlement(s Snapshot, txID string, approve bool, now time.Time) (Account, ledger.Transaction, error) {
	a := s.Account

	pending, ok := s.Ledger.Find(txID)
	if !ok || pending.Status != ledger.StatusPending {
		return a, ledger.Transaction{}, ErrNotSettleable
	}
	if pending.Type != ledger.TypeDeposit && pending.Type != ledger.TypeWithdraw {
		return a, ledger.Transaction{}, ErrNotSettleable
	}
	if _, settled := s.Ledger.SettlementOf(txID); settled {
		return a, ledger.Transaction{}, ErrNotSettleable
	}

	status := ledger.StatusRejected
	if approve {
		status = ledger.StatusCompleted
	}

	next := a
	if (pending.Type == ledger.TypeDeposit && approve) || (pending.Type == ledger.TypeWithdraw && !approve) {
		balance, ok := credit(a.Balance, pending.Amount)
		if !ok {
			return a, ledger.Transaction{}, ErrInvalidAmount
		}
		next.Balance = balance
	}

	tx := ledger.NewTransaction(pending.Type, pending.Amount, status, pending.Method, now)
	tx.Reference = pending.Reference
	tx.Destination = pending.Destination
	tx.Settles = pending.ID
	return next, tx, nil
}

// Rollover zeroes the daily counter when the last rewarded view happened on
// an earlier calendar day in now's location. Accounts with no recorded view
// are left alone.
func Rollover(a Account, now time.Time) Account {
	if a.LastAdViewAt == nil || a.AdsViewedToday == 0 {
		return a
	}
	if sameDay(a.LastAdViewAt.In(now.Location()), now) {
		return a
	}
	next := a
	next.AdsViewedToday = 0
	return next
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// credit adds a positive amount to balance, failing instead of wrapping.
func credit(balance, amount int64) (int64, bool) {
	if amount <= 0 || balance > math.MaxInt64-amount {
		return balance, false
	}
	return balance + amount, true
}
