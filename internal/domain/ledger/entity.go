package ledger

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeEarning  Type = "earning"
	TypeDeposit  Type = "deposit"
	TypeWithdraw Type = "withdraw"
	TypeReferral Type = "referral"
)

func (t Type) Valid() bool {
	switch t {
	case TypeEarning, TypeDeposit, TypeWithdraw, TypeReferral:
		return true
	}
	return false
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusRejected:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry. Amount is a positive magnitude.
type Transaction struct {
	ID     string    `json:"id"`
	Type   Type      `json:"type"`
	Amount int64     `json:"amount"`
	Status Status    `json:"status"`
	Date   time.Time `json:"date"`
	Method string    `json:"method"`

	// Destination is the payout account number of a withdrawal.
	Destination string `json:"destination,omitempty"`
	// Reference is the payer's transaction id for a deposit.
	Reference string `json:"reference,omitempty"`
	// Settles is set on settlement entries only.
	Settles string `json:"settles,omitempty"`
}

// NewTransaction stamps a fresh id and date.
func NewTransaction(t Type, amount int64, status Status, method string, now time.Time) Transaction {
	return Transaction{
		ID:     uuid.NewString(),
		Type:   t,
		Amount: amount,
		Status: status,
		Date:   now,
		Method: method,
	}
}
