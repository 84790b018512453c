package account

import (
	"encoding/json"
	"fmt"

	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/ledger"
)

// Record is the persisted form of a Snapshot: two opaque JSON blobs stored
// under one namespace.
type Record struct {
	Account      []byte
	Transactions []byte
}

// Encode serializes a snapshot.
func Encode(s Snapshot) (Record, error) {
	acc, err := json.Marshal(s.Account)
	if err != nil {
		return Record{}, fmt.Errorf("encode account: %w", err)
	}
	txs, err := json.Marshal(s.Ledger)
	if err != nil {
		return Record{}, fmt.Errorf("encode transactions: %w", err)
	}
	return Record{Account: acc, Transactions: txs}, nil
}

// Decode parses and validates a record against the catalogue. Any defect is
// reported as ErrCorruptPersistedState.
func Decode(rec Record, cat *catalogue.Catalogue) (Snapshot, error) {
	if len(rec.Account) == 0 || len(rec.Transactions) == 0 {
		return Snapshot{}, corrupt("incomplete record")
	}

	var s Snapshot
	if err := json.Unmarshal(rec.Account, &s.Account); err != nil {
		return Snapshot{}, corrupt("account: %v", err)
	}
	if err := json.Unmarshal(rec.Transactions, &s.Ledger); err != nil {
		return Snapshot{}, corrupt("transactions: %v", err)
	}

	a := s.Account
	switch {
	case a.ID == "":
		return Snapshot{}, corrupt("account without id")
	case a.Balance < 0:
		return Snapshot{}, corrupt("negative balance %d", a.Balance)
	case a.TotalEarned < 0:
		return Snapshot{}, corrupt("negative total earned %d", a.TotalEarned)
	case a.AdsViewedToday < 0:
		return Snapshot{}, corrupt("negative ad counter %d", a.AdsViewedToday)
	}
	if a.CurrentPackageID != "" {
		if _, ok := cat.Package(a.CurrentPackageID); !ok {
			return Snapshot{}, corrupt("unknown package %q", a.CurrentPackageID)
		}
	}

	seen := make(map[string]struct{}, s.Ledger.Len())
	for tx := range s.Ledger.Entries() {
		if err := validateEntry(tx); err != nil {
			return Snapshot{}, err
		}
		if _, dup := seen[tx.ID]; dup {
			return Snapshot{}, corrupt("duplicate transaction %s", tx.ID)
		}
		seen[tx.ID] = struct{}{}
	}

	return s, nil
}

func validateEntry(tx ledger.Transaction) error {
	switch {
	case tx.ID == "":
		return corrupt("transaction without id")
	case !tx.Type.Valid():
		return corrupt("transaction %s has type %q", tx.ID, tx.Type)
	case !tx.Status.Valid():
		return corrupt("transaction %s has status %q", tx.ID, tx.Status)
	case tx.Amount <= 0:
		return corrupt("transaction %s has amount %d", tx.ID, tx.Amount)
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptPersistedState, fmt.Sprintf(format, args...))
}
