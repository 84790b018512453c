package ledger

import (
	"encoding/json"
	"iter"
)

// Ledger is an ordered, newest-first sequence of transactions.
// It is a value: Prepend returns a new Ledger and never touches the receiver,
// so a snapshot handed to a reader stays stable.
type Ledger struct {
	entries []Transaction
}

// New builds a ledger from entries already in newest-first order.
func New(entries ...Transaction) Ledger {
	return Ledger{entries: append([]Transaction(nil), entries...)}
}

// Prepend returns a ledger with tx at the head.
func (l Ledger) Prepend(tx Transaction) Ledger {
	next := make([]Transaction, 0, len(l.entries)+1)
	next = append(next, tx)
	next = append(next, l.entries...)
	return Ledger{entries: next}
}

// All returns a copy of every entry, newest first.
func (l Ledger) All() []Transaction {
	return append([]Transaction(nil), l.entries...)
}

// Entries iterates newest first. Each call starts over from the head.
func (l Ledger) Entries() iter.Seq[Transaction] {
	entries := l.entries
	return func(yield func(Transaction) bool) {
		for _, tx := range entries {
			if !yield(tx) {
				return
			}
		}
	}
}

// Recent returns at most n entries from the head.
func (l Ledger) Recent(n int) []Transaction {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n < 0 {
		n = 0
	}
	return append([]Transaction(nil), l.entries[:n]...)
}

func (l Ledger) Len() int {
	return len(l.entries)
}

func (l Ledger) Find(id string) (Transaction, bool) {
	for _, tx := range l.entries {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// SettlementOf returns the entry that settles the pending entry id.
func (l Ledger) SettlementOf(id string) (Transaction, bool) {
	for _, tx := range l.entries {
		if tx.Settles == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// Pending lists pending entries that have not been settled yet.
func (l Ledger) Pending() []Transaction {
	settled := make(map[string]struct{})
	for _, tx := range l.entries {
		if tx.Settles != "" {
			settled[tx.Settles] = struct{}{}
		}
	}

	var out []Transaction
	for _, tx := range l.entries {
		if tx.Status != StatusPending {
			continue
		}
		if _, ok := settled[tx.ID]; ok {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Transaction
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.entries = entries
	return nil
}
