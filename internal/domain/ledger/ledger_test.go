package ledger

import (
	"encoding/json"
	"testing"
	"time"
)

func entry(id string, status Status) Transaction {
	return Transaction{ID: id, Type: TypeDeposit, Amount: 500, Status: status, Date: time.Unix(0, 0).UTC(), Method: "bkash"}
}

func TestPrependKeepsNewestFirst(t *testing.T) {
	var l Ledger
	for _, id := range []string{"a", "b", "c"} {
		l = l.Prepend(entry(id, StatusCompleted))
	}

	all := l.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	want := []string{"c", "b", "a"}
	for i, tx := range all {
		if tx.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], tx.ID)
		}
	}
}

func TestPrependDoesNotMutateReceiver(t *testing.T) {
	base := New(entry("a", StatusCompleted))
	next := base.Prepend(entry("b", StatusCompleted))

	if base.Len() != 1 {
		t.Fatalf("receiver changed: len=%d", base.Len())
	}
	if next.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", next.Len())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	l := New(entry("a", StatusCompleted))
	all := l.All()
	all[0].Amount = 1

	if got, _ := l.Find("a"); got.Amount != 500 {
		t.Fatalf("ledger mutated through All(): %d", got.Amount)
	}
}

func TestEntriesIsRestartable(t *testing.T) {
	l := New(entry("c", StatusCompleted), entry("b", StatusCompleted), entry("a", StatusCompleted))

	collect := func() []string {
		var ids []string
		for tx := range l.Entries() {
			ids = append(ids, tx.ID)
		}
		return ids
	}

	first := collect()
	second := collect()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("unexpected lengths %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("iteration %d differs: %s vs %s", i, first[i], second[i])
		}
	}

	// early break must not disturb later iterations
	for range l.Entries() {
		break
	}
	if got := collect(); got[0] != "c" {
		t.Fatalf("expected head c after early break, got %s", got[0])
	}
}

func TestRecent(t *testing.T) {
	l := New(entry("c", StatusCompleted), entry("b", StatusCompleted), entry("a", StatusCompleted))
	if got := l.Recent(2); len(got) != 2 || got[0].ID != "c" {
		t.Fatalf("unexpected recent: %+v", got)
	}
	if got := l.Recent(10); len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
}

func TestPendingSkipsSettledEntries(t *testing.T) {
	settlement := entry("s", StatusCompleted)
	settlement.Settles = "p1"

	l := New(settlement, entry("p2", StatusPending), entry("p1", StatusPending), entry("x", StatusCompleted))

	pending := l.Pending()
	if len(pending) != 1 || pending[0].ID != "p2" {
		t.Fatalf("expected only p2 pending, got %+v", pending)
	}
	if s, ok := l.SettlementOf("p1"); !ok || s.ID != "s" {
		t.Fatalf("expected settlement s for p1, got %+v ok=%v", s, ok)
	}
}

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	l := New(entry("b", StatusPending), entry("a", StatusCompleted))

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Ledger
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Len() != 2 || decoded.All()[0].ID != "b" {
		t.Fatalf("order not preserved: %+v", decoded.All())
	}

	empty, _ := json.Marshal(Ledger{})
	if string(empty) != "[]" {
		t.Fatalf("expected [], got %s", empty)
	}
}

func TestTypeAndStatusValidation(t *testing.T) {
	if !TypeReferral.Valid() || Type("bonus").Valid() {
		t.Fatal("type validation wrong")
	}
	if !StatusRejected.Valid() || Status("done").Valid() {
		t.Fatal("status validation wrong")
	}
}
