package account

import (
	"errors"
	"reflect"
	"testing"

	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/ledger"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cat := catalogue.Default()
	a := demoAccount()
	next, withdraw, err := ApplyWithdraw(a, 200, "bkash", "01712345678", testNow)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	next, reward := ApplyAdReward(next, catalogue.Ad{ID: "ad-1", Reward: 10, Duration: 15}, testNow)

	snap := Snapshot{Account: next, Ledger: ledger.New(reward, withdraw)}
	rec, err := Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(rec, cat)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Account.Balance != next.Balance || got.Account.AdsViewedToday != next.AdsViewedToday {
		t.Fatalf("account mismatch: %+v vs %+v", got.Account, next)
	}
	if !got.Account.LastAdViewAt.Equal(*next.LastAdViewAt) {
		t.Fatalf("last view mismatch")
	}
	if !reflect.DeepEqual(ids(got.Ledger), ids(snap.Ledger)) {
		t.Fatalf("ledger mismatch: %v vs %v", ids(got.Ledger), ids(snap.Ledger))
	}
	first := got.Ledger.All()[0]
	if first.Amount != 10 || first.Type != ledger.TypeEarning || !first.Date.Equal(testNow) {
		t.Fatalf("unexpected head entry: %+v", first)
	}
}

func TestDecodeFailsClosed(t *testing.T) {
	cat := catalogue.Default()
	valid, _ := Encode(Snapshot{Account: demoAccount()})

	cases := map[string]Record{
		"malformed account":      {Account: []byte("{not json"), Transactions: valid.Transactions},
		"malformed transactions": {Account: valid.Account, Transactions: []byte(`{"id":1}`)},
		"missing transactions":   {Account: valid.Account},
		"missing account":        {Transactions: valid.Transactions},
		"unknown package":        {Account: []byte(`{"id":"u-1","current_package_id":"pkg-gold"}`), Transactions: []byte("[]")},
		"negative balance":       {Account: []byte(`{"id":"u-1","balance":-5}`), Transactions: []byte("[]")},
		"no id":                  {Account: []byte(`{"balance":5}`), Transactions: []byte("[]")},
		"bad entry type":         {Account: valid.Account, Transactions: []byte(`[{"id":"t1","type":"bonus","status":"completed","amount":1}]`)},
		"zero amount entry":      {Account: valid.Account, Transactions: []byte(`[{"id":"t1","type":"earning","status":"completed","amount":0}]`)},
		"duplicate entries": {Account: valid.Account, Transactions: []byte(
			`[{"id":"t1","type":"earning","status":"completed","amount":1},{"id":"t1","type":"earning","status":"completed","amount":1}]`)},
	}

	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(rec, cat)
			if !errors.Is(err, ErrCorruptPersistedState) {
				t.Fatalf("expected ErrCorruptPersistedState, got %v", err)
			}
		})
	}
}

func ids(l ledger.Ledger) []string {
	var out []string
	for tx := range l.Entries() {
		out = append(out, tx.ID)
	}
	return out
}
