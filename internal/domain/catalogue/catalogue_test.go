package catalogue

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogue(t *testing.T) {
	c := Default()

	if got := len(c.Packages()); got != 3 {
		t.Fatalf("expected 3 packages, got %d", got)
	}
	if got := len(c.Ads()); got != 4 {
		t.Fatalf("expected 4 ads, got %d", got)
	}

	pro, ok := c.Package("pkg-pro")
	if !ok {
		t.Fatal("pkg-pro missing")
	}
	if pro.Price != 1500 || pro.DailyAds != 20 || pro.EarningPerAd != 8 {
		t.Fatalf("unexpected pkg-pro: %+v", pro)
	}

	ad, ok := c.Ad("ad-1")
	if !ok || ad.Reward != 10 || ad.Duration != 15 {
		t.Fatalf("unexpected ad-1: %+v", ad)
	}

	for _, id := range []string{"bkash", "nagad", "rocket", "bank"} {
		if !c.HasPaymentMethod(id) {
			t.Fatalf("payment method %s missing", id)
		}
	}
	if c.HasPaymentMethod("paypal") {
		t.Fatal("paypal should not be accepted")
	}
}

func TestUnknownIDs(t *testing.T) {
	c := Default()
	if _, ok := c.Package("pkg-gold"); ok {
		t.Fatal("expected unknown package")
	}
	if _, ok := c.Ad("ad-99"); ok {
		t.Fatal("expected unknown ad")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Default()
	pkgs := c.Packages()
	pkgs[0].Price = 0

	again, _ := c.Package(pkgs[0].ID)
	if again.Price == 0 {
		t.Fatal("catalogue was mutated through accessor")
	}
	if c.Packages()[0].Price == 0 {
		t.Fatal("catalogue list was mutated through accessor")
	}
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	cases := map[string]struct {
		packages []Package
		ads      []Ad
	}{
		"duplicate package": {packages: []Package{{ID: "a", Price: 1, DailyAds: 1}, {ID: "a", Price: 1, DailyAds: 1}}},
		"negative price":    {packages: []Package{{ID: "a", Price: -1, DailyAds: 1}}},
		"free package":      {packages: []Package{{ID: "a", DailyAds: 1}}},
		"zero quota":        {packages: []Package{{ID: "a", Price: 1}}},
		"missing ad id":     {ads: []Ad{{Reward: 1, Duration: 5}}},
		"unpaid ad":         {ads: []Ad{{ID: "x", Duration: 5}}},
		"negative reward":   {ads: []Ad{{ID: "x", Reward: -3, Duration: 5}}},
		"zero duration":     {ads: []Ad{{ID: "x", Reward: 1}}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.packages, tc.ads, nil)
			if !errors.Is(err, ErrInvalidCatalogue) {
				t.Fatalf("expected ErrInvalidCatalogue, got %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.yaml")
	data := `packages:
  - id: p1
    name: One
    price: 10
    daily_ads: 2
    earning_per_ad: 1
    duration_days: 7
ads:
  - id: a1
    title: A
    reward: 3
    duration: 5
payment_methods:
  - id: bkash
    name: bKash
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p, ok := c.Package("p1"); !ok || p.DailyAds != 2 {
		t.Fatalf("unexpected package: %+v", p)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("packages:\n  - id: p1\n    daily_ads: 1\n    bonus: 5\n"))
	if !errors.Is(err, ErrInvalidCatalogue) {
		t.Fatalf("expected ErrInvalidCatalogue, got %v", err)
	}
}

func TestHandlerListsPackages(t *testing.T) {
	h := NewHandler(Default())
	req := httptest.NewRequest(http.MethodGet, "/packages", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"pkg-elite"`) {
		t.Fatalf("expected pkg-elite in body, got %s", w.Body.String())
	}
}
