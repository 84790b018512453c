package adsession

import (
	"errors"
	"testing"
	"time"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/catalogue"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func subscribed(viewed int) (account.Account, *catalogue.Package) {
	pkg, _ := catalogue.Default().Package("pkg-pro")
	return account.Account{ID: "u-1", CurrentPackageID: pkg.ID, AdsViewedToday: viewed}, &pkg
}

func testAd() catalogue.Ad {
	ad, _ := catalogue.Default().Ad("ad-1")
	return ad
}

func TestStartRequiresSubscription(t *testing.T) {
	m := NewMachine()
	err := m.Start(account.Account{ID: "u-1"}, nil, testAd(), t0)
	if !errors.Is(err, account.ErrNoActiveSubscription) {
		t.Fatalf("expected ErrNoActiveSubscription, got %v", err)
	}
	if m.State() != StateIdle {
		t.Fatalf("expected idle, got %s", m.State())
	}
}

func TestStartRespectsQuota(t *testing.T) {
	a, pkg := subscribed(20)
	m := NewMachine()
	if err := m.Start(a, pkg, testAd(), t0); !errors.Is(err, account.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	a.AdsViewedToday = 19
	if err := m.Start(a, pkg, testAd(), t0); err != nil {
		t.Fatalf("last ad of the day should start: %v", err)
	}
}

func TestFullViewing(t *testing.T) {
	a, pkg := subscribed(0)
	ad := testAd()
	m := NewMachine()

	if _, err := m.Claim(); !errors.Is(err, ErrNotClaimable) {
		t.Fatalf("claim in idle: expected ErrNotClaimable, got %v", err)
	}
	if err := m.Tick(1); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("tick in idle: expected ErrNotPlaying, got %v", err)
	}

	if err := m.Start(a, pkg, ad, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if v := m.View(); v.State != StatePlaying || v.TimeLeft != ad.Duration {
		t.Fatalf("unexpected view after start: %+v", v)
	}
	if _, err := m.Claim(); !errors.Is(err, ErrNotClaimable) {
		t.Fatalf("claim while playing: expected ErrNotClaimable, got %v", err)
	}

	for i := 0; i < ad.Duration-1; i++ {
		if err := m.Tick(1); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if v := m.View(); v.State != StatePlaying || v.TimeLeft != 1 {
		t.Fatalf("expected one second left, got %+v", v)
	}
	if err := m.Tick(1); err != nil {
		t.Fatalf("final tick: %v", err)
	}
	if m.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", m.State())
	}
	if err := m.Tick(1); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("tick after completion: expected ErrNotPlaying, got %v", err)
	}

	got, err := m.Claim()
	if err != nil || got.ID != ad.ID {
		t.Fatalf("claim: %+v %v", got, err)
	}
	if _, err := m.Claim(); !errors.Is(err, ErrNotClaimable) {
		t.Fatalf("second claim: expected ErrNotClaimable, got %v", err)
	}
	if m.State() != StateIdle {
		t.Fatalf("expected idle after claim, got %s", m.State())
	}
}

func TestTickClampsAtZero(t *testing.T) {
	a, pkg := subscribed(0)
	m := NewMachine()
	_ = m.Start(a, pkg, testAd(), t0)

	if err := m.Tick(1000); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if v := m.View(); v.TimeLeft != 0 || v.State != StateCompleted {
		t.Fatalf("expected clamped completion, got %+v", v)
	}
}

func TestNegativeTick(t *testing.T) {
	a, pkg := subscribed(0)
	m := NewMachine()
	_ = m.Start(a, pkg, testAd(), t0)
	if err := m.Tick(-1); !errors.Is(err, ErrInvalidTick) {
		t.Fatalf("expected ErrInvalidTick, got %v", err)
	}
}

func TestSetElapsedIsMonotonic(t *testing.T) {
	a, pkg := subscribed(0)
	ad := testAd()
	m := NewMachine()
	_ = m.Start(a, pkg, ad, t0)

	_ = m.Tick(5)
	_ = m.SetElapsed(t0.Add(2 * time.Second))
	if v := m.View(); v.TimeLeft != ad.Duration-5 {
		t.Fatalf("wall clock moved countdown backwards: %+v", v)
	}

	_ = m.SetElapsed(t0.Add(time.Duration(ad.Duration-3)*time.Second + 500*time.Millisecond))
	if v := m.View(); v.TimeLeft != 3 {
		t.Fatalf("expected 3 seconds left, got %+v", v)
	}

	_ = m.SetElapsed(t0.Add(time.Hour))
	if m.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", m.State())
	}
}

func TestStartDiscardsLiveSession(t *testing.T) {
	a, pkg := subscribed(0)
	cat := catalogue.Default()
	first, _ := cat.Ad("ad-1")
	second, _ := cat.Ad("ad-2")

	m := NewMachine()
	_ = m.Start(a, pkg, first, t0)
	_ = m.Tick(first.Duration)
	if m.State() != StateCompleted {
		t.Fatal("expected completed")
	}

	if err := m.Start(a, pkg, second, t0); err != nil {
		t.Fatalf("restart: %v", err)
	}
	v := m.View()
	if v.Ad.ID != second.ID || v.State != StatePlaying || v.TimeLeft != second.Duration {
		t.Fatalf("unexpected view: %+v", v)
	}
}
