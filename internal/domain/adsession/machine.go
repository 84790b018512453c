package adsession

import (
	"time"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/catalogue"
)

// Machine walks one viewing through Idle, Playing and Completed. It is not
// safe for concurrent use; Manager serialises access.
type Machine struct {
	state     State
	ad        catalogue.Ad
	timeLeft  int
	startedAt time.Time
}

func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

func (m *Machine) State() State {
	return m.state
}

// Start begins playing ad. a must already be rolled over to today. Any live
// session is discarded without reward.
func (m *Machine) Start(a account.Account, pkg *catalogue.Package, ad catalogue.Ad, now time.Time) error {
	if !a.HasSubscription() || pkg == nil {
		return account.ErrNoActiveSubscription
	}
	if a.AdsViewedToday >= pkg.DailyAds {
		return account.ErrQuotaExceeded
	}

	m.state = StatePlaying
	m.ad = ad
	m.timeLeft = ad.Duration
	m.startedAt = now
	if m.timeLeft <= 0 {
		m.timeLeft = 0
		m.state = StateCompleted
	}
	return nil
}

// Tick counts down elapsed seconds.
func (m *Machine) Tick(elapsed int) error {
	if elapsed < 0 {
		return ErrInvalidTick
	}
	if m.state != StatePlaying {
		return ErrNotPlaying
	}
	m.countDownTo(m.timeLeft - elapsed)
	return nil
}

// SetElapsed derives the countdown from wall-clock time since start. It
// never moves the countdown backwards, so it can be mixed with Tick.
func (m *Machine) SetElapsed(now time.Time) error {
	if m.state != StatePlaying {
		return ErrNotPlaying
	}
	elapsed := int(now.Sub(m.startedAt) / time.Second)
	if left := m.ad.Duration - elapsed; left < m.timeLeft {
		m.countDownTo(left)
	}
	return nil
}

func (m *Machine) countDownTo(left int) {
	if left <= 0 {
		m.timeLeft = 0
		m.state = StateCompleted
		return
	}
	m.timeLeft = left
}

// Claim returns the finished ad and resets to Idle. A second claim fails.
func (m *Machine) Claim() (catalogue.Ad, error) {
	if m.state != StateCompleted {
		return catalogue.Ad{}, ErrNotClaimable
	}
	ad := m.ad
	m.Discard()
	return ad, nil
}

// Discard drops the session without reward.
func (m *Machine) Discard() {
	m.state = StateIdle
	m.ad = catalogue.Ad{}
	m.timeLeft = 0
	m.startedAt = time.Time{}
}

func (m *Machine) View() View {
	if m.state == StateIdle {
		return View{State: StateIdle}
	}
	ad := m.ad
	started := m.startedAt
	return View{
		State:     m.state,
		Ad:        &ad,
		TimeLeft:  m.timeLeft,
		Duration:  ad.Duration,
		StartedAt: &started,
	}
}
