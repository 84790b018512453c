package adsession

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/ledger"
)

// AccountStore is the part of the account store a session needs.
type AccountStore interface {
	Load(ctx context.Context, namespace string) (account.Snapshot, error)
	AdReward(ctx context.Context, namespace, adID string) (account.Snapshot, ledger.Transaction, error)
}

// ClaimResult is what a successful claim produced.
type ClaimResult struct {
	Snapshot    account.Snapshot
	Transaction ledger.Transaction
	View        View
}

type Option func(*Manager)

// WithServerTick makes the wall clock authoritative: a goroutine advances
// playing sessions every interval and client ticks only resync.
func WithServerTick(interval time.Duration) Option {
	return func(m *Manager) { m.tickInterval = interval }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager keeps one Machine per account namespace.
type Manager struct {
	store        AccountStore
	catalogue    *catalogue.Catalogue
	now          func() time.Time
	tickInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

type session struct {
	mu        sync.Mutex
	machine   *Machine
	ticker    *ticker
	gen       uint64
	observers map[uint64]chan View
	nextObs   uint64
	dead      bool
}

func NewManager(store AccountStore, cat *catalogue.Catalogue, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		catalogue: cat,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) session(namespace string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	s, ok := m.sessions[namespace]
	if !ok {
		s = &session{machine: NewMachine(), observers: make(map[uint64]chan View)}
		m.sessions[namespace] = s
	}
	return s, nil
}

// acquire returns namespace's session with s.mu held. The returned unlock
// drops the session from the map once it is idle and unobserved.
func (m *Manager) acquire(namespace string) (*session, func(), error) {
	for {
		s, err := m.session(namespace)
		if err != nil {
			return nil, nil, err
		}
		s.mu.Lock()
		if s.dead {
			// pruned or discarded while we waited
			s.mu.Unlock()
			continue
		}
		return s, func() {
			m.prune(namespace, s)
			s.mu.Unlock()
		}, nil
	}
}

// prune runs with s.mu held.
func (m *Manager) prune(namespace string, s *session) {
	if s.dead || s.machine.State() != StateIdle || len(s.observers) > 0 || s.ticker != nil {
		return
	}
	m.mu.Lock()
	if m.sessions[namespace] == s {
		delete(m.sessions, namespace)
	}
	m.mu.Unlock()
	s.dead = true
}

// Len reports how many sessions are held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Current returns the session view. Unknown namespaces are idle.
func (m *Manager) Current(namespace string) View {
	m.mu.Lock()
	s, ok := m.sessions[namespace]
	m.mu.Unlock()
	if !ok {
		return View{State: StateIdle}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.View()
}

// Start begins playing adID for namespace, replacing any live session.
func (m *Manager) Start(ctx context.Context, namespace, adID string) (View, error) {
	ad, ok := m.catalogue.Ad(adID)
	if !ok {
		return View{}, catalogue.ErrAdNotFound
	}

	s, unlock, err := m.acquire(namespace)
	if err != nil {
		return View{}, err
	}
	defer unlock()

	// Loaded under s.mu so a concurrent claim cannot move the quota
	// between the check and the start.
	snap, err := m.store.Load(ctx, namespace)
	if err != nil {
		return View{}, err
	}
	var pkg *catalogue.Package
	if p, ok := m.catalogue.Package(snap.Account.CurrentPackageID); ok {
		pkg = &p
	}

	if err := s.machine.Start(snap.Account, pkg, ad, m.now()); err != nil {
		return View{}, err
	}
	s.gen++
	m.restartTicker(namespace, s)

	log.Info().Str("account_id", namespace).Str("ad_id", ad.ID).Int("duration", ad.Duration).Msg("ad session started")
	return s.publish(), nil
}

// Tick advances the countdown by elapsed seconds, or resyncs against the
// wall clock when server ticking is on.
func (m *Manager) Tick(namespace string, elapsed int) (View, error) {
	s, unlock, err := m.acquire(namespace)
	if err != nil {
		return View{}, err
	}
	defer unlock()

	if m.tickInterval > 0 {
		if elapsed < 0 {
			return View{}, ErrInvalidTick
		}
		err = s.machine.SetElapsed(m.now())
	} else {
		err = s.machine.Tick(elapsed)
	}
	if err != nil {
		return View{}, err
	}
	if s.machine.State() != StatePlaying {
		s.stopTicker()
	}
	return s.publish(), nil
}

// Claim credits the finished ad through the account store. The session
// stays Completed if the reward could not be persisted, so the claim can be
// retried.
func (m *Manager) Claim(ctx context.Context, namespace string) (ClaimResult, error) {
	s, unlock, err := m.acquire(namespace)
	if err != nil {
		return ClaimResult{}, err
	}
	defer unlock()

	if s.machine.State() != StateCompleted {
		return ClaimResult{}, ErrNotClaimable
	}
	ad := s.machine.View().Ad

	snap, tx, err := m.store.AdReward(ctx, namespace, ad.ID)
	if err != nil {
		return ClaimResult{}, err
	}
	if _, err := s.machine.Claim(); err != nil {
		return ClaimResult{}, err
	}
	s.gen++
	s.stopTicker()

	log.Info().Str("account_id", namespace).Str("ad_id", ad.ID).Int64("reward", tx.Amount).Msg("ad reward claimed")
	return ClaimResult{Snapshot: snap, Transaction: tx, View: s.publish()}, nil
}

// Discard drops the session and disconnects its observers. Used on logout.
func (m *Manager) Discard(namespace string) {
	m.mu.Lock()
	s, ok := m.sessions[namespace]
	delete(m.sessions, namespace)
	m.mu.Unlock()

	if ok {
		s.close()
	}
}

// Subscribe streams views of namespace's session. The current view is
// delivered first. Slow observers miss intermediate views.
func (m *Manager) Subscribe(namespace string) (<-chan View, func(), error) {
	s, unlock, err := m.acquire(namespace)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	id := s.nextObs
	s.nextObs++
	ch := make(chan View, 8)
	ch <- s.machine.View()
	s.observers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(c)
		}
		m.prune(namespace, s)
	}
	return ch, cancel, nil
}

// Close stops every ticker and disconnects all observers.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*session)
	m.closed = true
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// restartTicker runs with s.mu held.
func (m *Manager) restartTicker(namespace string, s *session) {
	s.stopTicker()
	if m.tickInterval <= 0 || s.machine.State() != StatePlaying {
		return
	}
	gen := s.gen
	s.ticker = startTicker(m.tickInterval, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.gen != gen {
			return false
		}
		before := s.machine.View()
		if s.machine.SetElapsed(m.now()) != nil {
			return false
		}
		if after := s.machine.View(); after.TimeLeft != before.TimeLeft || after.State != before.State {
			s.publish()
		}
		if s.machine.State() != StatePlaying {
			log.Debug().Str("account_id", namespace).Msg("ad session completed")
			return false
		}
		return true
	})
}

func (s *session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// publish sends the current view to observers. Called with s.mu held.
func (s *session) publish() View {
	v := s.machine.View()
	for _, ch := range s.observers {
		select {
		case ch <- v:
		default:
		}
	}
	return v
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dead = true
	s.gen++
	s.stopTicker()
	s.machine.Discard()
	for id, ch := range s.observers {
		delete(s.observers, id)
		close(ch)
	}
}
