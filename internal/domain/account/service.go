package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/ledger"
	"github.com/adearn/adearn-api/internal/pkg/events"
)

// LedgerEvent is published after a ledger entry has been persisted.
type LedgerEvent struct {
	AccountID   string             `json:"account_id"`
	Transaction ledger.Transaction `json:"transaction"`
	Balance     int64              `json:"balance"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// PendingEntry is an unsettled deposit or withdrawal of some account.
type PendingEntry struct {
	AccountID   string             `json:"account_id"`
	AccountName string             `json:"account_name"`
	Transaction ledger.Transaction `json:"transaction"`
}

// Service is the account store. Every mutation runs under a per-namespace
// lock, is written to the repository, and only then becomes visible to
// readers through the cache.
//
// The lock and the cache live in this process, so exactly one Service may
// write to a given repository. Running several API replicas against one
// store is not supported.
type Service struct {
	repo      Repository
	catalogue *catalogue.Catalogue
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time

	locks *keyedMutex

	mu    sync.RWMutex
	cache map[string]Snapshot
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLocation sets the zone that decides where a quota day ends.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, cat *catalogue.Catalogue, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		catalogue: cat,
		publisher: events.NoopPublisher{},
		loc:       time.UTC,
		now:       time.Now,
		locks:     newKeyedMutex(),
		cache:     make(map[string]Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock in the quota location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Catalogue() *catalogue.Catalogue {
	return s.catalogue
}

// Login stores a fresh snapshot for a newly issued account, replacing
// whatever the namespace held before.
func (s *Service) Login(ctx context.Context, a Account) (Snapshot, error) {
	if a.ID == "" {
		return Snapshot{}, missing("id")
	}
	if a.CurrentPackageID != "" {
		if _, ok := s.catalogue.Package(a.CurrentPackageID); !ok {
			return Snapshot{}, catalogue.ErrPackageNotFound
		}
	}
	if a.Balance < 0 {
		return Snapshot{}, ErrInvalidAmount
	}

	unlock := s.locks.Lock(a.ID)
	defer unlock()

	snap := Snapshot{Account: a, Ledger: ledger.New()}
	if err := s.persist(ctx, a.ID, snap); err != nil {
		return Snapshot{}, err
	}

	log.Info().Str("account_id", a.ID).Int64("balance", a.Balance).Msg("account logged in")
	return snap, nil
}

// Load returns the current snapshot with the daily counter rolled over.
// A missing or unreadable snapshot yields ErrNoSession; an unreadable one is
// discarded first.
func (s *Service) Load(ctx context.Context, namespace string) (Snapshot, error) {
	unlock := s.locks.Lock(namespace)
	defer unlock()

	snap, err := s.current(ctx, namespace)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Account = Rollover(snap.Account, s.Now())
	return snap, nil
}

// Transactions returns the ledger newest first.
func (s *Service) Transactions(ctx context.Context, namespace string) ([]ledger.Transaction, error) {
	snap, err := s.Load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return snap.Ledger.All(), nil
}

// Logout removes the snapshot; later loads report ErrNoSession.
func (s *Service) Logout(ctx context.Context, namespace string) error {
	unlock := s.locks.Lock(namespace)
	defer unlock()

	if err := s.repo.Delete(ctx, namespace); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, namespace)
	s.mu.Unlock()

	log.Info().Str("account_id", namespace).Msg("account logged out")
	if err := s.publisher.Publish(ctx, events.RoutingAccountLoggedOut, map[string]string{"account_id": namespace}); err != nil {
		log.Warn().Err(err).Str("account_id", namespace).Msg("logout event not published")
	}
	return nil
}

func (s *Service) Purchase(ctx context.Context, namespace, packageID string) (Snapshot, ledger.Transaction, error) {
	pkg, ok := s.catalogue.Package(packageID)
	if !ok {
		return Snapshot{}, ledger.Transaction{}, catalogue.ErrPackageNotFound
	}
	return s.mutate(ctx, namespace, func(cur Snapshot, now time.Time) (Account, ledger.Transaction, error) {
		return ApplyPurchase(cur.Account, pkg, now)
	})
}

// AdReward credits a claimed ad view.
func (s *Service) AdReward(ctx context.Context, namespace, adID string) (Snapshot, ledger.Transaction, error) {
	ad, ok := s.catalogue.Ad(adID)
	if !ok {
		return Snapshot{}, ledger.Transaction{}, catalogue.ErrAdNotFound
	}
	return s.mutate(ctx, namespace, func(cur Snapshot, now time.Time) (Account, ledger.Transaction, error) {
		next, tx := ApplyAdReward(cur.Account, ad, now)
		return next, tx, nil
	})
}

func (s *Service) Withdraw(ctx context.Context, namespace string, amount int64, method, accountNo string) (Snapshot, ledger.Transaction, error) {
	return s.mutate(ctx, namespace, func(cur Snapshot, now time.Time) (Account, ledger.Transaction, error) {
		return ApplyWithdraw(cur.Account, amount, method, accountNo, now)
	})
}

func (s *Service) Deposit(ctx context.Context, namespace string, amount int64, method, trxID string) (Snapshot, ledger.Transaction, error) {
	return s.mutate(ctx, namespace, func(cur Snapshot, now time.Time) (Account, ledger.Transaction, error) {
		return ApplyDeposit(cur.Account, amount, method, trxID, now)
	})
}

// Settle approves or rejects a pending deposit or withdrawal.
func (s *Service) Settle(ctx context.Context, namespace, txID string, approve bool) (Snapshot, ledger.Transaction, error) {
	return s.mutate(ctx, namespace, func(cur Snapshot, now time.Time) (Account, ledger.Transaction, error) {
		return ApplySettlement(cur, txID, approve, now)
	})
}

// UpdateAvatar replaces the avatar reference. No ledger entry is produced.
func (s *Service) UpdateAvatar(ctx context.Context, namespace, avatar string) (Snapshot, error) {
	if avatar == "" {
		return Snapshot{}, missing("avatar")
	}

	unlock := s.locks.Lock(namespace)
	defer unlock()

	cur, err := s.current(ctx, namespace)
	if err != nil {
		return Snapshot{}, err
	}
	next := cur
	next.Account.Avatar = avatar
	if err := s.persist(ctx, namespace, next); err != nil {
		return Snapshot{}, err
	}
	return next, nil
}

// Pending lists unsettled deposits and withdrawals across all accounts.
func (s *Service) Pending(ctx context.Context) ([]PendingEntry, error) {
	namespaces, err := s.repo.Namespaces(ctx)
	if err != nil {
		return nil, err
	}

	var out []PendingEntry
	for _, ns := range namespaces {
		snap, err := s.peek(ctx, ns)
		if errors.Is(err, ErrNoSession) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, tx := range snap.Ledger.Pending() {
			out = append(out, PendingEntry{AccountID: ns, AccountName: snap.Account.Name, Transaction: tx})
		}
	}
	return out, nil
}

// ResetDailyQuotas persists the day rollover for every stored account and
// returns how many counters were reset.
func (s *Service) ResetDailyQuotas(ctx context.Context) (int, error) {
	namespaces, err := s.repo.Namespaces(ctx)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, ns := range namespaces {
		if err := ctx.Err(); err != nil {
			return reset, err
		}
		changed, err := s.rollover(ctx, ns)
		if err != nil {
			log.Warn().Err(err).Str("account_id", ns).Msg("quota rollover skipped")
			continue
		}
		if changed {
			reset++
		}
	}
	return reset, nil
}

func (s *Service) rollover(ctx context.Context, namespace string) (bool, error) {
	unlock := s.locks.Lock(namespace)
	defer unlock()

	cur, cached, err := s.read(ctx, namespace, false)
	if err != nil {
		return false, err
	}
	rolled := Rollover(cur.Account, s.Now())
	if rolled.AdsViewedToday == cur.Account.AdsViewedToday {
		return false, nil
	}
	next := cur
	next.Account = rolled
	return true, s.write(ctx, namespace, next, cached)
}

type mutation func(cur Snapshot, now time.Time) (Account, ledger.Transaction, error)

func (s *Service) mutate(ctx context.Context, namespace string, fn mutation) (Snapshot, ledger.Transaction, error) {
	unlock := s.locks.Lock(namespace)
	defer unlock()

	cur, err := s.current(ctx, namespace)
	if err != nil {
		return Snapshot{}, ledger.Transaction{}, err
	}

	now := s.Now()
	cur.Account = Rollover(cur.Account, now)

	acc, tx, err := fn(cur, now)
	if err != nil {
		return Snapshot{}, ledger.Transaction{}, err
	}

	next := Snapshot{Account: acc, Ledger: cur.Ledger.Prepend(tx)}
	if err := s.persist(ctx, namespace, next); err != nil {
		return Snapshot{}, ledger.Transaction{}, err
	}

	log.Info().
		Str("account_id", namespace).
		Str("tx_id", tx.ID).
		Str("type", string(tx.Type)).
		Str("status", string(tx.Status)).
		Int64("amount", tx.Amount).
		Int64("balance", acc.Balance).
		Msg("ledger entry recorded")

	event := LedgerEvent{AccountID: namespace, Transaction: tx, Balance: acc.Balance, OccurredAt: now}
	if err := s.publisher.Publish(ctx, events.RoutingLedgerEntryCreated, event); err != nil {
		log.Warn().Err(err).Str("tx_id", tx.ID).Msg("ledger event not published")
	}

	return next, tx, nil
}

// current returns the visible snapshot. Callers hold the namespace lock.
func (s *Service) current(ctx context.Context, namespace string) (Snapshot, error) {
	snap, _, err := s.read(ctx, namespace, true)
	return snap, err
}

// peek is Load for sweeps over every stored namespace: it leaves the cache
// as it was so a sweep does not pin accounts nobody is using.
func (s *Service) peek(ctx context.Context, namespace string) (Snapshot, error) {
	unlock := s.locks.Lock(namespace)
	defer unlock()

	snap, _, err := s.read(ctx, namespace, false)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Account = Rollover(snap.Account, s.Now())
	return snap, nil
}

// read reports whether the snapshot came from the cache. keep caches a
// snapshot fetched from the repository.
func (s *Service) read(ctx context.Context, namespace string, keep bool) (Snapshot, bool, error) {
	s.mu.RLock()
	snap, ok := s.cache[namespace]
	s.mu.RUnlock()
	if ok {
		return snap, true, nil
	}

	rec, err := s.repo.Load(ctx, namespace)
	if errors.Is(err, ErrRecordNotFound) {
		return Snapshot{}, false, ErrNoSession
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	snap, err = Decode(rec, s.catalogue)
	if err != nil {
		log.Warn().Err(err).Str("account_id", namespace).Msg("discarding unreadable snapshot")
		if delErr := s.repo.Delete(ctx, namespace); delErr != nil {
			log.Error().Err(delErr).Str("account_id", namespace).Msg("failed to discard snapshot")
		}
		return Snapshot{}, false, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	if keep {
		s.mu.Lock()
		s.cache[namespace] = snap
		s.mu.Unlock()
	}
	return snap, false, nil
}

func (s *Service) persist(ctx context.Context, namespace string, snap Snapshot) error {
	return s.write(ctx, namespace, snap, true)
}

// write saves first and swaps the cache only after the save succeeded.
func (s *Service) write(ctx context.Context, namespace string, snap Snapshot, keep bool) error {
	rec, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, namespace, rec); err != nil {
		return err
	}

	if keep {
		s.mu.Lock()
		s.cache[namespace] = snap
		s.mu.Unlock()
	}
	return nil
}

func (s *Service) cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
