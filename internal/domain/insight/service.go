package insight

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Fetcher produces advisory text.
type Fetcher interface {
	Configured() bool
	Fetch(ctx context.Context, name string, balance int64) (string, error)
}

// Service never fails: any problem yields the placeholder.
type Service struct {
	fetcher     Fetcher
	cache       Cache
	ttl         time.Duration
	placeholder string
}

// NewService builds the service. cache may be nil.
func NewService(fetcher Fetcher, cache Cache, ttl time.Duration, placeholder string) *Service {
	return &Service{fetcher: fetcher, cache: cache, ttl: ttl, placeholder: placeholder}
}

func (s *Service) Placeholder() string {
	return s.placeholder
}

// Insight returns advice for name holding balance.
func (s *Service) Insight(ctx context.Context, name string, balance int64) string {
	if s.fetcher == nil || !s.fetcher.Configured() {
		return s.placeholder
	}

	key := cacheKey(name, balance)
	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("insight cache unavailable")
		} else if ok {
			return text
		}
	}

	text, err := s.fetcher.Fetch(ctx, name, balance)
	if err != nil {
		log.Warn().Err(err).Int64("balance", balance).Msg("insight fetch failed")
		return s.placeholder
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, text, s.ttl); err != nil {
			log.Warn().Err(err).Msg("insight cache write failed")
		}
	}
	return text
}
