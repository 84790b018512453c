package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/pkg/jwt"
)

const (
	defaultName  = "আরিফ হোসেন"
	defaultEmail = "arif@example.com"
	defaultPhone = "01712345678"
)

// DemoProfile is the starting state handed to every new login.
type DemoProfile struct {
	Balance        int64
	TotalEarned    int64
	PackageID      string
	AdsViewedToday int
}

// SessionCloser tears down live ad sessions on logout.
type SessionCloser interface {
	Discard(namespace string)
}

// Service issues mock identities. There are no credentials to check.
type Service struct {
	accounts *account.Service
	sessions SessionCloser
	jwt      *jwt.Service
	demo     DemoProfile
}

func NewService(accounts *account.Service, sessions SessionCloser, jwtService *jwt.Service, demo DemoProfile) *Service {
	return &Service{accounts: accounts, sessions: sessions, jwt: jwtService, demo: demo}
}

// Login creates a fresh account and returns it with an access token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	now := s.accounts.Now()
	id := generateAccountID()

	a := account.Account{
		ID:               id,
		Name:             orDefault(req.Name, defaultName),
		Email:            strings.ToLower(orDefault(req.Email, defaultEmail)),
		Phone:            orDefault(req.Phone, defaultPhone),
		Avatar:           fmt.Sprintf("https://picsum.photos/seed/%s/200", id),
		ReferralCode:     generateReferralCode(),
		Balance:          s.demo.Balance,
		TotalEarned:      s.demo.TotalEarned,
		CurrentPackageID: s.demo.PackageID,
		AdsViewedToday:   s.demo.AdsViewedToday,
		LastAdViewAt:     &now,
	}
	if a.CurrentPackageID != "" {
		activated := now
		a.PackageActivatedAt = &activated
	}

	snap, err := s.accounts.Login(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("store account: %w", err)
	}

	token, err := s.jwt.GenerateAccessToken(id, jwt.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	log.Info().Str("account_id", id).Str("email", a.Email).Msg("demo identity issued")
	return &AuthResponse{
		Account: account.NewAccountResponse(snap.Account, s.accounts.Catalogue()),
		Tokens: TokensResponse{
			AccessToken: token,
			ExpiresIn:   int(s.jwt.GetAccessTTL().Seconds()),
			TokenType:   "Bearer",
		},
	}, nil
}

// Logout drops the ad session and the stored snapshot.
func (s *Service) Logout(ctx context.Context, namespace string) error {
	s.sessions.Discard(namespace)
	return s.accounts.Logout(ctx, namespace)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
