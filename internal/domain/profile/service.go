package profile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/pkg/imaging"
	"github.com/adearn/adearn-api/internal/pkg/storage"
)

const avatarPrefix = "avatars/"

// Service replaces account avatars.
type Service struct {
	accounts  *account.Service
	storage   storage.Storage
	processor *imaging.Processor
}

// NewService builds the avatar service. A nil store disables uploads.
func NewService(accounts *account.Service, store storage.Storage, processor *imaging.Processor) *Service {
	return &Service{accounts: accounts, storage: store, processor: processor}
}

func (s *Service) Enabled() bool {
	return s.storage != nil
}

// UpdateAvatar validates, crops and stores the image, then points the
// account at it. The upload is removed again if the account update fails.
func (s *Service) UpdateAvatar(ctx context.Context, namespace string, file io.Reader) (account.Snapshot, error) {
	if !s.Enabled() {
		return account.Snapshot{}, ErrAvatarDisabled
	}

	prev, err := s.accounts.Load(ctx, namespace)
	if err != nil {
		return account.Snapshot{}, err
	}

	data, _, err := storage.ValidateFile(file, storage.CategoryAvatar)
	if err != nil {
		return account.Snapshot{}, err
	}
	img, err := s.processor.Avatar(data)
	if err != nil {
		return account.Snapshot{}, err
	}

	key := fmt.Sprintf("%s%s/%s%s", avatarPrefix, namespace, uuid.NewString(), storage.GetExtensionForMime(img.ContentType))
	if err := s.storage.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return account.Snapshot{}, err
	}

	snap, err := s.accounts.UpdateAvatar(ctx, namespace, s.storage.GetURL(key))
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("orphaned avatar upload")
		}
		return account.Snapshot{}, err
	}

	if oldKey, ok := s.ownedKey(prev.Account.Avatar); ok {
		if err := s.storage.Delete(ctx, oldKey); err != nil {
			log.Warn().Err(err).Str("key", oldKey).Msg("failed to delete previous avatar")
		}
	}

	log.Info().Str("account_id", namespace).Str("key", key).Msg("avatar updated")
	return snap, nil
}

// ownedKey maps an avatar URL back to a key in our store.
func (s *Service) ownedKey(url string) (string, bool) {
	base := s.storage.GetURL(avatarPrefix)
	if url == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	return avatarPrefix + strings.TrimPrefix(url, base), true
}
