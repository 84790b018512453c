package profile

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/pkg/imaging"
	"github.com/adearn/adearn-api/internal/pkg/storage"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) GetURL(key string) string {
	return "https://cdn.example.com/" + key
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func setup(t *testing.T, store storage.Storage) (*Service, *account.Service) {
	t.Helper()
	accounts := account.NewService(account.NewMemoryRepository(), catalogue.Default())
	if _, err := accounts.Login(context.Background(), account.Account{ID: "u-1", Avatar: "https://picsum.photos/seed/u-1/200"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewService(accounts, store, imaging.NewProcessor(imaging.DefaultConfig())), accounts
}

func TestUpdateAvatar(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	svc, accounts := setup(t, store)

	snap, err := svc.UpdateAvatar(ctx, "u-1", bytes.NewReader(pngBytes(t, 400, 300)))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.HasPrefix(snap.Account.Avatar, "https://cdn.example.com/avatars/u-1/") || !strings.HasSuffix(snap.Account.Avatar, ".png") {
		t.Fatalf("unexpected avatar url %q", snap.Account.Avatar)
	}
	if len(store.objects) != 1 || len(store.deleted) != 0 {
		t.Fatalf("external avatar must not be deleted: objects=%d deleted=%v", len(store.objects), store.deleted)
	}

	first := snap.Account.Avatar
	snap, err = svc.UpdateAvatar(ctx, "u-1", bytes.NewReader(pngBytes(t, 300, 300)))
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(store.objects) != 1 || len(store.deleted) != 1 || !strings.HasSuffix(first, store.deleted[0]) {
		t.Fatalf("previous avatar not replaced: objects=%d deleted=%v", len(store.objects), store.deleted)
	}

	loaded, _ := accounts.Load(ctx, "u-1")
	if loaded.Account.Avatar != snap.Account.Avatar {
		t.Fatalf("avatar not persisted: %q", loaded.Account.Avatar)
	}
}

func TestUpdateAvatarErrors(t *testing.T) {
	ctx := context.Background()

	disabled, _ := setup(t, nil)
	if _, err := disabled.UpdateAvatar(ctx, "u-1", bytes.NewReader(nil)); !errors.Is(err, ErrAvatarDisabled) {
		t.Fatalf("expected ErrAvatarDisabled, got %v", err)
	}

	store := newFakeStorage()
	svc, _ := setup(t, store)
	if _, err := svc.UpdateAvatar(ctx, "u-none", bytes.NewReader(pngBytes(t, 100, 100))); !errors.Is(err, account.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := svc.UpdateAvatar(ctx, "u-1", strings.NewReader("hello")); !errors.Is(err, storage.ErrInvalidMimeType) {
		t.Fatalf("expected ErrInvalidMimeType, got %v", err)
	}
	if _, err := svc.UpdateAvatar(ctx, "u-1", bytes.NewReader(pngBytes(t, 10, 10))); !errors.Is(err, imaging.ErrTooSmall) {
		t.Fatalf("expected ErrTooSmall, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("rejected uploads must not be stored: %d", len(store.objects))
	}
}
