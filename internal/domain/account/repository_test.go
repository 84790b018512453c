package account

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// exerciseRepository runs the behaviour every Repository must share.
func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	ns := "u-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(context.Background(), ns) })

	if _, err := repo.Load(ctx, ns); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	rec := Record{Account: []byte(`{"id":"` + ns + `"}`), Transactions: []byte(`[]`)}
	if err := repo.Save(ctx, ns, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx, ns)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got.Transactions) != "[]" {
		t.Fatalf("unexpected transactions blob: %s", got.Transactions)
	}

	namespaces, err := repo.Namespaces(ctx)
	if err != nil {
		t.Fatalf("namespaces: %v", err)
	}
	found := false
	for _, n := range namespaces {
		found = found || n == ns
	}
	if !found {
		t.Fatalf("namespace %s not listed", ns)
	}

	if err := repo.Delete(ctx, ns); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Load(ctx, ns); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound after delete, got %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepositoryCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	rec := Record{Account: []byte(`{"id":"a"}`), Transactions: []byte(`[]`)}
	_ = repo.Save(ctx, "a", rec)
	rec.Account[2] = 'X'

	got, _ := repo.Load(ctx, "a")
	if string(got.Account) != `{"id":"a"}` {
		t.Fatalf("stored record aliased caller buffer: %s", got.Account)
	}
}

func TestRedisRepository(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	exerciseRepository(t, NewRedisRepository(client))
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	exerciseRepository(t, repo)
}
