package account

import (
	"context"
	"sort"
	"sync"
)

// Repository stores one Record per namespace. Save must write both blobs as
// a single unit so a reader never sees a torn pair.
type Repository interface {
	Load(ctx context.Context, namespace string) (Record, error)
	Save(ctx context.Context, namespace string, rec Record) error
	Delete(ctx context.Context, namespace string) error
	Namespaces(ctx context.Context) ([]string, error)
}

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record)}
}

func (r *MemoryRepository) Load(_ context.Context, namespace string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[namespace]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return Record{
		Account:      append([]byte(nil), rec.Account...),
		Transactions: append([]byte(nil), rec.Transactions...),
	}, nil
}

func (r *MemoryRepository) Save(_ context.Context, namespace string, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[namespace] = Record{
		Account:      append([]byte(nil), rec.Account...),
		Transactions: append([]byte(nil), rec.Transactions...),
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, namespace string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, namespace)
	return nil
}

func (r *MemoryRepository) Namespaces(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.records))
	for ns := range r.records {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}
