package account

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	keyAccount      = "adearn:%s:account"
	keyTransactions = "adearn:%s:transactions"
	keyNamespaces   = "adearn:namespaces"
)

// RedisRepository writes both blobs inside one MULTI/EXEC.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Load(ctx context.Context, namespace string) (Record, error) {
	vals, err := r.client.MGet(ctx,
		fmt.Sprintf(keyAccount, namespace),
		fmt.Sprintf(keyTransactions, namespace),
	).Result()
	if err != nil {
		return Record{}, fmt.Errorf("redis load %s: %w", namespace, err)
	}

	if vals[0] == nil && vals[1] == nil {
		return Record{}, ErrRecordNotFound
	}

	var rec Record
	if s, ok := vals[0].(string); ok {
		rec.Account = []byte(s)
	}
	if s, ok := vals[1].(string); ok {
		rec.Transactions = []byte(s)
	}
	return rec, nil
}

func (r *RedisRepository) Save(ctx context.Context, namespace string, rec Record) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fmt.Sprintf(keyAccount, namespace), rec.Account, 0)
		pipe.Set(ctx, fmt.Sprintf(keyTransactions, namespace), rec.Transactions, 0)
		pipe.SAdd(ctx, keyNamespaces, namespace)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", namespace, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, namespace string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, fmt.Sprintf(keyAccount, namespace), fmt.Sprintf(keyTransactions, namespace))
		pipe.SRem(ctx, keyNamespaces, namespace)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", namespace, err)
	}
	return nil
}

func (r *RedisRepository) Namespaces(ctx context.Context) ([]string, error) {
	out, err := r.client.SMembers(ctx, keyNamespaces).Result()
	if err != nil {
		return nil, fmt.Errorf("redis namespaces: %w", err)
	}
	sort.Strings(out)
	return out, nil
}
