package database

import (
	"context"
	"testing"
)

func TestNewRedisWithoutURL(t *testing.T) {
	client, err := NewRedis(context.Background(), "")
	if err != nil || client != nil {
		t.Fatalf("expected nil client and no error, got %v, %v", client, err)
	}
}

func TestNewRedisBadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "not a url"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCloseNil(t *testing.T) {
	CloseRedis(nil)
	ClosePostgres(nil)
}
