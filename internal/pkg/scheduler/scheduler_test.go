package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestAddRejectsBadSchedule(t *testing.T) {
	s := New(time.UTC)
	err := s.Add(Job{Name: "bad", Schedule: "every minute", Run: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestJobRuns(t *testing.T) {
	s := New(time.UTC)
	ran := make(chan struct{}, 1)

	err := s.Add(Job{Name: "tick", Schedule: "@every 1s", Run: func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
