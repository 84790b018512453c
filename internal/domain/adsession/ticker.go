package adsession

import (
	"sync"
	"time"
)

// ticker calls fn every interval until fn returns false or Stop is called.
type ticker struct {
	stop chan struct{}
	once sync.Once
	done chan struct{}
}

func startTicker(interval time.Duration, fn func() bool) *ticker {
	t := &ticker{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(t.done)
		tk := time.NewTicker(interval)
		defer tk.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				if !fn() {
					return
				}
			}
		}
	}()
	return t
}

// Stop does not wait for an in-flight fn.
func (t *ticker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
