package adsession

import "errors"

var (
	ErrNotPlaying   = errors.New("no ad is playing")
	ErrNotClaimable = errors.New("reward is not claimable")
	ErrInvalidTick  = errors.New("elapsed seconds must not be negative")
	ErrClosed       = errors.New("session manager closed")
)
