package adsession

import (
	"time"

	"github.com/adearn/adearn-api/internal/domain/catalogue"
)

// State of an ad viewing session.
type State string

const (
	StateIdle      State = "idle"
	StatePlaying   State = "playing"
	StateCompleted State = "completed"
)

// View is a read-only picture of a session, sent to clients after every
// transition.
type View struct {
	State     State         `json:"state"`
	Ad        *catalogue.Ad `json:"ad,omitempty"`
	TimeLeft  int           `json:"time_left"`
	Duration  int           `json:"duration"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
}

// Claimable reports whether the reward may be collected.
func (v View) Claimable() bool {
	return v.State == StateCompleted
}
