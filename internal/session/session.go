package session

import (
	"context"
	"errors"

	"expertise-backend/internal/form"
	"expertise-backend/internal/photos"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("form session not found")

// State is the persisted form session: the snapshot, the current step of the
// machine and the field errors surfaced so far.
type State struct {
	ID       string           `json:"id"`
	Step     int              `json:"step"`
	Snapshot *form.Snapshot   `json:"snapshot"`
	Errors   form.FieldErrors `json:"errors"`
}

// NewState builds an empty session state at the first step.
func NewState(id string, limits photos.Limits) *State {
	return &State{
		ID:       id,
		Step:     int(form.StepPreparation),
		Snapshot: form.NewSnapshot(limits),
		Errors:   form.FieldErrors{},
	}
}

// Machine rebuilds the step machine of this session.
func (s *State) Machine() *form.Machine {
	return form.RestoreMachine(s.Step)
}

// Store holds form sessions between requests. Sessions expire after the
// configured TTL; one session is owned by exactly one form client.
type Store interface {
	Create(ctx context.Context, limits photos.Limits) (*State, error)
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}
