package interfaces

import (
	"context"

	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
)

// SessionRepository is the Session Store. Identifier collisions overwrite silently.
type SessionRepository interface {
	PutSession(ctx context.Context, record *transcript.Record) error
	// GetSession returns an error wrapping errs.ErrSessionNotFound for an unknown ID.
	GetSession(ctx context.Context, id types.SessionID) (*transcript.Record, error)
	// UpdateSession applies mutator to the stored record. The record is left untouched if
	// mutator returns an error.
	UpdateSession(ctx context.Context, id types.SessionID, mutator func(record *transcript.Record) error) error
	// ListSessions returns summaries in creation order.
	ListSessions(ctx context.Context) ([]transcript.Summary, error)
}
