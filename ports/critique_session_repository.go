package ports

import (
	"context"

	"geoverify/domain/core"
	"geoverify/domain/critique"
)

// CritiqueSessionRepository persists critique sessions as flat records keyed
// by session ID. Implementations return an error wrapping
// core.ErrSessionNotFound for unknown IDs.
type CritiqueSessionRepository interface {
	Get(ctx context.Context, id core.SessionID) (*critique.Session, error)
	Save(ctx context.Context, session *critique.Session) error
	// List returns the most recently updated sessions first
	List(ctx context.Context, limit int) ([]*critique.Session, error)
}
