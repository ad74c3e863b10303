package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"geoverify/domain/core"
	dcritique "geoverify/domain/critique"
	"geoverify/internal/errors"
	"geoverify/ports"

	"github.com/jmoiron/sqlx"
)

// CritiqueSessionRepository implements ports.CritiqueSessionRepository. The
// session is stored whole as a JSON document; the other columns are
// denormalized for listing and reporting.
type CritiqueSessionRepository struct {
	db *sqlx.DB
}

// NewCritiqueSessionRepository creates a session repository on db
func NewCritiqueSessionRepository(db *sqlx.DB) *CritiqueSessionRepository {
	return &CritiqueSessionRepository{db: db}
}

var _ ports.CritiqueSessionRepository = (*CritiqueSessionRepository)(nil)

type sessionRow struct {
	ID                    string    `db:"id"`
	PaperTitle            string    `db:"paper_title"`
	Domain                string    `db:"domain"`
	OverallResult         string    `db:"overall_result"`
	PlausibilityTrapScore float64   `db:"plausibility_trap_score"`
	IterationCount        int       `db:"iteration_count"`
	IsComplete            bool      `db:"is_complete"`
	Document              string    `db:"document"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// Get loads a session by ID
func (r *CritiqueSessionRepository) Get(ctx context.Context, id core.SessionID) (*dcritique.Session, error) {
	var document string
	err := r.db.GetContext(ctx, &document, r.db.Rebind(`
		SELECT document FROM critique_sessions WHERE id = ?
	`), id.String())
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.SessionNotFound(id.String())
		}
		return nil, errors.DatabaseError("failed to load critique session", err)
	}
	return decodeSession(document)
}

// Save upserts the full session document
func (r *CritiqueSessionRepository) Save(ctx context.Context, session *dcritique.Session) error {
	document, err := json.Marshal(session)
	if err != nil {
		return errors.Wrapf(err, "failed to encode session %s", session.ID)
	}

	row := sessionRow{
		ID:                    session.ID.String(),
		PaperTitle:            session.PaperTitle,
		Domain:                session.Domain,
		OverallResult:         session.OverallResult.String(),
		PlausibilityTrapScore: session.PlausibilityTrapScore,
		IterationCount:        len(session.Iterations),
		IsComplete:            session.IsComplete(),
		Document:              string(document),
		CreatedAt:             session.CreatedAt.Time().UTC(),
		UpdatedAt:             session.UpdatedAt.Time().UTC(),
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO critique_sessions (
			id, paper_title, domain, overall_result, plausibility_trap_score,
			iteration_count, is_complete, document, created_at, updated_at
		) VALUES (
			:id, :paper_title, :domain, :overall_result, :plausibility_trap_score,
			:iteration_count, :is_complete, :document, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			overall_result = excluded.overall_result,
			plausibility_trap_score = excluded.plausibility_trap_score,
			iteration_count = excluded.iteration_count,
			is_complete = excluded.is_complete,
			document = excluded.document,
			updated_at = excluded.updated_at
	`, row)
	if err != nil {
		return errors.DatabaseError("failed to save critique session", err)
	}
	return nil
}

// List returns sessions newest update first
func (r *CritiqueSessionRepository) List(ctx context.Context, limit int) ([]*dcritique.Session, error) {
	query := `SELECT document FROM critique_sessions ORDER BY updated_at DESC, id ASC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var documents []string
	if err := r.db.SelectContext(ctx, &documents, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list critique sessions", err)
	}

	sessions := make([]*dcritique.Session, 0, len(documents))
	for _, doc := range documents {
		s, err := decodeSession(doc)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// CountByResult tallies stored sessions per overall result
func (r *CritiqueSessionRepository) CountByResult(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Result string `db:"overall_result"`
		Count  int    `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT overall_result, COUNT(*) AS n FROM critique_sessions GROUP BY overall_result
	`)
	if err != nil {
		return nil, errors.DatabaseError("failed to count critique sessions", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Result] = row.Count
	}
	return counts, nil
}

func decodeSession(document string) (*dcritique.Session, error) {
	var session dcritique.Session
	if err := json.Unmarshal([]byte(document), &session); err != nil {
		return nil, errors.DatabaseError("failed to decode critique session", err)
	}
	return &session, nil
}
