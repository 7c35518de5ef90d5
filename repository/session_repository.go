package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashgame/database"
	"cashgame/domain/entities"
	"cashgame/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, name, code, created_by, status, blind_value, created_at, closed_at`

// SessionRepository implements the SessionRepository interface
type SessionRepository struct {
	q Queryable
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{q: db.Pool}
}

func newSessionRepository(q Queryable) interfaces.SessionRepository {
	return &SessionRepository{q: q}
}

// Create inserts an active session
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	query := `
		INSERT INTO sessions (name, code, created_by, blind_value)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`
	err := r.q.QueryRow(ctx, query,
		session.Name,
		session.Code,
		session.CreatedBy,
		session.BlindValue,
	).Scan(&session.ID, &session.Status, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session %q: %w", session.Code, err)
	}
	return nil
}

// GetByID retrieves a session without locking
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*entities.Session, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForShare retrieves a session holding a shared row lock.
// Ledger writers take it so a close (FOR UPDATE) waits for them to commit.
func (r *SessionRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Session, error) {
	return r.getByID(ctx, id, " FOR SHARE")
}

// GetByIDForUpdate retrieves a session holding an exclusive row lock
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Session, error) {
	return r.getByID(ctx, id, " FOR UPDATE")
}

func (r *SessionRepository) getByID(ctx context.Context, id int64, lockClause string) (*entities.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1` + lockClause
	session, err := scanSession(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	return session, nil
}

// GetByCode retrieves a session by share code
func (r *SessionRepository) GetByCode(ctx context.Context, code string) (*entities.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE code = $1`
	session, err := scanSession(r.q.QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get session by code %q: %w", code, err)
	}
	return session, nil
}

// List returns sessions newest first
func (r *SessionRepository) List(ctx context.Context, status *entities.SessionStatus, limit int) ([]*entities.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.q.Query(ctx, query, statusArg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListClosedSince returns sessions closed at or after since, oldest first
func (r *SessionRepository) ListClosedSince(ctx context.Context, since time.Time) ([]*entities.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status = 'closed' AND closed_at >= $1
		ORDER BY closed_at, id
	`
	rows, err := r.q.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions closed since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// MarkClosed flips an active session to closed and stamps closed_at
func (r *SessionRepository) MarkClosed(ctx context.Context, id int64) (*entities.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'closed', closed_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING ` + sessionColumns
	session, err := scanSession(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to close session %d: %w", id, err)
	}
	return session, nil
}

func scanSession(row pgx.Row) (*entities.Session, error) {
	var s entities.Session
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Code,
		&s.CreatedBy,
		&s.Status,
		&s.BlindValue,
		&s.CreatedAt,
		&s.ClosedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]*entities.Session, error) {
	sessions := []*entities.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}
