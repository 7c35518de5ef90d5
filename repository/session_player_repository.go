package repository

import (
	"context"
	"errors"
	"fmt"

	"cashgame/database"
	"cashgame/domain/entities"
	"cashgame/domain/interfaces"
	"cashgame/domain/money"

	"github.com/jackc/pgx/v5"
)

const sessionPlayerColumns = `session_id, user_id, name, role, final_winnings, seat_no, joined_at`

// SessionPlayerRepository implements the SessionPlayerRepository interface
type SessionPlayerRepository struct {
	q Queryable
}

// NewSessionPlayerRepository creates a new session player repository
func NewSessionPlayerRepository(db *database.DB) *SessionPlayerRepository {
	return &SessionPlayerRepository{q: db.Pool}
}

func newSessionPlayerRepository(q Queryable) interfaces.SessionPlayerRepository {
	return &SessionPlayerRepository{q: q}
}

// Get retrieves a single seat
func (r *SessionPlayerRepository) Get(ctx context.Context, sessionID, userID int64) (*entities.SessionPlayer, error) {
	query := `SELECT ` + sessionPlayerColumns + ` FROM session_players WHERE session_id = $1 AND user_id = $2`
	player, err := scanSessionPlayer(r.q.QueryRow(ctx, query, sessionID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d in session %d: %w", userID, sessionID, err)
	}
	return player, nil
}

// GetBySession returns all seats ordered by seat number
func (r *SessionPlayerRepository) GetBySession(ctx context.Context, sessionID int64) ([]*entities.SessionPlayer, error) {
	query := `
		SELECT ` + sessionPlayerColumns + `
		FROM session_players
		WHERE session_id = $1
		ORDER BY seat_no
	`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	players := []*entities.SessionPlayer{}
	for rows.Next() {
		p, err := scanSessionPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session players: %w", err)
	}
	return players, nil
}

// AddIfAbsent seats a player, leaving an existing seat untouched.
// Concurrent callers for the same seat all end up with the single stored row.
func (r *SessionPlayerRepository) AddIfAbsent(ctx context.Context, player *entities.SessionPlayer) (*entities.SessionPlayer, bool, error) {
	insert := `
		INSERT INTO session_players (session_id, user_id, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, user_id) DO NOTHING
		RETURNING ` + sessionPlayerColumns
	created, err := scanSessionPlayer(r.q.QueryRow(ctx, insert,
		player.SessionID,
		player.UserID,
		player.Name,
		player.Role,
	))
	if err != nil {
		return nil, false, fmt.Errorf("failed to add player %d to session %d: %w", player.UserID, player.SessionID, err)
	}
	if created != nil {
		return created, true, nil
	}

	existing, err := r.Get(ctx, player.SessionID, player.UserID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("player %d in session %d vanished after conflict", player.UserID, player.SessionID)
	}
	return existing, false, nil
}

// SetFinalWinnings records the value a player extracted from the session
func (r *SessionPlayerRepository) SetFinalWinnings(ctx context.Context, sessionID, userID int64, amount money.Amount) error {
	query := `
		UPDATE session_players
		SET final_winnings = $3
		WHERE session_id = $1 AND user_id = $2
	`
	result, err := r.q.Exec(ctx, query, sessionID, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to set final winnings for player %d in session %d: %w", userID, sessionID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %d not found in session %d", userID, sessionID)
	}
	return nil
}

func scanSessionPlayer(row pgx.Row) (*entities.SessionPlayer, error) {
	var p entities.SessionPlayer
	err := row.Scan(
		&p.SessionID,
		&p.UserID,
		&p.Name,
		&p.Role,
		&p.FinalWinnings,
		&p.SeatNo,
		&p.JoinedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
