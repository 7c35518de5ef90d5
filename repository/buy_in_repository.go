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

const buyInColumns = `id, session_id, user_id, amount, status, created_at, resolved_at`

// BuyInRepository implements the BuyInRepository interface
type BuyInRepository struct {
	q Queryable
}

// NewBuyInRepository creates a new buy-in repository
func NewBuyInRepository(db *database.DB) *BuyInRepository {
	return &BuyInRepository{q: db.Pool}
}

func newBuyInRepository(q Queryable) interfaces.BuyInRepository {
	return &BuyInRepository{q: q}
}

// Create inserts a buy-in. Buy-ins created in a terminal status are stamped as resolved.
func (r *BuyInRepository) Create(ctx context.Context, buyIn *entities.BuyIn) error {
	query := `
		INSERT INTO buy_ins (session_id, user_id, amount, status, resolved_at)
		VALUES ($1, $2, $3, $4::text, CASE WHEN $4::text = 'pending' THEN NULL ELSE NOW() END)
		RETURNING id, created_at, resolved_at
	`
	err := r.q.QueryRow(ctx, query,
		buyIn.SessionID,
		buyIn.UserID,
		buyIn.Amount,
		string(buyIn.Status),
	).Scan(&buyIn.ID, &buyIn.CreatedAt, &buyIn.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to create buy-in for user %d in session %d: %w", buyIn.UserID, buyIn.SessionID, err)
	}
	return nil
}

// GetByID retrieves a buy-in
func (r *BuyInRepository) GetByID(ctx context.Context, id int64) (*entities.BuyIn, error) {
	query := `SELECT ` + buyInColumns + ` FROM buy_ins WHERE id = $1`
	buyIn, err := scanBuyIn(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get buy-in %d: %w", id, err)
	}
	return buyIn, nil
}

// GetBySession returns every buy-in of a session in insertion order
func (r *BuyInRepository) GetBySession(ctx context.Context, sessionID int64) ([]*entities.BuyIn, error) {
	query := `SELECT ` + buyInColumns + ` FROM buy_ins WHERE session_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buy-ins for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	buyIns := []*entities.BuyIn{}
	for rows.Next() {
		b, err := scanBuyIn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan buy-in: %w", err)
		}
		buyIns = append(buyIns, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buy-ins: %w", err)
	}
	return buyIns, nil
}

// Resolve moves a pending buy-in to status. Only one of several racing callers gets a row back.
func (r *BuyInRepository) Resolve(ctx context.Context, id int64, status entities.BuyInStatus) (*entities.BuyIn, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("cannot resolve buy-in %d to non-terminal status %q", id, status)
	}

	query := `
		UPDATE buy_ins
		SET status = $2, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + buyInColumns
	buyIn, err := scanBuyIn(r.q.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buy-in %d: %w", id, err)
	}
	return buyIn, nil
}

// UpdateAmount changes the amount, leaving status untouched
func (r *BuyInRepository) UpdateAmount(ctx context.Context, id int64, amount money.Amount) (*entities.BuyIn, error) {
	query := `
		UPDATE buy_ins
		SET amount = $2
		WHERE id = $1
		RETURNING ` + buyInColumns
	buyIn, err := scanBuyIn(r.q.QueryRow(ctx, query, id, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to update amount of buy-in %d: %w", id, err)
	}
	return buyIn, nil
}

// Delete removes a buy-in
func (r *BuyInRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM buy_ins WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete buy-in %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

func scanBuyIn(row pgx.Row) (*entities.BuyIn, error) {
	var b entities.BuyIn
	err := row.Scan(
		&b.ID,
		&b.SessionID,
		&b.UserID,
		&b.Amount,
		&b.Status,
		&b.CreatedAt,
		&b.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
