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

const cashOutColumns = `id, session_id, user_id, amount, created_at, updated_at`

// CashOutRepository implements the CashOutRepository interface
type CashOutRepository struct {
	q Queryable
}

// NewCashOutRepository creates a new cash-out repository
func NewCashOutRepository(db *database.DB) *CashOutRepository {
	return &CashOutRepository{q: db.Pool}
}

func newCashOutRepository(q Queryable) interfaces.CashOutRepository {
	return &CashOutRepository{q: q}
}

// Create inserts a cash-out
func (r *CashOutRepository) Create(ctx context.Context, cashOut *entities.CashOut) error {
	query := `
		INSERT INTO cash_outs (session_id, user_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query, cashOut.SessionID, cashOut.UserID, cashOut.Amount).
		Scan(&cashOut.ID, &cashOut.CreatedAt, &cashOut.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cash-out for user %d in session %d: %w", cashOut.UserID, cashOut.SessionID, err)
	}
	return nil
}

// GetByID retrieves a cash-out
func (r *CashOutRepository) GetByID(ctx context.Context, id int64) (*entities.CashOut, error) {
	query := `SELECT ` + cashOutColumns + ` FROM cash_outs WHERE id = $1`
	cashOut, err := scanCashOut(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get cash-out %d: %w", id, err)
	}
	return cashOut, nil
}

// GetBySession returns every cash-out of a session in insertion order
func (r *CashOutRepository) GetBySession(ctx context.Context, sessionID int64) ([]*entities.CashOut, error) {
	query := `SELECT ` + cashOutColumns + ` FROM cash_outs WHERE session_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cash-outs for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	cashOuts := []*entities.CashOut{}
	for rows.Next() {
		c, err := scanCashOut(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash-out: %w", err)
		}
		cashOuts = append(cashOuts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash-outs: %w", err)
	}
	return cashOuts, nil
}

// UpdateAmount changes the amount of a cash-out
func (r *CashOutRepository) UpdateAmount(ctx context.Context, id int64, amount money.Amount) (*entities.CashOut, error) {
	query := `
		UPDATE cash_outs
		SET amount = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + cashOutColumns
	cashOut, err := scanCashOut(r.q.QueryRow(ctx, query, id, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to update amount of cash-out %d: %w", id, err)
	}
	return cashOut, nil
}

// Delete removes a cash-out
func (r *CashOutRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM cash_outs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete cash-out %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

func scanCashOut(row pgx.Row) (*entities.CashOut, error) {
	var c entities.CashOut
	err := row.Scan(&c.ID, &c.SessionID, &c.UserID, &c.Amount, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
