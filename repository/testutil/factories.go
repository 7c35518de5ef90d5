package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"cashgame/database"
	"cashgame/domain/entities"
	"cashgame/domain/money"

	"github.com/stretchr/testify/require"
)

var codeSeq atomic.Int64

// NextSessionCode returns a unique valid share code for the test process
func NextSessionCode() string {
	return fmt.Sprintf("T%05d", codeSeq.Add(1))
}

// CreateTestUser creates a test user with default values
func CreateTestUser(name, username string) *entities.User {
	return &entities.User{
		Name:     name,
		Username: username,
	}
}

// CreateTestSession creates an active test session hosted by hostID
func CreateTestSession(hostID int64, name string) *entities.Session {
	return &entities.Session{
		Name:       name,
		Code:       NextSessionCode(),
		CreatedBy:  hostID,
		Status:     entities.SessionStatusActive,
		BlindValue: money.FromUnits(1),
	}
}

// InsertUser stores a user directly and returns it with its ID
func InsertUser(t *testing.T, db *database.DB, name, username string) *entities.User {
	t.Helper()
	user := CreateTestUser(name, username)
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (name, username) VALUES ($1, $2) RETURNING id, created_at`,
		user.Name, user.Username,
	).Scan(&user.ID, &user.CreatedAt)
	require.NoError(t, err)
	return user
}
