package entities

import (
	"time"
)

// User is a registered participant. The ledger never mutates users.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Username  string    `db:"username" json:"username"`
	DiscordID *int64    `db:"discord_id" json:"discordId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
