package table

import (
	"testing"

	"cashgame/domain/entities"
	"cashgame/domain/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStatusEmbed(t *testing.T) {
	t.Parallel()

	snapshot := &entities.SessionSnapshot{
		Session: &entities.Session{ID: 1, Name: "Friday", Code: "QX7K2P", Status: entities.SessionStatusActive},
		Players: []*entities.SessionPlayer{
			{UserID: 1, Name: "Ana", Role: entities.PlayerRoleAdmin, SeatNo: 1},
			{UserID: 2, Name: "Ben", Role: entities.PlayerRolePlayer, SeatNo: 2},
		},
		BuyIns: []*entities.BuyIn{
			{ID: 1, UserID: 1, Amount: money.FromUnits(100), Status: entities.BuyInStatusApproved},
			{ID: 2, UserID: 2, Amount: money.FromUnits(50), Status: entities.BuyInStatusPending},
		},
		CashOuts: []*entities.CashOut{
			{ID: 1, UserID: 1, Amount: money.FromUnits(30)},
		},
	}

	embed := buildStatusEmbed(snapshot)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "100.00", embed.Fields[0].Value)
	assert.Equal(t, "30.00", embed.Fields[1].Value)
	assert.Equal(t, "70.00", embed.Fields[2].Value)
	assert.Contains(t, embed.Description, "Waiting for the host")
	assert.Contains(t, embed.Description, "#2 Ben 50.00")
}

func TestBuildSettlementEmbed(t *testing.T) {
	t.Parallel()

	session := &entities.Session{Name: "Friday", Code: "QX7K2P"}

	t.Run("Transfers listed", func(t *testing.T) {
		embed := buildSettlementEmbed(session, &entities.Settlement{
			Players: []entities.PlayerResult{
				{Name: "Ana", Net: money.FromUnits(-40)},
				{Name: "Ben", Net: money.FromUnits(40)},
			},
			Transfers: []entities.Transfer{
				{FromName: "Ana", ToName: "Ben", Amount: money.FromUnits(40)},
			},
		})
		assert.Contains(t, embed.Description, "Ana: -40.00")
		assert.Contains(t, embed.Description, "Ben: +40.00")
		assert.Contains(t, embed.Description, "Ana ➜ Ben: **40.00**")
		assert.NotContains(t, embed.Description, "Unallocated")
	})

	t.Run("Everyone square", func(t *testing.T) {
		embed := buildSettlementEmbed(session, &entities.Settlement{Unallocated: 5})
		assert.Contains(t, embed.Description, "Everyone is square.")
		assert.Contains(t, embed.Description, "Unallocated rounding: +0.05")
	})
}
