package cmd

import (
	"testing"

	"cashgame/domain/entities"
	"cashgame/domain/money"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	final := money.FromUnits(140)
	zero := money.Amount(0)
	snapshot := &entities.SessionSnapshot{
		Session: &entities.Session{ID: 1, Name: "Friday", Code: "QX7K2P", Status: entities.SessionStatusClosed},
		Players: []*entities.SessionPlayer{
			{UserID: 1, Name: "Ana", Role: entities.PlayerRoleAdmin, SeatNo: 1, FinalWinnings: &final},
			{UserID: 2, Name: "Ben", Role: entities.PlayerRolePlayer, SeatNo: 2, FinalWinnings: &zero},
		},
		BuyIns: []*entities.BuyIn{
			{ID: 1, UserID: 1, Amount: money.FromUnits(100), Status: entities.BuyInStatusApproved},
			{ID: 2, UserID: 2, Amount: money.FromUnits(100), Status: entities.BuyInStatusApproved},
		},
		CashOuts: []*entities.CashOut{
			{ID: 1, UserID: 2, Amount: money.FromUnits(60)},
		},
	}

	t.Run("open ledger only", func(t *testing.T) {
		out, err := renderReport(snapshot, nil)
		require.NoError(t, err)
		assert.Contains(t, out, "Friday (QX7K2P) closed")
		assert.Contains(t, out, "Pool 200.00 | Cashed out 60.00 | On table 140.00")
		assert.Contains(t, out, "Ana")
		assert.NotContains(t, out, "Settlement")
	})

	t.Run("with settlement", func(t *testing.T) {
		settlement := &entities.Settlement{
			SessionID: 1,
			Players: []entities.PlayerResult{
				{UserID: 1, Name: "Ana", Invested: money.FromUnits(100), Extracted: money.FromUnits(140), Net: money.FromUnits(40)},
				{UserID: 2, Name: "Ben", Invested: money.FromUnits(100), Extracted: money.FromUnits(60), Net: money.FromUnits(-40)},
			},
			Transfers: []entities.Transfer{
				{FromUserID: 2, ToUserID: 1, FromName: "Ben", ToName: "Ana", Amount: money.FromUnits(40)},
			},
		}

		out, err := renderReport(snapshot, settlement)
		require.NoError(t, err)
		assert.Contains(t, out, "Settlement")
		assert.Contains(t, out, "+40.00")
		assert.Contains(t, out, "Ben pays Ana 40.00")
		assert.NotContains(t, out, "Everyone is square.")
	})
}
