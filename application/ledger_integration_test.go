package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cashgame/application"
	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/events"
	"cashgame/domain/money"
	"cashgame/domain/services"
	"cashgame/infrastructure"
	"cashgame/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingPublisher stands in for NATS and keeps every flushed event
type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type())
	}
	return types
}

type table struct {
	ledger  *application.Ledger
	session *entities.Session
	p1      *entities.User
	p2      *entities.User
	p3      *entities.User
}

// openTable creates three users, a session hosted by p1, and a 100 buy-in approved for each player
func openTable(t *testing.T, ctx context.Context, ledger *application.Ledger, prefix string) *table {
	t.Helper()

	p1, err := ledger.RegisterUser(ctx, "Player One", prefix+"-p1")
	require.NoError(t, err)
	p2, err := ledger.RegisterUser(ctx, "Player Two", prefix+"-p2")
	require.NoError(t, err)
	p3, err := ledger.RegisterUser(ctx, "Player Three", prefix+"-p3")
	require.NoError(t, err)

	session, err := ledger.CreateSession(ctx, p1.ID, prefix+" table", money.FromUnits(1))
	require.NoError(t, err)

	_, err = ledger.JoinSession(ctx, session.Code, p2.ID)
	require.NoError(t, err)
	_, err = ledger.JoinSession(ctx, session.Code, p3.ID)
	require.NoError(t, err)

	hostBuyIn, err := ledger.SubmitBuyIn(ctx, session.ID, p1.ID, p1.ID, money.FromUnits(100))
	require.NoError(t, err)
	require.Equal(t, entities.BuyInStatusApproved, hostBuyIn.Status)

	for _, p := range []*entities.User{p2, p3} {
		buyIn, err := ledger.SubmitBuyIn(ctx, session.ID, p.ID, p.ID, money.FromUnits(100))
		require.NoError(t, err)
		require.Equal(t, entities.BuyInStatusPending, buyIn.Status)

		_, err = ledger.ApproveBuyIn(ctx, buyIn.ID, p1.ID)
		require.NoError(t, err)
	}

	return &table{ledger: ledger, session: session, p1: p1, p2: p2, p3: p3}
}

func TestLedgerScenarios(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := &capturingPublisher{}
	factory := infrastructure.NewUnitOfWorkFactory(testDB.DB, bus)
	ledger := application.NewLedger(factory, nil, money.DefaultTolerance)

	t.Run("balanced close settles one transfer", func(t *testing.T) {
		tbl := openTable(t, ctx, ledger, "a")

		result, err := ledger.CloseSession(ctx, tbl.session.ID, tbl.p1.ID, map[int64]money.Amount{
			tbl.p1.ID: money.FromUnits(50),
			tbl.p2.ID: money.FromUnits(150),
			tbl.p3.ID: money.FromUnits(100),
		})
		require.NoError(t, err)
		assert.Equal(t, money.FromUnits(300), result.Pool)
		assert.Equal(t, money.FromUnits(300), result.TotalOut)

		settlement, err := ledger.GetSettlement(ctx, tbl.session.ID)
		require.NoError(t, err)

		nets := map[int64]money.Amount{}
		for _, p := range settlement.Players {
			nets[p.UserID] = p.Net
		}
		assert.Equal(t, money.FromUnits(-50), nets[tbl.p1.ID])
		assert.Equal(t, money.FromUnits(50), nets[tbl.p2.ID])
		assert.Equal(t, money.Amount(0), nets[tbl.p3.ID])

		require.Len(t, settlement.Transfers, 1)
		assert.Equal(t, tbl.p1.ID, settlement.Transfers[0].FromUserID)
		assert.Equal(t, tbl.p2.ID, settlement.Transfers[0].ToUserID)
		assert.Equal(t, money.FromUnits(50), settlement.Transfers[0].Amount)

		again, err := ledger.GetSettlement(ctx, tbl.session.ID)
		require.NoError(t, err)
		assert.Equal(t, settlement, again)

		_, err = ledger.CloseSession(ctx, tbl.session.ID, tbl.p1.ID, nil)
		assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

		_, err = ledger.SubmitBuyIn(ctx, tbl.session.ID, tbl.p2.ID, tbl.p2.ID, money.FromUnits(10))
		assert.ErrorIs(t, err, domain.ErrSessionNotActive)

		assert.Contains(t, bus.types(), events.EventTypeSessionClosed)
	})

	t.Run("mismatched close leaves the session active", func(t *testing.T) {
		tbl := openTable(t, ctx, ledger, "b")

		_, err := ledger.CloseSession(ctx, tbl.session.ID, tbl.p1.ID, map[int64]money.Amount{
			tbl.p1.ID: money.FromUnits(50),
			tbl.p2.ID: money.FromUnits(100),
			tbl.p3.ID: money.FromUnits(100),
		})
		var mismatch *domain.AuditMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, money.FromUnits(300), mismatch.Pool)
		assert.Equal(t, money.FromUnits(250), mismatch.TotalOut)

		snapshot, err := ledger.GetSnapshot(ctx, tbl.session.ID)
		require.NoError(t, err)
		assert.True(t, snapshot.Session.IsActive())
		for _, p := range snapshot.Players {
			assert.Nil(t, p.FinalWinnings)
		}

		_, err = ledger.GetSettlement(ctx, tbl.session.ID)
		assert.ErrorIs(t, err, domain.ErrSessionNotClosed)
	})

	t.Run("cash-outs count toward extracted", func(t *testing.T) {
		host, err := ledger.RegisterUser(ctx, "Cash Host", "c-host")
		require.NoError(t, err)
		other, err := ledger.RegisterUser(ctx, "Cash Other", "c-other")
		require.NoError(t, err)

		session, err := ledger.CreateSession(ctx, host.ID, "c table", 0)
		require.NoError(t, err)

		_, err = ledger.SubmitBuyIn(ctx, session.ID, host.ID, host.ID, money.FromUnits(200))
		require.NoError(t, err)
		otherBuyIn, err := ledger.SubmitBuyIn(ctx, session.ID, other.ID, other.ID, money.FromUnits(100))
		require.NoError(t, err)
		_, err = ledger.ApproveBuyIn(ctx, otherBuyIn.ID, host.ID)
		require.NoError(t, err)

		_, err = ledger.RecordCashOut(ctx, session.ID, host.ID, host.ID, money.FromUnits(80))
		require.NoError(t, err)

		_, err = ledger.CloseSession(ctx, session.ID, host.ID, map[int64]money.Amount{
			host.ID:  money.FromUnits(150),
			other.ID: money.FromUnits(70),
		})
		require.NoError(t, err)

		settlement, err := ledger.GetSettlement(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, settlement.Players, 2)
		assert.Equal(t, money.FromUnits(200), settlement.Players[0].Invested)
		assert.Equal(t, money.FromUnits(230), settlement.Players[0].Extracted)
		assert.Equal(t, money.FromUnits(30), settlement.Players[0].Net)
	})

	t.Run("deleted pending buy-in never reaches the pool", func(t *testing.T) {
		tbl := openTable(t, ctx, ledger, "d")

		pending, err := ledger.SubmitBuyIn(ctx, tbl.session.ID, tbl.p3.ID, tbl.p3.ID, money.FromUnits(500))
		require.NoError(t, err)
		require.NoError(t, ledger.DeleteBuyIn(ctx, pending.ID, tbl.p1.ID))

		_, err = ledger.ApproveBuyIn(ctx, pending.ID, tbl.p1.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.False(t, errors.Is(err, domain.ErrAlreadyResolved))

		_, err = ledger.CloseSession(ctx, tbl.session.ID, tbl.p1.ID, map[int64]money.Amount{
			tbl.p1.ID: money.FromUnits(100),
			tbl.p2.ID: money.FromUnits(100),
			tbl.p3.ID: money.FromUnits(100),
		})
		require.NoError(t, err)

		settlement, err := ledger.GetSettlement(ctx, tbl.session.ID)
		require.NoError(t, err)
		for _, p := range settlement.Players {
			assert.Equal(t, money.FromUnits(100), p.Invested)
		}
	})

	t.Run("concurrent approvals resolve once", func(t *testing.T) {
		tbl := openTable(t, ctx, ledger, "race")

		pending, err := ledger.SubmitBuyIn(ctx, tbl.session.ID, tbl.p2.ID, tbl.p2.ID, money.FromUnits(40))
		require.NoError(t, err)

		const workers = 6
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(approve bool) {
				defer wg.Done()
				var err error
				if approve {
					_, err = ledger.ApproveBuyIn(ctx, pending.ID, tbl.p1.ID)
				} else {
					_, err = ledger.RejectBuyIn(ctx, pending.ID, tbl.p1.ID)
				}
				results <- err
			}(i%2 == 0)
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("close waits for in-flight writers", func(t *testing.T) {
		tbl := openTable(t, ctx, ledger, "close-race")

		var wg sync.WaitGroup
		wg.Add(2)
		var closeErr, buyInErr error
		go func() {
			defer wg.Done()
			_, closeErr = ledger.CloseSession(ctx, tbl.session.ID, tbl.p1.ID, map[int64]money.Amount{
				tbl.p1.ID: money.FromUnits(100),
				tbl.p2.ID: money.FromUnits(100),
				tbl.p3.ID: money.FromUnits(100),
			})
		}()
		go func() {
			defer wg.Done()
			_, buyInErr = ledger.SubmitBuyIn(ctx, tbl.session.ID, tbl.p1.ID, tbl.p1.ID, money.FromUnits(25))
		}()
		wg.Wait()

		// Either the buy-in landed first and unbalanced the audit, or the close won and the buy-in was refused
		if buyInErr == nil {
			assert.ErrorIs(t, closeErr, domain.ErrAuditMismatch)
		} else {
			assert.NoError(t, closeErr)
			assert.ErrorIs(t, buyInErr, domain.ErrSessionNotActive)
		}
	})
}

func TestIntegritySweep(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())
	ledger := application.NewLedger(factory, nil, money.DefaultTolerance)

	good := openTable(t, ctx, ledger, "sweep-good")
	_, err := ledger.CloseSession(ctx, good.session.ID, good.p1.ID, map[int64]money.Amount{
		good.p1.ID: money.FromUnits(120), good.p2.ID: money.FromUnits(80), good.p3.ID: money.FromUnits(100),
	})
	require.NoError(t, err)

	bad := openTable(t, ctx, ledger, "sweep-bad")
	_, err = ledger.CloseSession(ctx, bad.session.ID, bad.p1.ID, map[int64]money.Amount{
		bad.p1.ID: money.FromUnits(100), bad.p2.ID: money.FromUnits(100), bad.p3.ID: money.FromUnits(100),
	})
	require.NoError(t, err)

	// Simulate a manual edit that breaks the closed ledger
	_, err = testDB.DB.Exec(ctx,
		`UPDATE session_players SET final_winnings = final_winnings + 5000 WHERE session_id = $1 AND user_id = $2`,
		bad.session.ID, bad.p2.ID)
	require.NoError(t, err)

	sweep := application.NewIntegritySweep(factory, services.NewSettlementCalculator(money.DefaultTolerance), nil, "@hourly", time.Hour)
	report, err := sweep.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, []int64{bad.session.ID}, report.Unbalanced)
	assert.Empty(t, report.Failed)

	t.Run("invalid schedule", func(t *testing.T) {
		broken := application.NewIntegritySweep(factory, services.NewSettlementCalculator(0), nil, "every full moon", time.Hour)
		assert.Error(t, broken.Start(ctx))
	})
}
