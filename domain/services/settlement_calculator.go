package services

import (
	"fmt"
	"sort"

	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/money"
)

// SettlementCalculator turns the persisted ledger of a closed session into
// per-player nets and a list of transfers.
//
// Transfers come from a single greedy pass: givers and receivers are walked in
// seat order with one pointer each, and every step pays min(remaining debt,
// remaining credit). Each giver pays exactly its debt and each receiver gets
// exactly its credit, but the number of transfers is not minimised. A
// minimum-transfer plan is a subset-sum style problem and is not attempted.
type SettlementCalculator struct {
	tolerance money.Amount
}

// NewSettlementCalculator creates a calculator that accepts a debt/credit
// imbalance up to tolerance, matching the slack allowed by the close audit.
func NewSettlementCalculator(tolerance money.Amount) *SettlementCalculator {
	if tolerance < 0 {
		tolerance = 0
	}
	return &SettlementCalculator{tolerance: tolerance}
}

type balance struct {
	player    *entities.SessionPlayer
	remaining money.Amount
}

// Calculate computes the settlement. It never mutates its inputs.
func (c *SettlementCalculator) Calculate(session *entities.Session, players []*entities.SessionPlayer, buyIns []*entities.BuyIn) (*entities.Settlement, error) {
	if session == nil {
		return nil, domain.ErrNotFound
	}
	if !session.IsClosed() {
		return nil, fmt.Errorf("session %d: %w", session.ID, domain.ErrSessionNotClosed)
	}

	seated := make([]*entities.SessionPlayer, len(players))
	copy(seated, players)
	sort.SliceStable(seated, func(i, j int) bool {
		return seated[i].SeatNo < seated[j].SeatNo
	})

	invested := make(map[int64]money.Amount, len(seated))
	for _, p := range seated {
		invested[p.UserID] = 0
	}
	for _, b := range buyIns {
		if !b.IsApproved() {
			continue
		}
		if _, ok := invested[b.UserID]; !ok {
			return nil, fmt.Errorf("%w: approved buy-in %d belongs to unseated user %d", domain.ErrUnbalancedLedger, b.ID, b.UserID)
		}
		invested[b.UserID] += b.Amount
	}

	settlement := &entities.Settlement{
		SessionID: session.ID,
		Players:   make([]entities.PlayerResult, 0, len(seated)),
		Transfers: []entities.Transfer{},
	}

	var givers, receivers []*balance
	var totalDebt, totalCredit money.Amount
	for _, p := range seated {
		if p.FinalWinnings == nil {
			return nil, fmt.Errorf("%w: player %d has no final winnings", domain.ErrUnbalancedLedger, p.UserID)
		}
		extracted := *p.FinalWinnings
		net := extracted - invested[p.UserID]

		settlement.Players = append(settlement.Players, entities.PlayerResult{
			UserID:    p.UserID,
			Name:      p.Name,
			Invested:  invested[p.UserID],
			Extracted: extracted,
			Net:       net,
		})

		switch {
		case net < 0:
			givers = append(givers, &balance{player: p, remaining: -net})
			totalDebt += -net
		case net > 0:
			receivers = append(receivers, &balance{player: p, remaining: net})
			totalCredit += net
		}
	}

	if !money.WithinTolerance(totalDebt, totalCredit, c.tolerance) {
		return nil, fmt.Errorf("%w: session %d debts %s, credits %s", domain.ErrUnbalancedLedger, session.ID, totalDebt, totalCredit)
	}

	gi, ri := 0, 0
	for gi < len(givers) && ri < len(receivers) {
		giver, receiver := givers[gi], receivers[ri]
		payment := money.Min(giver.remaining, receiver.remaining)
		if payment > 0 {
			settlement.Transfers = append(settlement.Transfers, entities.Transfer{
				FromUserID: giver.player.UserID,
				ToUserID:   receiver.player.UserID,
				FromName:   giver.player.Name,
				ToName:     receiver.player.Name,
				Amount:     payment,
			})
			giver.remaining -= payment
			receiver.remaining -= payment
		}
		if giver.remaining == 0 {
			gi++
		}
		if receiver.remaining == 0 {
			ri++
		}
	}

	settlement.Unallocated = totalCredit - totalDebt
	return settlement, nil
}
