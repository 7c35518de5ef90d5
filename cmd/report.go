package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cashgame/application"
	"cashgame/config"
	"cashgame/database"
	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/money"
	"cashgame/infrastructure"

	"github.com/pterm/pterm"
)

// Report prints the ledger of one session, and its settlement once closed
func Report(ctx context.Context, code string) error {
	cfg := config.Get()
	SetupLogging(cfg)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	ledger := application.NewLedger(uowFactory, nil, cfg.AuditTolerance)

	snapshot, err := ledger.GetSnapshotByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", code, err)
	}

	var settlement *entities.Settlement
	if snapshot.Session.IsClosed() {
		settlement, err = ledger.GetSettlement(ctx, snapshot.Session.ID)
		if err != nil && !errors.Is(err, domain.ErrUnbalancedLedger) {
			return fmt.Errorf("failed to settle session %s: %w", code, err)
		}
		if err != nil {
			pterm.Error.Printfln("Settlement does not balance: %v", err)
		}
	}

	out, err := renderReport(snapshot, settlement)
	if err != nil {
		return err
	}
	pterm.Println(out)
	return nil
}

func renderReport(snapshot *entities.SessionSnapshot, settlement *entities.Settlement) (string, error) {
	var sb strings.Builder
	session := snapshot.Session

	sb.WriteString(pterm.DefaultSection.Sprintf("%s (%s) %s", session.Name, session.Code, session.Status))
	sb.WriteString(pterm.Sprintfln("Pool %s | Cashed out %s | On table %s",
		snapshot.Pool(), snapshot.CashedOut(), snapshot.OnTable()))

	seats := pterm.TableData{{"Seat", "Player", "Role", "Bought in", "Cashed out", "Final chips"}}
	for _, p := range snapshot.Players {
		var bought, out money.Amount
		for _, b := range snapshot.BuyIns {
			if b.UserID == p.UserID && b.IsApproved() {
				bought += b.Amount
			}
		}
		for _, c := range snapshot.CashOuts {
			if c.UserID == p.UserID {
				out += c.Amount
			}
		}
		final := "-"
		if p.FinalWinnings != nil {
			final = p.FinalWinnings.String()
		}
		seats = append(seats, []string{
			strconv.FormatInt(p.SeatNo, 10),
			p.Name,
			string(p.Role),
			bought.String(),
			out.String(),
			final,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(seats).Srender()
	if err != nil {
		return "", fmt.Errorf("failed to render seats: %w", err)
	}
	sb.WriteString(table)
	sb.WriteString("\n")

	if pending := snapshot.PendingBuyIns(); len(pending) > 0 {
		sb.WriteString(pterm.Warning.Sprintfln("%d buy-in(s) still waiting for the host", len(pending)))
	}

	if settlement == nil {
		return sb.String(), nil
	}

	sb.WriteString(pterm.DefaultSection.Sprint("Settlement"))
	results := pterm.TableData{{"Player", "Invested", "Extracted", "Net"}}
	for _, r := range settlement.Players {
		net := r.Net.String()
		if r.Net > 0 {
			net = "+" + net
		}
		results = append(results, []string{r.Name, r.Invested.String(), r.Extracted.String(), net})
	}
	table, err = pterm.DefaultTable.WithHasHeader().WithData(results).Srender()
	if err != nil {
		return "", fmt.Errorf("failed to render results: %w", err)
	}
	sb.WriteString(table)
	sb.WriteString("\n\n")

	if len(settlement.Transfers) == 0 {
		sb.WriteString("Everyone is square.\n")
	}
	for _, t := range settlement.Transfers {
		sb.WriteString(pterm.Sprintfln("%s pays %s %s", t.FromName, t.ToName, t.Amount))
	}
	if settlement.Unallocated != 0 {
		sb.WriteString(pterm.Sprintfln("Unallocated: %s", settlement.Unallocated))
	}

	return sb.String(), nil
}
