package table

import (
	"fmt"
	"strings"

	"cashgame/bot/common"
	"cashgame/domain/entities"
	"cashgame/domain/money"

	"github.com/bwmarrin/discordgo"
)

const maxDescriptionChars = 4096

func buildCreatedEmbed(session *entities.Session, host *entities.User) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🃏 %s", session.Name),
		Description: fmt.Sprintf("Table code **`%s`**\nJoin with `/table join code:%s`", session.Code, session.Code),
		Color:       common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Host", Value: host.Name, Inline: true},
			{Name: "Blind", Value: common.FormatAmount(session.BlindValue), Inline: true},
		},
	}
}

func buildStatusEmbed(snapshot *entities.SessionSnapshot) *discordgo.MessageEmbed {
	session := snapshot.Session

	invested := make(map[int64]money.Amount)
	for _, b := range snapshot.BuyIns {
		if b.IsApproved() {
			invested[b.UserID] += b.Amount
		}
	}
	cashedOut := make(map[int64]money.Amount)
	for _, c := range snapshot.CashOuts {
		cashedOut[c.UserID] += c.Amount
	}

	var sb strings.Builder
	for _, p := range snapshot.Players {
		role := ""
		if p.IsAdmin() {
			role = " 👑"
		}
		fmt.Fprintf(&sb, "`%2d` **%s**%s in %s, out %s\n",
			p.SeatNo, p.Name, role,
			common.FormatAmount(invested[p.UserID]),
			common.FormatAmount(cashedOut[p.UserID]))
	}
	if pending := snapshot.PendingBuyIns(); len(pending) > 0 {
		sb.WriteString("\n**Waiting for the host**\n")
		for _, b := range pending {
			name := fmt.Sprintf("Player %d", b.UserID)
			if p := snapshot.Player(b.UserID); p != nil {
				name = p.Name
			}
			fmt.Fprintf(&sb, "#%d %s %s\n", b.ID, name, common.FormatAmount(b.Amount))
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("Nobody is seated yet.")
	}

	color := common.ColorInfo
	if session.IsClosed() {
		color = common.ColorWarning
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🃏 %s (`%s`) %s", session.Name, session.Code, session.Status),
		Description: common.Truncate(sb.String(), maxDescriptionChars),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Pool", Value: common.FormatAmount(snapshot.Pool()), Inline: true},
			{Name: "Cashed out", Value: common.FormatAmount(snapshot.CashedOut()), Inline: true},
			{Name: "On the table", Value: common.FormatAmount(snapshot.OnTable()), Inline: true},
		},
	}
}

func buildAuditEmbed(session *entities.Session, result *entities.AuditResult, balanced bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Pool", Value: common.FormatAmount(result.Pool), Inline: true},
			{Name: "Already out", Value: common.FormatAmount(result.AlreadyOut), Inline: true},
			{Name: "Chips counted", Value: common.FormatAmount(result.TableNow), Inline: true},
			{Name: "Total out", Value: common.FormatAmount(result.TotalOut), Inline: true},
			{Name: "Difference", Value: common.FormatSigned(result.Discrepancy()), Inline: true},
		},
	}

	if balanced {
		embed.Title = fmt.Sprintf("✅ %s is closed", session.Name)
		embed.Description = fmt.Sprintf("The books balance. See who pays whom with `/table settle code:%s`.", session.Code)
		embed.Color = common.ColorSuccess
	} else {
		embed.Title = fmt.Sprintf("⚠️ %s did not close", session.Name)
		embed.Description = "The chip counts do not match the money in play. Recount and try again."
		embed.Color = common.ColorDanger
	}
	return embed
}

func buildSettlementEmbed(session *entities.Session, settlement *entities.Settlement) *discordgo.MessageEmbed {
	var sb strings.Builder
	sb.WriteString("**Results**\n")
	for _, p := range settlement.Players {
		fmt.Fprintf(&sb, "%s: %s\n", p.Name, common.FormatSigned(p.Net))
	}

	sb.WriteString("\n**Payments**\n")
	if len(settlement.Transfers) == 0 {
		sb.WriteString("Everyone is square.\n")
	}
	for _, t := range settlement.Transfers {
		fmt.Fprintf(&sb, "%s ➜ %s: **%s**\n", t.FromName, t.ToName, common.FormatAmount(t.Amount))
	}
	if settlement.Unallocated != 0 {
		fmt.Fprintf(&sb, "\nUnallocated rounding: %s\n", common.FormatSigned(settlement.Unallocated))
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🧾 Settlement for %s (`%s`)", session.Name, session.Code),
		Description: common.Truncate(sb.String(), maxDescriptionChars),
		Color:       common.ColorPrimary,
	}
}
