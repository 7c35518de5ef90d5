package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"cashgame/bot/common"
	"cashgame/domain"
	"cashgame/domain/entities"
	"cashgame/domain/money"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	name := ""
	if opt, ok := opts["name"]; ok {
		name = strings.TrimSpace(opt.StringValue())
	}
	if name == "" {
		common.RespondWithError(s, i, "Please give the table a name.")
		return
	}

	var blind money.Amount
	if opt, ok := opts["blind"]; ok {
		parsed, err := money.ParseNonNegative(opt.StringValue())
		if err != nil {
			common.HandleError(s, i, "table create", err)
			return
		}
		blind = parsed
	}

	host, err := f.actor(ctx, i)
	if err != nil {
		common.HandleError(s, i, "table create", err)
		return
	}

	session, err := f.ledger.CreateSession(ctx, host.ID, name, blind)
	if err != nil {
		common.HandleError(s, i, "table create", err)
		return
	}
	f.remember(session.ID, i.ChannelID)

	log.WithFields(log.Fields{
		"sessionID": session.ID,
		"code":      session.Code,
		"host":      host.ID,
	}).Info("Table opened from Discord")

	common.RespondWithEmbed(s, i, buildCreatedEmbed(session, host), false)
}

func (f *Feature) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	code, ok := stringOption(opts, "code")
	if !ok {
		common.RespondWithError(s, i, "Please provide the table code.")
		return
	}

	user, err := f.actor(ctx, i)
	if err != nil {
		common.HandleError(s, i, "table join", err)
		return
	}

	seat, err := f.ledger.JoinSession(ctx, code, user.ID)
	if err != nil {
		common.HandleError(s, i, "table join", err)
		return
	}
	f.remember(seat.SessionID, i.ChannelID)

	common.RespondWithMessage(s, i, fmt.Sprintf("🪑 **%s** took seat %d at `%s`.", seat.Name, seat.SeatNo, strings.ToUpper(code)), false)
}

func (f *Feature) handleBuyIn(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	code, ok := stringOption(opts, "code")
	if !ok {
		common.RespondWithError(s, i, "Please provide the table code.")
		return
	}
	raw, ok := stringOption(opts, "amount")
	if !ok {
		common.RespondWithError(s, i, "Please provide an amount.")
		return
	}
	amount, err := money.ParsePositive(raw)
	if err != nil {
		common.HandleError(s, i, "table buyin", err)
		return
	}

	actor, err := f.actor(ctx, i)
	if err != nil {
		common.HandleError(s, i, "table buyin", err)
		return
	}
	target := actor
	if opt, ok := opts["user"]; ok {
		target, err = f.ledgerUser(ctx, opt.UserValue(s))
		if err != nil {
			common.HandleError(s, i, "table buyin", err)
			return
		}
	}

	snapshot, err := f.ledger.GetSnapshotByCode(ctx, code)
	if err != nil {
		common.HandleError(s, i, "table buyin", err)
		return
	}
	f.remember(snapshot.Session.ID, i.ChannelID)

	buyIn, err := f.ledger.SubmitBuyIn(ctx, snapshot.Session.ID, actor.ID, target.ID, amount)
	if err != nil {
		common.HandleError(s, i, "table buyin", err)
		return
	}

	var message string
	if buyIn.IsApproved() {
		message = fmt.Sprintf("✅ **%s** bought in for **%s**.", target.Name, common.FormatAmount(buyIn.Amount))
	} else {
		message = fmt.Sprintf("⏳ Buy-in #%d for **%s** (%s) is waiting for the host.", buyIn.ID, target.Name, common.FormatAmount(buyIn.Amount))
	}
	common.RespondWithMessage(s, i, message, false)
}

func (f *Feature) handleResolve(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, approve bool) {
	ctx := context.Background()
	command := "table reject"
	if approve {
		command = "table approve"
	}

	opt, ok := opts["id"]
	if !ok || opt.IntValue() <= 0 {
		common.RespondWithError(s, i, "Please provide the buy-in ID.")
		return
	}

	actor, err := f.actor(ctx, i)
	if err != nil {
		common.HandleError(s, i, command, err)
		return
	}

	var buyIn *entities.BuyIn
	if approve {
		buyIn, err = f.ledger.ApproveBuyIn(ctx, opt.IntValue(), actor.ID)
	} else {
		buyIn, err = f.ledger.RejectBuyIn(ctx, opt.IntValue(), actor.ID)
	}
	if err != nil {
		common.HandleError(s, i, command, err)
		return
	}

	common.RespondWithMessage(s, i, fmt.Sprintf("Buy-in #%d for %s is now **%s**.", buyIn.ID, common.FormatAmount(buyIn.Amount), buyIn.Status), false)
}

func (f *Feature) handleCashOut(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	code, ok := stringOption(opts, "code")
	if !ok {
		common.RespondWithError(s, i, "Please provide the table code.")
		return
	}
	userOpt, ok := opts["user"]
	if !ok {
		common.RespondWithError(s, i, "Please choose the player leaving the table.")
		return
	}
	raw, ok := stringOption(opts, "amount")
	if !ok {
		common.RespondWithError(s, i, "Please provide an amount.")
		return
	}
	amount, err := money.ParsePositive(raw)
	if err != nil {
		common.HandleError(s, i, "table cashout", err)
		return
	}

	actor, err := f.actor(ctx, i)
	if err != nil {
		common.HandleError(s, i, "table cashout", err)
		return
	}
	player, err := f.ledgerUser(ctx, userOpt.UserValue(s))
	if err != nil {
		common.HandleError(s, i, "table cashout", err)
		return
	}

	snapshot, err := f.ledger.GetSnapshotByCode(ctx, code)
	if err != nil {
		common.HandleError(s, i, "table cashout", err)
		return
	}

	cashOut, err := f.ledger.RecordCashOut(ctx, snapshot.Session.ID, actor.ID, player.ID, amount)
	if err != nil {
		common.HandleError(s, i, "table cashout", err)
		return
	}

	common.RespondWithMessage(s, i, fmt.Sprintf("💸 **%s** cashed out **%s**.", player.Name, common.FormatAmount(cashOut.Amount)), false)
}

func (f *Feature) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	code, ok := stringOption(opts, "code")
	if !ok {
		common.RespondWithError(s, i, "Please provide the table code.")
		return
	}
	chipsText := ""
	if opt, ok := opts["chips"]; ok {
		chipsText = opt.StringValue()
	}
	byDiscordID, err := ParseChipCounts(chipsText)
	if err != nil {
		common.RespondWithError(s, i, fmt.Sprintf("Could not read the chip counts: %v", err))
		return
	}

	actor, err := f.actor(ctx, i)
	if err != nil {
		common.HandleError(s, i, "table close", err)
		return
	}

	finalChips := make(map[int64]money.Amount, len(byDiscordID))
	for discordID, amount := range byDiscordID {
		id, err := common.ParseUserID(discordID)
		if err != nil {
			common.RespondWithError(s, i, fmt.Sprintf("Could not read the mention <@%s>.", discordID))
			return
		}
		user, err := f.ledger.EnsureDiscordUser(ctx, id, "", "")
		if err != nil {
			common.HandleError(s, i, "table close", err)
			return
		}
		finalChips[user.ID] = amount
	}

	snapshot, err := f.ledger.GetSnapshotByCode(ctx, code)
	if err != nil {
		common.HandleError(s, i, "table close", err)
		return
	}

	result, err := f.ledger.CloseSession(ctx, snapshot.Session.ID, actor.ID, finalChips)
	var mismatch *domain.AuditMismatchError
	switch {
	case errors.As(err, &mismatch) && result != nil:
		common.RespondWithEmbed(s, i, buildAuditEmbed(snapshot.Session, result, false), false)
		return
	case err != nil:
		common.HandleError(s, i, "table close", err)
		return
	}

	log.WithFields(log.Fields{
		"sessionID": snapshot.Session.ID,
		"pool":      result.Pool,
		"totalOut":  result.TotalOut,
	}).Info("Table closed from Discord")

	common.RespondWithEmbed(s, i, buildAuditEmbed(snapshot.Session, result, true), false)
}

func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	code, ok := stringOption(opts, "code")
	if !ok {
		common.RespondWithError(s, i, "Please provide the table code.")
		return
	}

	snapshot, err := f.ledger.GetSnapshotByCode(ctx, code)
	if err != nil {
		common.HandleError(s, i, "table status", err)
		return
	}

	common.RespondWithEmbed(s, i, buildStatusEmbed(snapshot), false)
}

func (f *Feature) handleSettle(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	code, ok := stringOption(opts, "code")
	if !ok {
		common.RespondWithError(s, i, "Please provide the table code.")
		return
	}

	snapshot, err := f.ledger.GetSnapshotByCode(ctx, code)
	if err != nil {
		common.HandleError(s, i, "table settle", err)
		return
	}

	settlement, err := f.ledger.GetSettlement(ctx, snapshot.Session.ID)
	if err != nil {
		common.HandleError(s, i, "table settle", err)
		return
	}

	embed := buildSettlementEmbed(snapshot.Session, settlement)
	image, err := newSettlementCard().Render(snapshot.Session, settlement)
	if err != nil {
		log.WithError(err).Warn("Failed to render settlement image")
		common.RespondWithEmbed(s, i, embed, false)
		return
	}

	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + settlementImageName}
	common.RespondWithEmbedAndFile(s, i, embed, &discordgo.File{
		Name:        settlementImageName,
		ContentType: "image/png",
		Reader:      bytes.NewReader(image),
	})
}

// actor maps the invoking Discord user to a ledger user, creating one on first use
func (f *Feature) actor(ctx context.Context, i *discordgo.InteractionCreate) (*entities.User, error) {
	user := common.InteractionUser(i)
	if user == nil {
		return nil, common.NewUserError("Could not tell who sent this command.")
	}
	discordID, err := common.ParseUserID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid discord id %q: %w", user.ID, err)
	}
	return f.ledger.EnsureDiscordUser(ctx, discordID, common.DisplayName(i.Member, user), user.Username)
}

func (f *Feature) ledgerUser(ctx context.Context, user *discordgo.User) (*entities.User, error) {
	if user == nil {
		return nil, common.NewUserError("Could not find that Discord user.")
	}
	discordID, err := common.ParseUserID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid discord id %q: %w", user.ID, err)
	}
	return f.ledger.EnsureDiscordUser(ctx, discordID, common.DisplayName(nil, user), user.Username)
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	opt, ok := opts[name]
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(opt.StringValue())
	return value, value != ""
}
