package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkaric/squadup/internal/modules/core"
	"github.com/mkaric/squadup/internal/modules/lfg/commands"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/eskrenkovic/mediator-go"
	"go.uber.org/zap"
)

func (g *Gateway) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		g.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		g.handleAutocomplete(s, i)
	case discordgo.InteractionMessageComponent:
		g.handleComponent(s, i)
	}
}

func (g *Gateway) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case "lfg":
		g.handleCreate(s, i)
	case "quickjoin":
		g.handleQuickJoin(s, i)
	case "endlfg":
		g.handleEnd(s, i)
	case "lfghelp":
		g.handleHelp(s, i)
	default:
		g.logger.Warn("unknown command", zap.String("command", data.Name))
	}
}

func (g *Gateway) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i.ApplicationCommandData().Options)
	user := interactionUser(i)

	command := commands.CreateSessionCommand{
		UserID:        user.ID,
		Username:      user.Username,
		GuildID:       i.GuildID,
		ChannelID:     i.ChannelID,
		Game:          stringOption(opts, "game"),
		Gamemode:      stringOption(opts, "gamemode"),
		PlayersNeeded: intOption(opts, "players"),
		Info:          stringOption(opts, "info"),
	}

	response, err := mediator.Send[commands.CreateSessionCommand, commands.CreateSessionResponse](
		context.Background(),
		command,
	)
	if err != nil {
		g.replyError(s, i, err)
		return
	}

	g.reply(s, i, fmt.Sprintf(
		"Squad `%s` created for **%s — %s** (%d players). Good luck!",
		response.Session.ShortCode(), response.Session.Game,
		response.Session.Gamemode, response.Session.PlayersNeeded,
	))
}

func (g *Gateway) handleQuickJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i.ApplicationCommandData().Options)
	user := interactionUser(i)

	command := commands.QuickJoinCommand{
		GuildID:       i.GuildID,
		UserID:        user.ID,
		Username:      user.Username,
		Game:          stringOption(opts, "game"),
		PreferredMode: stringOption(opts, "gamemode"),
	}

	response, err := mediator.Send[commands.QuickJoinCommand, commands.JoinSessionResponse](
		context.Background(),
		command,
	)
	if err != nil {
		var notFound domain.NotFoundError
		if errors.As(err, &notFound) {
			g.reply(s, i, fmt.Sprintf(
				"No open squads for **%s** right now. Start one with `/lfg`!",
				stringOption(opts, "game"),
			))
			return
		}
		g.replyError(s, i, err)
		return
	}

	g.reply(s, i, joinAck(response))
}

func (g *Gateway) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)

	response, err := mediator.Send[commands.EndSessionCommand, commands.EndSessionResponse](
		context.Background(),
		commands.EndSessionCommand{UserID: user.ID},
	)
	if err != nil {
		g.replyError(s, i, err)
		return
	}

	g.reply(s, i, fmt.Sprintf("Squad `%s` ended.", response.Session.ShortCode()))
}

func (g *Gateway) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	g.reply(s, i,
		"**LFG bot**\n"+
			"`/lfg` — post a squad for a game and mode; others join with the button.\n"+
			"`/quickjoin` — hop into the best open squad for a game.\n"+
			"`/endlfg` — end your squad (creator only).\n"+
			"When a squad fills, a private voice room is created for it. "+
			"Unfilled squads expire automatically.")
}

func (g *Gateway) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	user := interactionUser(i)

	switch {
	case strings.HasPrefix(customID, joinButtonPrefix):
		sessionID := strings.TrimPrefix(customID, joinButtonPrefix)

		response, err := mediator.Send[commands.JoinSessionCommand, commands.JoinSessionResponse](
			context.Background(),
			commands.JoinSessionCommand{SessionID: sessionID, UserID: user.ID, Username: user.Username},
		)
		if err != nil {
			g.replyError(s, i, err)
			return
		}

		g.reply(s, i, joinAck(response))

	case strings.HasPrefix(customID, leaveButtonPrefix):
		sessionID := strings.TrimPrefix(customID, leaveButtonPrefix)

		response, err := mediator.Send[commands.LeaveSessionCommand, commands.LeaveSessionResponse](
			context.Background(),
			commands.LeaveSessionCommand{SessionID: sessionID, UserID: user.ID},
		)
		if err != nil {
			g.replyError(s, i, err)
			return
		}

		if response.Destroyed {
			g.reply(s, i, "You left and the squad disbanded.")
			return
		}
		g.reply(s, i, "You left the squad.")

	default:
		g.logger.Warn("unknown component", zap.String("custom_id", customID))
	}
}

func (g *Gateway) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := i.ApplicationCommandData().Options

	game := ""
	partial := ""
	for _, opt := range opts {
		switch opt.Name {
		case "game":
			game = opt.StringValue()
		case "gamemode":
			if opt.Focused {
				partial = opt.StringValue()
			}
		}
	}

	choices := core.Map(domain.MatchModes(game, partial, 25), func(mode string) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{Name: mode, Value: mode}
	})

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		g.logger.Warn("failed to respond to autocomplete", zap.Error(err))
	}
}

func joinAck(response commands.JoinSessionResponse) string {
	if response.Filled {
		if response.Session.VoiceChannelID != "" {
			return fmt.Sprintf("You completed squad `%s`! Voice room: <#%s>",
				response.Session.ShortCode(), response.Session.VoiceChannelID)
		}
		return fmt.Sprintf("You completed squad `%s`!", response.Session.ShortCode())
	}

	return fmt.Sprintf("You joined squad `%s` (%d/%d).",
		response.Session.ShortCode(),
		len(response.Session.Players), response.Session.PlayersNeeded)
}

// reply sends a private acknowledgment to the invoking user. Errors and
// confirmations are never broadcast to the channel.
func (g *Gateway) reply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.logger.Warn("failed to respond to interaction", zap.Error(err))
	}
}

// replyError converts a domain error into a private, user-readable
// message. Unexpected errors get a generic reply and a log entry.
func (g *Gateway) replyError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var (
		duplicate  domain.DuplicateSessionError
		notFound   domain.NotFoundError
		permission domain.PermissionError
		capacity   domain.CapacityError
		command    core.CommandError
	)

	switch {
	case errors.As(err, &duplicate):
		g.reply(s, i, "You're already in a squad. Leave it or end it before joining another.")
	case errors.As(err, &capacity):
		g.reply(s, i, "That squad just filled up. Try `/quickjoin` for another one.")
	case errors.As(err, &notFound):
		g.reply(s, i, "That squad no longer exists.")
	case errors.As(err, &permission):
		g.reply(s, i, "Only the squad creator can end it.")
	case errors.As(err, &command) && command.StatusCode == 400:
		g.reply(s, i, "Invalid command input. Check the values and try again.")
	default:
		g.logger.Error("interaction failed", zap.Error(err))
		g.reply(s, i, "Something went wrong. Try again in a moment.")
	}
}

func optionMap(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}
