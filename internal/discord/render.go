package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkaric/squadup/internal/modules/core"
	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	joinButtonPrefix  = "lfg_join:"
	leaveButtonPrefix = "lfg_leave:"

	colorWaiting = 0x5865F2
	colorFull    = 0x57F287
)

// Renderer owns the session card message: one embed per session with
// join/leave buttons keyed by the session id.
type Renderer struct {
	session *discordgo.Session
	logger  *zap.Logger
}

var _ lfg.Renderer = (*Renderer)(nil)

func NewRenderer(session *discordgo.Session, logger *zap.Logger) *Renderer {
	return &Renderer{session: session, logger: logger}
}

func (r *Renderer) PostCard(ctx context.Context, s domain.Session) (string, string, error) {
	msg, err := r.session.ChannelMessageSendComplex(s.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{sessionEmbed(s)},
		Components: sessionButtons(s),
	})
	if err != nil {
		return "", "", err
	}

	return msg.ChannelID, msg.ID, nil
}

func (r *Renderer) UpdateCard(ctx context.Context, s domain.Session) error {
	if s.MessageID == "" {
		return nil
	}

	_, err := r.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    s.ChannelID,
		ID:         s.MessageID,
		Embeds:     []*discordgo.MessageEmbed{sessionEmbed(s)},
		Components: sessionButtons(s),
	})
	return err
}

func (r *Renderer) DeleteCard(ctx context.Context, s domain.Session) error {
	if s.MessageID == "" {
		return nil
	}

	err := r.session.ChannelMessageDelete(s.ChannelID, s.MessageID)
	if err != nil && isUnknownMessage(err) {
		return nil
	}
	return err
}

// NotifyFilled pings every participant in the session's channel with a
// link to the provisioned room, or just announces the full squad when no
// room could be created.
func (r *Renderer) NotifyFilled(ctx context.Context, s domain.Session) error {
	mentions := core.Map(s.Players, func(p domain.Player) string {
		return fmt.Sprintf("<@%s>", p.ID)
	})

	content := fmt.Sprintf("%s your **%s** squad `%s` is full!",
		strings.Join(mentions, " "), s.Game, s.ShortCode())

	if s.VoiceChannelID != "" {
		content += fmt.Sprintf(" Hop into <#%s>.", s.VoiceChannelID)
	} else {
		content += " No voice room could be created, sort yourselves out."
	}

	_, err := r.session.ChannelMessageSend(s.ChannelID, content)
	return err
}

func sessionEmbed(s domain.Session) *discordgo.MessageEmbed {
	roster := core.Map(s.Players, func(p domain.Player) string {
		return fmt.Sprintf("• %s", p.Username)
	})
	if len(roster) > 0 {
		roster[0] += " 👑"
	}

	color := colorWaiting
	title := fmt.Sprintf("LFG: %s — %s", s.Game, s.Gamemode)
	if s.Status == domain.StatusFull {
		color = colorFull
		title = fmt.Sprintf("Squad full: %s — %s", s.Game, s.Gamemode)
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Players",
				Value:  fmt.Sprintf("%d / %d", len(s.Players), s.PlayersNeeded),
				Inline: true,
			},
			{
				Name:   "Expires",
				Value:  fmt.Sprintf("<t:%d:R>", s.ExpiresAt.Unix()),
				Inline: true,
			},
			{
				Name:  "Roster",
				Value: strings.Join(roster, "\n"),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Squad %s", s.ShortCode()),
		},
	}

	if s.Info != "" {
		embed.Description = s.Info
	}

	return embed
}

func sessionButtons(s domain.Session) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join squad",
					Style:    discordgo.SuccessButton,
					CustomID: joinButtonPrefix + s.ID,
					Disabled: s.Status == domain.StatusFull,
				},
				discordgo.Button{
					Label:    "Leave squad",
					Style:    discordgo.DangerButton,
					CustomID: leaveButtonPrefix + s.ID,
				},
			},
		},
	}
}

func isUnknownMessage(err error) bool {
	restErr, ok := err.(*discordgo.RESTError)
	return ok && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}
