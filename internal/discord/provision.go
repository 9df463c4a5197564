package discord

import (
	"context"
	"fmt"

	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Provisioner creates and destroys the private voice room for a filled
// session: a category named after the squad's short code with one
// user-limited voice channel inside it.
type Provisioner struct {
	session *discordgo.Session
	logger  *zap.Logger
}

var _ lfg.Provisioner = (*Provisioner)(nil)

func NewProvisioner(session *discordgo.Session, logger *zap.Logger) *Provisioner {
	return &Provisioner{session: session, logger: logger}
}

func (p *Provisioner) ProvisionRoom(ctx context.Context, s domain.Session) (string, error) {
	category, err := p.session.GuildChannelCreateComplex(s.GuildID, discordgo.GuildChannelCreateData{
		Name: fmt.Sprintf("Squad %s", s.ShortCode()),
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create squad category: %w", err)
	}

	voice, err := p.session.GuildChannelCreateComplex(s.GuildID, discordgo.GuildChannelCreateData{
		Name:      fmt.Sprintf("%s - %s", s.Game, s.Gamemode),
		Type:      discordgo.ChannelTypeGuildVoice,
		ParentID:  category.ID,
		UserLimit: s.PlayersNeeded,
	})
	if err != nil {
		// The category without its room is useless; drop it right away.
		if delErr := p.deleteChannel(category.ID); delErr != nil {
			p.logger.Warn("failed to remove category after room creation failure",
				zap.String("category_id", category.ID), zap.Error(delErr))
		}
		return "", fmt.Errorf("failed to create voice room: %w", err)
	}

	p.logger.Info("voice room provisioned",
		zap.String("session_id", s.ID),
		zap.String("voice_channel_id", voice.ID),
		zap.String("category_id", category.ID))

	return voice.ID, nil
}

// DestroyRoom deletes the voice channel and, when its parent category is
// left childless, the category too. Already-deleted targets are success.
func (p *Provisioner) DestroyRoom(ctx context.Context, roomID string) error {
	channel, err := p.session.Channel(roomID)
	if err != nil {
		if isUnknownChannel(err) {
			return nil
		}
		return err
	}

	if err := p.deleteChannel(roomID); err != nil {
		return err
	}

	if channel.ParentID == "" {
		return nil
	}

	childless, err := p.categoryChildless(channel.GuildID, channel.ParentID)
	if err != nil {
		p.logger.Warn("failed to check category occupancy",
			zap.String("category_id", channel.ParentID), zap.Error(err))
		return nil
	}

	if childless {
		if err := p.deleteChannel(channel.ParentID); err != nil {
			p.logger.Warn("failed to delete empty category",
				zap.String("category_id", channel.ParentID), zap.Error(err))
		}
	}

	return nil
}

func (p *Provisioner) deleteChannel(id string) error {
	if _, err := p.session.ChannelDelete(id); err != nil && !isUnknownChannel(err) {
		return err
	}
	return nil
}

func (p *Provisioner) categoryChildless(guildID, categoryID string) (bool, error) {
	channels, err := p.session.GuildChannels(guildID)
	if err != nil {
		return false, err
	}

	for _, ch := range channels {
		if ch.ParentID == categoryID {
			return false, nil
		}
	}
	return true, nil
}

func isUnknownChannel(err error) bool {
	restErr, ok := err.(*discordgo.RESTError)
	return ok && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel
}
