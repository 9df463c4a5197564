package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// handleVoiceStateUpdate watches the rooms this bot provisioned. A room
// dropping to zero occupants arms its cleanup timer; anyone (re)joining
// cancels it immediately. At most one pending timer exists per room.
func (g *Gateway) handleVoiceStateUpdate(s *discordgo.Session, vsu *discordgo.VoiceStateUpdate) {
	affected := make([]string, 0, 2)
	if vsu.BeforeUpdate != nil && vsu.BeforeUpdate.ChannelID != "" {
		affected = append(affected, vsu.BeforeUpdate.ChannelID)
	}
	if vsu.ChannelID != "" && (len(affected) == 0 || affected[0] != vsu.ChannelID) {
		affected = append(affected, vsu.ChannelID)
	}

	for _, channelID := range affected {
		if !g.registry.HasVoiceChannel(channelID) {
			continue
		}

		occupants := g.occupants(s, vsu.GuildID, channelID)
		if occupants > 0 {
			g.scheduler.CancelRoomCleanup(channelID)
			continue
		}

		guildID := vsu.GuildID
		g.logger.Info("voice room empty, scheduling cleanup",
			zap.String("voice_channel_id", channelID))

		g.scheduler.ScheduleRoomCleanup(channelID, g.emptyRoomDelay, func(roomID string) {
			g.cleanupRoom(guildID, roomID)
		})
	}
}

// cleanupRoom fires when the empty-room timer elapses. Occupancy is
// re-verified before deleting - someone may have joined between the last
// tracked update and now.
func (g *Gateway) cleanupRoom(guildID, roomID string) {
	if g.occupants(g.session, guildID, roomID) > 0 {
		return
	}

	g.logger.Info("deleting abandoned voice room",
		zap.String("voice_channel_id", roomID))

	if err := g.provisioner.DestroyRoom(context.Background(), roomID); err != nil {
		g.logger.Warn("failed to delete abandoned voice room",
			zap.String("voice_channel_id", roomID), zap.Error(err))
	}
}

func (g *Gateway) occupants(s *discordgo.Session, guildID, channelID string) int {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			count++
		}
	}
	return count
}
