package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession builds the Discord gateway session with the intents the bot
// needs: guild metadata, messages for the session cards, and voice states
// for the empty-room watcher.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates

	return session, nil
}
