package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/mkaric/squadup/internal/modules/lfg"
	"github.com/mkaric/squadup/internal/modules/lfg/domain"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Gateway is the chat-platform boundary: it registers the slash commands,
// routes interactions into the session transitions and watches voice
// states for abandoned rooms.
type Gateway struct {
	session     *discordgo.Session
	registry    *lfg.Registry
	scheduler   *lfg.Scheduler
	provisioner lfg.Provisioner
	logger      *zap.Logger

	emptyRoomDelay time.Duration
	registered     []*discordgo.ApplicationCommand
}

func NewGateway(
	session *discordgo.Session,
	registry *lfg.Registry,
	scheduler *lfg.Scheduler,
	provisioner lfg.Provisioner,
	emptyRoomDelay time.Duration,
	logger *zap.Logger,
) *Gateway {
	g := &Gateway{
		session:        session,
		registry:       registry,
		scheduler:      scheduler,
		provisioner:    provisioner,
		emptyRoomDelay: emptyRoomDelay,
		logger:         logger,
	}

	session.AddHandler(g.handleInteraction)
	session.AddHandler(g.handleVoiceStateUpdate)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("gateway ready", zap.Int("guilds", len(r.Guilds)))
	})

	return g
}

// Start opens the gateway connection and registers the slash commands.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	g.logger.Info("connected to Discord",
		zap.String("user", g.session.State.User.Username))

	for _, cmd := range commandDefinitions() {
		registered, err := g.session.ApplicationCommandCreate(g.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		g.registered = append(g.registered, registered)
	}

	g.logger.Info("slash commands registered", zap.Int("count", len(g.registered)))
	return nil
}

func (g *Gateway) Stop() error {
	return g.session.Close()
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	minPlayers := float64(domain.MinPlayers)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "lfg",
			Description: "Post a looking-for-group session",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "game",
					Description: "The game you want to play",
					Required:    true,
					Choices:     gameChoices(),
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "gamemode",
					Description:  "The gamemode to play",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "players",
					Description: "Target squad size, including you",
					Required:    true,
					MinValue:    &minPlayers,
					MaxValue:    float64(domain.MaxPlayers),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "info",
					Description: "Extra info for your squad (rank, mic, region...)",
				},
			},
		},
		{
			Name:        "quickjoin",
			Description: "Join the best open squad for a game",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "game",
					Description: "The game you want to play",
					Required:    true,
					Choices:     gameChoices(),
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "gamemode",
					Description:  "Preferred gamemode",
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "endlfg",
			Description: "End your squad (creator only)",
		},
		{
			Name:        "lfghelp",
			Description: "How the LFG bot works",
		},
	}
}

func gameChoices() []*discordgo.ApplicationCommandOptionChoice {
	games := domain.Games()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(games))
	for i, g := range games {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  g.Name,
			Value: g.Name,
		}
	}
	return choices
}
