package handler

import (
	"context"
	"strings"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Interaction routes inbound gateway events: component presses and modal
// submissions go to the collector registry, prefixed messages to the
// command registry.
type Interaction struct {
	collectors *service.Registry
	commands   *domain.CommandRegistry
	timeout    time.Duration
	locale     string
}

func NewInteraction(collectors *service.Registry, commands *domain.CommandRegistry,
	timeout time.Duration, defaultLocale string) *Interaction {
	return &Interaction{
		collectors: collectors,
		commands:   commands,
		timeout:    timeout,
		locale:     defaultLocale,
	}
}

func (h *Interaction) HandleInteractionCreate(_ *discordgo.Session, e *discordgo.InteractionCreate) {
	interaction := mapInteraction(e)
	if interaction == nil {
		return
	}

	log.Debug().Str("token", interaction.Token).Str("user", interaction.UserID).Msg("received interaction")

	h.collectors.Dispatch(context.Background(), interaction)
}

func (h *Interaction) HandleMessageCreate(s *discordgo.Session, e *discordgo.MessageCreate) {
	if e.Author == nil || e.Author.Bot {
		return
	}

	if !strings.HasPrefix(e.Content, "/") {
		return
	}

	log.Debug().Str("message", e.Content).Msg("received command")

	cmd := domain.ParseCommand(e.Content)
	commandHandler, err := h.commands.Get(cmd)
	if err != nil {
		log.Debug().Str("command", cmd).Msg("no handler for command")
		return
	}

	message := &domain.Message{
		ID:        e.ID,
		ChannelID: e.ChannelID,
		GuildID:   e.GuildID,
		AuthorID:  e.Author.ID,
		Username:  e.Author.Username,
		Locale:    h.locale,
		Text:      e.Content,
		Timestamp: e.Timestamp,
	}

	go func() {
		if err := commandHandler.Respond(context.Background(), h.timeout, message); err != nil {
			log.Err(err).Str("command", cmd).Msg("failed to respond to command")
		}
	}()
}

func mapInteraction(e *discordgo.InteractionCreate) *domain.Interaction {
	interaction := &domain.Interaction{
		ID:            e.ID,
		ResponseToken: e.Token,
		ChannelID:     e.ChannelID,
		GuildID:       e.GuildID,
		Locale:        string(e.Locale),
	}

	if e.Member != nil && e.Member.User != nil {
		interaction.UserID = e.Member.User.ID
	} else if e.User != nil {
		interaction.UserID = e.User.ID
	}

	if e.Message != nil {
		interaction.MessageID = e.Message.ID
	}

	switch e.Type {
	case discordgo.InteractionMessageComponent:
		interaction.Token = e.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		data := e.ModalSubmitData()
		interaction.Token = data.CustomID
		interaction.Values = collectModalValues(data.Components)
	default:
		return nil
	}

	return interaction
}

func collectModalValues(components []discordgo.MessageComponent) map[string]string {
	values := make(map[string]string)

	for _, component := range components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}

	return values
}
