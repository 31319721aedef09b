package sender

import (
	"context"
	"sort"

	"moxbot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// DiscordSession is the slice of *discordgo.Session this adapter needs,
// kept narrow so tests can mock it.
type DiscordSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type Discord struct {
	session DiscordSession
}

func NewDiscord(session DiscordSession) *Discord {
	return &Discord{session: session}
}

func (s *Discord) SendMessage(ctx context.Context, channelID string, content *domain.Content) (string, error) {
	msg, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content.Text,
		Components: buildComponents(content.Buttons),
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("channel", channelID).Msg("failed to send message")
		return "", err
	}

	return msg.ID, nil
}

func (s *Discord) EditMessage(ctx context.Context, channelID, messageID string, content *domain.Content) error {
	components := buildComponents(content.Buttons)

	_, err := s.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content.Text,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("message", messageID).Msg("failed to edit message")
	}

	return err
}

func (s *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return s.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (s *Discord) BulkDeleteMessages(ctx context.Context, channelID string, messageIDs []string) error {
	return s.session.ChannelMessagesBulkDelete(channelID, messageIDs, discordgo.WithContext(ctx))
}

func (s *Discord) GetMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	msg, err := s.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	m := toDomainMessage(msg)
	return &m, nil
}

func (s *Discord) FetchMessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]domain.Message, error) {
	msgs, err := s.session.ChannelMessages(channelID, limit, "", afterID, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = toDomainMessage(msg)
	}

	// The API returns newest first; callers index forward.
	sort.Slice(out, func(i, j int) bool {
		return domain.CompareSnowflakes(out[i].ID, out[j].ID) < 0
	})

	return out, nil
}

func (s *Discord) AcknowledgeInteraction(ctx context.Context, interaction *domain.Interaction) error {
	return s.session.InteractionRespond(&discordgo.Interaction{
		ID:    interaction.ID,
		Token: interaction.ResponseToken,
	}, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx))
}

func (s *Discord) ShowModal(ctx context.Context, interaction *domain.Interaction, modal *domain.Modal) error {
	rows := make([]discordgo.MessageComponent, len(modal.Fields))
	for i, field := range modal.Fields {
		style := discordgo.TextInputShort
		if field.Paragraph {
			style = discordgo.TextInputParagraph
		}

		rows[i] = discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID: field.Key,
				Label:    field.Label,
				Style:    style,
				Value:    field.Value,
				Required: field.Required,
			},
		}}
	}

	return s.session.InteractionRespond(&discordgo.Interaction{
		ID:    interaction.ID,
		Token: interaction.ResponseToken,
	}, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modal.Token,
			Title:      modal.Title,
			Components: rows,
		},
	}, discordgo.WithContext(ctx))
}

func buildComponents(buttons []domain.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}

	row := discordgo.ActionsRow{Components: make([]discordgo.MessageComponent, len(buttons))}
	for i, b := range buttons {
		style := discordgo.SecondaryButton
		switch b.Style {
		case domain.ButtonPrimary:
			style = discordgo.PrimaryButton
		case domain.ButtonDanger:
			style = discordgo.DangerButton
		case domain.ButtonSecondary:
		}

		row.Components[i] = discordgo.Button{
			Label:    b.Label,
			Style:    style,
			CustomID: b.Token,
		}
	}

	return []discordgo.MessageComponent{row}
}

func toDomainMessage(msg *discordgo.Message) domain.Message {
	m := domain.Message{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Text:      msg.Content,
		Timestamp: msg.Timestamp,
	}

	if msg.Author != nil {
		m.AuthorID = msg.Author.ID
		m.Username = msg.Author.Username
	}

	return m
}
