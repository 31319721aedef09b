package port

import (
	"context"

	"moxbot/internal/core/domain"
)

type MessageSender interface {
	// SendMessage posts content to a channel and returns the created message ID.
	SendMessage(ctx context.Context, channelID string, content *domain.Content) (string, error)
	// EditMessage replaces the content of a previously sent message.
	EditMessage(ctx context.Context, channelID, messageID string, content *domain.Content) error
}

type MessageCleaner interface {
	// DeleteMessage removes a single message.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// BulkDeleteMessages removes up to 100 messages in one call. The platform
	// rejects batches of one and messages older than its bulk-deletion age rule.
	BulkDeleteMessages(ctx context.Context, channelID string, messageIDs []string) error
}

type ChannelHistory interface {
	// GetMessage fetches a single message by ID.
	GetMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error)
	// FetchMessagesAfter returns up to limit messages posted after the given
	// message ID, ordered oldest first.
	FetchMessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]domain.Message, error)
}

type InteractionResponder interface {
	// AcknowledgeInteraction answers an interaction without visible output so the
	// control never shows a stuck loading state.
	AcknowledgeInteraction(ctx context.Context, interaction *domain.Interaction) error
	// ShowModal opens a form in response to an interaction.
	ShowModal(ctx context.Context, interaction *domain.Interaction, modal *domain.Modal) error
}
