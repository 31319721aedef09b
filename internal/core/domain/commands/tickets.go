package commands

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"
	"moxbot/internal/core/service"

	"github.com/rs/zerolog/log"
)

const ticketsPageSize = 5

// TicketsHandler pages through filed report tickets.
type TicketsHandler struct {
	registry  *service.Registry
	sender    port.MessageSender
	responder port.InteractionResponder
	store     port.DocumentStore
	localiser port.Localiser
	command   string
}

func NewTicketsHandler(registry *service.Registry, sender port.MessageSender, responder port.InteractionResponder,
	store port.DocumentStore, localiser port.Localiser, command string) *TicketsHandler {
	return &TicketsHandler{
		registry:  registry,
		sender:    sender,
		responder: responder,
		store:     store,
		localiser: localiser,
		command:   command,
	}
}

func (h *TicketsHandler) GetCommand() string {
	return h.command
}

func (h *TicketsHandler) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	l := log.With().
		Str("messageId", message.ID).
		Str("channelId", message.ChannelID).
		Str("command", h.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	docs, err := h.store.ListDocuments(ctx, "ticket")
	if err != nil {
		l.Error().Err(err).Msg("failed to list tickets")
		return err
	}

	if len(docs) == 0 {
		_, err := h.sender.SendMessage(ctx, message.ChannelID, &domain.Content{
			Text: h.localiser.Localise(message.Locale, "tickets.empty"),
		})
		if err != nil {
			l.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
		}
		return err
	}

	pages := h.paginate(docs)

	locale := message.Locale
	render := func(page string, index, total int) string {
		return h.localiser.Localise(locale, "tickets.title", index+1, total) + "\n\n" + page
	}

	view := service.NewPaginator(h.registry, h.sender, h.responder, pages, render, message.AuthorID)
	if err := view.Start(ctx, message.ChannelID); err != nil {
		l.Error().Err(err).Msg("failed to start ticket view")
		return err
	}

	return nil
}

func (h *TicketsHandler) paginate(docs []domain.Document) []string {
	var pages []string

	for start := 0; start < len(docs); start += ticketsPageSize {
		end := min(start+ticketsPageSize, len(docs))

		var sb strings.Builder
		for _, doc := range docs[start:end] {
			var tk ticket
			if err := json.Unmarshal(doc.Body, &tk); err != nil {
				log.Warn().Err(err).Str("ticket", doc.ID).Msg("skipping malformed ticket")
				continue
			}

			sb.WriteString(doc.ID[:min(len(doc.ID), 8)])
			sb.WriteString(" · ")
			sb.WriteString(tk.Subject)
			sb.WriteString(" (")
			sb.WriteString(tk.Reporter)
			sb.WriteString(")\n")
		}
		pages = append(pages, sb.String())
	}

	return pages
}
