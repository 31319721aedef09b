package commands

import (
	"context"
	"sort"
	"strings"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"
	"moxbot/internal/core/service"

	"github.com/rs/zerolog/log"
)

const helpPageSize = 6

// HelpHandler renders the registered command list as a paginated view.
type HelpHandler struct {
	commands  *domain.CommandRegistry
	registry  *service.Registry
	sender    port.MessageSender
	responder port.InteractionResponder
	localiser port.Localiser
	command   string
}

func NewHelpHandler(commands *domain.CommandRegistry, registry *service.Registry, sender port.MessageSender,
	responder port.InteractionResponder, localiser port.Localiser, command string) *HelpHandler {
	return &HelpHandler{
		commands:  commands,
		registry:  registry,
		sender:    sender,
		responder: responder,
		localiser: localiser,
		command:   command,
	}
}

func (h *HelpHandler) GetCommand() string {
	return h.command
}

func (h *HelpHandler) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	names := h.commands.ListCommands()
	sort.Strings(names)

	var pages []string
	for start := 0; start < len(names); start += helpPageSize {
		end := min(start+helpPageSize, len(names))

		var sb strings.Builder
		for _, name := range names[start:end] {
			sb.WriteString(name)
			sb.WriteString(" — ")
			sb.WriteString(h.localiser.Localise(message.Locale, "help.command."+strings.TrimPrefix(name, "/")))
			sb.WriteByte('\n')
		}
		pages = append(pages, sb.String())
	}

	if len(pages) == 0 {
		pages = []string{h.localiser.Localise(message.Locale, "help.empty")}
	}

	locale := message.Locale
	render := func(page string, index, total int) string {
		return h.localiser.Localise(locale, "help.title", index+1, total) + "\n\n" + page
	}

	view := service.NewPaginator(h.registry, h.sender, h.responder, pages, render, message.AuthorID)
	if err := view.Start(ctx, message.ChannelID); err != nil {
		log.Error().Err(err).Str("channelId", message.ChannelID).Msg("failed to start help view")
		return err
	}

	return nil
}
