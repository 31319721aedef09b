package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"
	"moxbot/internal/core/service"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const minReportDetails = 20

type ticket struct {
	Subject  string `json:"subject"`
	Details  string `json:"details"`
	Reporter string `json:"reporter"`
	GuildID  string `json:"guild_id"`
	Created  string `json:"created"`
}

// ReportHandler files user reports as ticket documents through a
// retry-capable modal form.
type ReportHandler struct {
	registry  *service.Registry
	runner    service.FormRunner
	prompter  service.Prompter
	sender    port.MessageSender
	responder port.InteractionResponder
	store     port.DocumentStore
	localiser port.Localiser
	command   string
}

func NewReportHandler(registry *service.Registry, runner service.FormRunner, prompter service.Prompter,
	sender port.MessageSender, responder port.InteractionResponder, store port.DocumentStore,
	localiser port.Localiser, command string) *ReportHandler {
	return &ReportHandler{
		registry:  registry,
		runner:    runner,
		prompter:  prompter,
		sender:    sender,
		responder: responder,
		store:     store,
		localiser: localiser,
		command:   command,
	}
}

func (h *ReportHandler) GetCommand() string {
	return h.command
}

// Respond sends an "open form" button; the modal itself can only be
// presented in response to a component interaction.
func (h *ReportHandler) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	l := log.With().
		Str("messageId", message.ID).
		Str("channelId", message.ChannelID).
		Str("command", h.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opener, err := service.NewCollector(func(ctx context.Context, i *domain.Interaction, _ []string) {
		if err := h.compose(ctx, i); err != nil {
			l.Error().Err(err).Msg("report form failed")
		}
	}, service.WithAllowedUsers(message.AuthorID))
	if err != nil {
		return err
	}

	h.registry.Register(opener)

	_, err = h.sender.SendMessage(ctx, message.ChannelID, &domain.Content{
		Text: h.localiser.Localise(message.Locale, "report.open"),
		Buttons: []domain.Button{
			{Label: h.localiser.Localise(message.Locale, "report.open_button"), Token: opener.Token(), Style: domain.ButtonPrimary},
		},
	})
	if err != nil {
		h.registry.Unregister(opener)
		l.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
		return err
	}

	return nil
}

func (h *ReportHandler) compose(ctx context.Context, anchor *domain.Interaction) error {
	locale := anchor.Locale

	form := &service.Form{
		Title: h.localiser.Localise(locale, "report.title"),
		Fields: []domain.ModalField{
			{Key: "subject", Label: h.localiser.Localise(locale, "report.subject"), Required: true},
			{Key: "details", Label: h.localiser.Localise(locale, "report.details"), Required: true, Paragraph: true},
		},
	}

	session, err := h.runner.Run(ctx, anchor, form, h.validate, h.recover)
	if err != nil {
		if errors.Is(err, domain.ErrFormAbandoned) {
			log.Debug().Str("user", anchor.UserID).Msg("report abandoned")
			return nil
		}
		return err
	}

	if err := h.save(ctx, anchor, session); err != nil {
		return err
	}

	_, err = h.sender.SendMessage(ctx, anchor.ChannelID, &domain.Content{
		Text: h.localiser.Localise(locale, "report.filed"),
	})
	if err != nil {
		return fmt.Errorf("failed to confirm report: %w", err)
	}

	return nil
}

func (h *ReportHandler) validate(_ context.Context, values map[string]string) error {
	if values["subject"] == "" {
		return &service.ValidationError{Code: "subject_required"}
	}
	if len(values["details"]) < minReportDetails {
		return &service.ValidationError{Code: "details_too_short"}
	}
	return nil
}

// recover offers a retry after a rejected submission. The retry button
// press becomes the next render's anchor; declining abandons the form.
func (h *ReportHandler) recover(ctx context.Context, code string, session *service.Session) (*domain.Interaction, error) {
	locale := session.Anchor.Locale

	retry, via, err := h.prompter.Await(ctx, &service.DecisionRequest{
		ChannelID:    session.Anchor.ChannelID,
		Text:         h.localiser.Localise(locale, "report.invalid."+code),
		ConfirmLabel: h.localiser.Localise(locale, "report.retry"),
		CancelLabel:  h.localiser.Localise(locale, "report.discard"),
		AllowedUsers: []string{session.Anchor.UserID},
	})
	if err != nil {
		return nil, err
	}
	if !retry {
		// The discard press resolves nothing downstream, so it has to be
		// answered here or the control stays stuck on the platform side.
		if via != nil {
			if err := h.responder.AcknowledgeInteraction(ctx, via); err != nil {
				log.Warn().Err(err).Msg("failed to acknowledge discarded report")
			}
		}
		return nil, nil
	}

	return via, nil
}

func (h *ReportHandler) save(ctx context.Context, anchor *domain.Interaction, session *service.Session) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	body, err := json.Marshal(ticket{
		Subject:  session.Values["subject"],
		Details:  session.Values["details"],
		Reporter: anchor.UserID,
		GuildID:  anchor.GuildID,
		Created:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode ticket: %w", err)
	}

	if err := h.store.SaveDocument(ctx, &domain.Document{
		Kind: "ticket",
		ID:   id.String(),
		Body: body,
	}); err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}

	log.Info().Str("ticket", id.String()).Str("reporter", anchor.UserID).Msg("report filed")

	return nil
}
