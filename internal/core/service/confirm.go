package service

import (
	"context"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// DefaultDecisionExpiry bounds how long a confirmation prompt waits. No
// answer counts as declined.
const DefaultDecisionExpiry = 2 * time.Minute

type DecisionRequest struct {
	ChannelID    string
	Text         string
	ConfirmLabel string
	CancelLabel  string
	AllowedUsers []string
	Expiry       time.Duration
}

// Prompter resolves a yes/no decision from a user. The returned interaction
// is the button press that settled it, usable as an anchor for follow-up
// responses; it is nil when the prompt expired or was cancelled by context.
type Prompter interface {
	Await(ctx context.Context, req *DecisionRequest) (bool, *domain.Interaction, error)
}

// DecisionPrompt gates an operation behind a continue/cancel button pair
// built from two one-shot collectors feeding a single-producer, single-
// consumer signal.
type DecisionPrompt struct {
	registry *Registry
	sender   port.MessageSender
	cleaner  port.MessageCleaner
}

func NewDecisionPrompt(registry *Registry, sender port.MessageSender, cleaner port.MessageCleaner) *DecisionPrompt {
	return &DecisionPrompt{registry: registry, sender: sender, cleaner: cleaner}
}

type decision struct {
	confirmed   bool
	interaction *domain.Interaction
}

// Await sends the prompt and blocks until one button fires, the context is
// cancelled or the prompt expires. Expiry is a legitimate outcome and maps
// to declined.
func (p *DecisionPrompt) Await(ctx context.Context, req *DecisionRequest) (bool, *domain.Interaction, error) {
	expiry := req.Expiry
	if expiry <= 0 {
		expiry = DefaultDecisionExpiry
	}

	result := make(chan decision, 1)

	opts := []CollectorOption{WithExpiry(expiry)}
	if len(req.AllowedUsers) > 0 {
		opts = append(opts, WithAllowedUsers(req.AllowedUsers...))
	}

	confirm, err := NewCollector(func(_ context.Context, i *domain.Interaction, _ []string) {
		select {
		case result <- decision{confirmed: true, interaction: i}:
		default:
		}
	}, opts...)
	if err != nil {
		return false, nil, err
	}

	cancel, err := NewCollector(func(_ context.Context, i *domain.Interaction, _ []string) {
		select {
		case result <- decision{confirmed: false, interaction: i}:
		default:
		}
	}, opts...)
	if err != nil {
		return false, nil, err
	}

	p.registry.Register(confirm)
	p.registry.Register(cancel)

	confirmLabel := req.ConfirmLabel
	if confirmLabel == "" {
		confirmLabel = "Continue"
	}
	cancelLabel := req.CancelLabel
	if cancelLabel == "" {
		cancelLabel = "Cancel"
	}

	messageID, err := p.sender.SendMessage(ctx, req.ChannelID, &domain.Content{
		Text: req.Text,
		Buttons: []domain.Button{
			{Label: confirmLabel, Token: confirm.Token(), Style: domain.ButtonDanger},
			{Label: cancelLabel, Token: cancel.Token(), Style: domain.ButtonSecondary},
		},
	})
	if err != nil {
		p.registry.Unregister(confirm)
		p.registry.Unregister(cancel)
		return false, nil, err
	}

	defer p.cleanup(req.ChannelID, messageID, confirm, cancel)

	t := time.NewTimer(expiry)
	defer t.Stop()

	select {
	case d := <-result:
		return d.confirmed, d.interaction, nil
	case <-t.C:
		log.Debug().Str("channel", req.ChannelID).Msg("decision prompt expired")
		return false, nil, nil
	case <-ctx.Done():
		return false, nil, ctx.Err()
	}
}

func (p *DecisionPrompt) cleanup(channelID, messageID string, collectors ...*Collector) {
	for _, c := range collectors {
		p.registry.Unregister(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.cleaner.DeleteMessage(ctx, channelID, messageID); err != nil {
		log.Warn().Err(err).Str("message", messageID).Msg("failed to remove decision prompt")
	}
}
