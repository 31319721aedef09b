package service

import (
	"context"
	"errors"
	"sync"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// ErrNoPages is returned by Start when the view has nothing to show.
var ErrNoPages = errors.New("paginator has no pages")

type RenderPageFunc func(page string, index, total int) string

// Paginator is a read-only multi-page view navigated by two long-lived
// multi-cardinality collectors. The index saturates at both bounds; there
// is no wraparound. Once the collectors expire the buttons simply go inert,
// which is the accepted end of life for the view.
type Paginator struct {
	registry  *Registry
	sender    port.MessageSender
	responder port.InteractionResponder
	pages     []string
	render    RenderPageFunc
	requester string
	public    bool

	backLabel    string
	forwardLabel string

	mu        sync.Mutex
	index     int
	channelID string
	messageID string
	back      *Collector
	forward   *Collector
}

type PaginatorOption func(*Paginator)

// Public lets any user navigate, not just the requester.
func Public() PaginatorOption {
	return func(p *Paginator) {
		p.public = true
	}
}

func WithNavigationLabels(back, forward string) PaginatorOption {
	return func(p *Paginator) {
		p.backLabel = back
		p.forwardLabel = forward
	}
}

func NewPaginator(registry *Registry, sender port.MessageSender, responder port.InteractionResponder,
	pages []string, render RenderPageFunc, requester string, opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		registry:     registry,
		sender:       sender,
		responder:    responder,
		pages:        pages,
		render:       render,
		requester:    requester,
		backLabel:    "◀",
		forwardLabel: "▶",
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start registers the navigation collectors and sends the first page.
func (p *Paginator) Start(ctx context.Context, channelID string) error {
	if len(p.pages) == 0 {
		return ErrNoPages
	}

	opts := []CollectorOption{WithCardinality(Multi)}
	if !p.public {
		opts = append(opts, WithAllowedUsers(p.requester))
	}

	back, err := NewCollector(func(ctx context.Context, i *domain.Interaction, _ []string) {
		p.turn(ctx, i, -1)
	}, opts...)
	if err != nil {
		return err
	}

	forward, err := NewCollector(func(ctx context.Context, i *domain.Interaction, _ []string) {
		p.turn(ctx, i, 1)
	}, opts...)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.back = back
	p.forward = forward
	p.channelID = channelID
	content := p.content()
	p.mu.Unlock()

	messageID, err := p.sender.SendMessage(ctx, channelID, content)
	if err != nil {
		return err
	}

	// Collectors only go live once the message exists, so a press can never
	// race an unset message ID.
	p.mu.Lock()
	p.messageID = messageID
	p.mu.Unlock()

	p.registry.Register(back)
	p.registry.Register(forward)

	return nil
}

// Stop disposes both collectors; the view stops responding immediately.
func (p *Paginator) Stop() {
	p.mu.Lock()
	back, forward := p.back, p.forward
	p.mu.Unlock()

	p.registry.Unregister(back)
	p.registry.Unregister(forward)
}

func (p *Paginator) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

func (p *Paginator) turn(ctx context.Context, interaction *domain.Interaction, delta int) {
	if err := p.responder.AcknowledgeInteraction(ctx, interaction); err != nil {
		log.Warn().Err(err).Msg("failed to acknowledge page turn")
	}

	p.mu.Lock()

	next := p.index + delta
	if next < 0 {
		next = 0
	}
	if next > len(p.pages)-1 {
		next = len(p.pages) - 1
	}

	if next == p.index {
		p.mu.Unlock()
		return
	}

	p.index = next
	channelID, messageID := p.channelID, p.messageID
	content := p.content()

	p.mu.Unlock()

	if err := p.sender.EditMessage(ctx, channelID, messageID, content); err != nil {
		log.Warn().Err(err).Int("page", next).Msg("failed to render page")
	}
}

// content must be called with p.mu held or before Start returns.
func (p *Paginator) content() *domain.Content {
	return &domain.Content{
		Text: p.render(p.pages[p.index], p.index, len(p.pages)),
		Buttons: []domain.Button{
			{Label: p.backLabel, Token: p.back.Token(), Style: domain.ButtonSecondary},
			{Label: p.forwardLabel, Token: p.forward.Token(), Style: domain.ButtonSecondary},
		},
	}
}
