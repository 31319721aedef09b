package service

import (
	"context"
	"sync"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry correlates inbound interactions to the collectors waiting for
// them. It is an injectable service, so tests and multiple bot instances
// each own an isolated table.
type Registry struct {
	mu         sync.Mutex
	collectors map[string]*Collector
	responder  port.InteractionResponder
}

func NewRegistry(responder port.InteractionResponder) *Registry {
	return &Registry{
		collectors: make(map[string]*Collector),
		responder:  responder,
	}
}

// Register inserts a collector into the live table and starts its expiry
// sweep. An expired collector is removed silently; its callback is never
// invoked for the timeout.
func (r *Registry) Register(c *Collector) {
	r.mu.Lock()
	r.collectors[c.key] = c
	r.mu.Unlock()

	log.Debug().Str("collector", c.key).Time("expiresAt", c.expiresAt).Msg("collector registered")

	go r.sweep(c)
}

func (r *Registry) sweep(c *Collector) {
	t := time.NewTimer(time.Until(c.expiresAt))
	defer t.Stop()

	select {
	case <-t.C:
		log.Debug().Str("collector", c.key).Msg("collector expired")
		r.remove(c.key)
	case <-c.exit:
	}
}

// Unregister is idempotent; it is safe after expiry or a prior removal.
func (r *Registry) Unregister(c *Collector) {
	if c == nil {
		return
	}

	r.remove(c.key)
}

func (r *Registry) remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collectors[key]
	if !ok {
		return
	}

	delete(r.collectors, key)
	close(c.exit)
}

// Dispatch matches one inbound interaction against the table. Every
// non-match outcome (undecodable token, unknown key, disallowed user, unmet
// dependency) is acknowledged at the transport and dropped; it is not an
// error. A single-cardinality collector leaves the table under the lock,
// before its callback runs, so a platform redelivery cannot double-fire it.
// Callbacks for the same collector run in arrival order; callbacks for
// different collectors run concurrently.
func (r *Registry) Dispatch(ctx context.Context, interaction *domain.Interaction) {
	key, args, ok := domain.DecodeToken(interaction.Token)
	if !ok {
		r.acknowledge(ctx, interaction, "undecodable token")
		return
	}

	r.mu.Lock()

	c, found := r.collectors[key]
	switch {
	case !found:
		r.mu.Unlock()
		r.acknowledge(ctx, interaction, "no collector for key")
		return
	case time.Now().After(c.expiresAt):
		r.mu.Unlock()
		r.acknowledge(ctx, interaction, "collector past expiry")
		return
	case !c.allows(interaction.UserID):
		r.mu.Unlock()
		r.acknowledge(ctx, interaction, "user not allowed")
		return
	case c.dependsOn != nil && !c.dependsOn.fired:
		r.mu.Unlock()
		r.acknowledge(ctx, interaction, "dependency has not fired")
		return
	}

	c.fired = true
	if c.cardinality == Single {
		delete(r.collectors, c.key)
		close(c.exit)
	}

	prev := c.tail
	done := make(chan struct{})
	c.tail = done

	r.mu.Unlock()

	log.Debug().Str("collector", c.key).Str("user", interaction.UserID).Msg("dispatching interaction")

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		c.onCollect(ctx, interaction, args)
	}()
}

// Len reports the number of live collectors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.collectors)
}

func (r *Registry) acknowledge(ctx context.Context, interaction *domain.Interaction, reason string) {
	log.Debug().Str("token", interaction.Token).Str("reason", reason).Msg("interaction did not match")

	if r.responder == nil {
		return
	}

	if err := r.responder.AcknowledgeInteraction(ctx, interaction); err != nil {
		log.Warn().Err(err).Msg("failed to acknowledge unmatched interaction")
	}
}
