package service

import (
	"context"
	"errors"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// ValidationError marks a submission rejected by the caller's onSubmit. It
// never escapes the composer loop; the code selects the recovery message.
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Code
}

type Form struct {
	Title  string
	Fields []domain.ModalField
}

// Session is the transient state of one composer run: the accumulated field
// values, the interaction the next render anchors to, and how many
// submissions have been attempted.
type Session struct {
	Values  map[string]string
	Anchor  *domain.Interaction
	Submits int
}

type SubmitFunc func(ctx context.Context, values map[string]string) error

// InvalidFunc recovers from a validation failure. Returning a non-nil
// interaction re-renders the form anchored to it; returning nil abandons
// the run.
type InvalidFunc func(ctx context.Context, code string, session *Session) (*domain.Interaction, error)

// FormRunner drives a retry-capable modal form to completion.
type FormRunner interface {
	Run(ctx context.Context, anchor *domain.Interaction, form *Form, onSubmit SubmitFunc, onInvalid InvalidFunc) (*Session, error)
}

// Composer renders a modal, waits for exactly one submission through a
// fresh single-cardinality collector per attempt, and loops on validation
// failure with the prior answers pre-filled. At most one collector is live
// per composer at any time.
type Composer struct {
	registry  *Registry
	responder port.InteractionResponder
	expiry    time.Duration
}

func NewComposer(registry *Registry, responder port.InteractionResponder) *Composer {
	return &Composer{
		registry:  registry,
		responder: responder,
		expiry:    DefaultExpiry,
	}
}

// Run executes the form loop. A successful submission returns the final
// session. Abandonment (expiry, or onInvalid yielding no new anchor)
// returns domain.ErrFormAbandoned. Only transport failures and context
// cancellation surface as other errors.
func (c *Composer) Run(ctx context.Context, anchor *domain.Interaction, form *Form,
	onSubmit SubmitFunc, onInvalid InvalidFunc) (*Session, error) {
	session := &Session{
		Values: make(map[string]string, len(form.Fields)),
		Anchor: anchor,
	}

	for _, field := range form.Fields {
		if field.Value != "" {
			session.Values[field.Key] = field.Value
		}
	}

	for {
		submitted := make(chan *domain.Interaction, 1)

		collector, err := NewCollector(func(_ context.Context, i *domain.Interaction, _ []string) {
			select {
			case submitted <- i:
			default:
			}
		}, WithAllowedUsers(anchor.UserID), WithExpiry(c.expiry))
		if err != nil {
			return session, err
		}

		c.registry.Register(collector)

		modal := &domain.Modal{
			Token:  collector.Token(),
			Title:  form.Title,
			Fields: prefill(form.Fields, session.Values),
		}

		if err := c.responder.ShowModal(ctx, session.Anchor, modal); err != nil {
			c.registry.Unregister(collector)
			return session, err
		}

		t := time.NewTimer(c.expiry)

		select {
		case i := <-submitted:
			t.Stop()

			session.Submits++
			session.Anchor = i
			for key, value := range i.Values {
				session.Values[key] = value
			}

			err := onSubmit(ctx, session.Values)
			if err == nil {
				return session, nil
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				return session, err
			}

			log.Debug().Str("code", verr.Code).Int("submits", session.Submits).Msg("form submission rejected")

			next, err := onInvalid(ctx, verr.Code, session)
			if err != nil {
				return session, err
			}
			if next == nil {
				return session, domain.ErrFormAbandoned
			}

			session.Anchor = next
		case <-t.C:
			c.registry.Unregister(collector)
			return session, domain.ErrFormAbandoned
		case <-ctx.Done():
			t.Stop()
			c.registry.Unregister(collector)
			return session, ctx.Err()
		}
	}
}

func prefill(fields []domain.ModalField, values map[string]string) []domain.ModalField {
	out := make([]domain.ModalField, len(fields))
	for i, field := range fields {
		out[i] = field
		if value, ok := values[field.Key]; ok {
			out[i].Value = value
		}
	}
	return out
}
