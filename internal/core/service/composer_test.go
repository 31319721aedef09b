package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"moxbot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveModal(t *testing.T, ms *mockMessenger) *domain.Modal {
	t.Helper()

	select {
	case modal := <-ms.modals:
		return modal
	case <-time.After(time.Second):
		t.Fatal("modal was never shown")
		return nil
	}
}

func submit(r *Registry, modal *domain.Modal, values map[string]string) {
	r.Dispatch(context.Background(), &domain.Interaction{
		Token:  modal.Token,
		UserID: "user-1",
		Values: values,
	})
}

func reportForm() *Form {
	return &Form{
		Title: "File a report",
		Fields: []domain.ModalField{
			{Key: "subject", Label: "Subject", Required: true},
			{Key: "details", Label: "Details", Paragraph: true},
		},
	}
}

func TestComposerSucceedsFirstAttempt(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	c := NewComposer(r, ms)

	anchor := &domain.Interaction{UserID: "user-1", ChannelID: "chan-1"}

	done := make(chan *Session, 1)
	go func() {
		session, err := c.Run(context.Background(), anchor, reportForm(),
			func(_ context.Context, _ map[string]string) error { return nil },
			func(_ context.Context, _ string, _ *Session) (*domain.Interaction, error) {
				t.Error("onInvalid must not be called")
				return nil, nil
			})
		assert.NoError(t, err)
		done <- session
	}()

	modal := receiveModal(t, ms)
	submit(r, modal, map[string]string{"subject": "hi", "details": "all good"})

	session := <-done
	assert.Equal(t, 1, session.Submits)
	assert.Equal(t, "hi", session.Values["subject"])
	assert.Equal(t, 0, r.Len())
}

func TestComposerRetryPreservesValues(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	c := NewComposer(r, ms)

	anchor := &domain.Interaction{UserID: "user-1", ChannelID: "chan-1"}
	retryAnchor := &domain.Interaction{UserID: "user-1", ChannelID: "chan-1", ID: "retry"}

	attempts := 0
	codes := make(chan string, 1)

	done := make(chan *Session, 1)
	go func() {
		session, err := c.Run(context.Background(), anchor, reportForm(),
			func(_ context.Context, values map[string]string) error {
				attempts++
				if values["details"] == "" {
					return &ValidationError{Code: "details_required"}
				}
				return nil
			},
			func(_ context.Context, code string, _ *Session) (*domain.Interaction, error) {
				codes <- code
				return retryAnchor, nil
			})
		assert.NoError(t, err)
		done <- session
	}()

	first := receiveModal(t, ms)
	submit(r, first, map[string]string{"subject": "broken bot"})

	assert.Equal(t, "details_required", <-codes)

	// The second render is pre-filled with the first submission's values.
	second := receiveModal(t, ms)
	require.Len(t, second.Fields, 2)
	assert.Equal(t, "broken bot", second.Fields[0].Value)
	assert.Equal(t, "", second.Fields[1].Value)

	submit(r, second, map[string]string{"subject": "broken bot", "details": "it crashed"})

	session := <-done
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, session.Submits)
	assert.Equal(t, "broken bot", session.Values["subject"])
	assert.Equal(t, "it crashed", session.Values["details"])
	assert.Equal(t, 0, r.Len())
}

func TestComposerAbandonedByInvalidHandler(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	c := NewComposer(r, ms)

	anchor := &domain.Interaction{UserID: "user-1", ChannelID: "chan-1"}

	done := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background(), anchor, reportForm(),
			func(_ context.Context, _ map[string]string) error {
				return &ValidationError{Code: "nope"}
			},
			func(_ context.Context, _ string, _ *Session) (*domain.Interaction, error) {
				return nil, nil
			})
		done <- err
	}()

	modal := receiveModal(t, ms)
	submit(r, modal, map[string]string{"subject": "x"})

	assert.ErrorIs(t, <-done, domain.ErrFormAbandoned)
	assert.Equal(t, 0, r.Len())
}

func TestComposerExpiry(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	c := NewComposer(r, ms)
	c.expiry = 50 * time.Millisecond

	anchor := &domain.Interaction{UserID: "user-1", ChannelID: "chan-1"}

	_, err := c.Run(context.Background(), anchor, reportForm(),
		func(_ context.Context, _ map[string]string) error { return nil },
		func(_ context.Context, _ string, _ *Session) (*domain.Interaction, error) { return nil, nil })

	assert.ErrorIs(t, err, domain.ErrFormAbandoned)

	require.Eventually(t, func() bool {
		return r.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestComposerTransportFailureEscapes(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)

	showErr := errors.New("gateway down")
	c := NewComposer(r, &failingResponder{err: showErr})

	anchor := &domain.Interaction{UserID: "user-1", ChannelID: "chan-1"}

	_, err := c.Run(context.Background(), anchor, reportForm(),
		func(_ context.Context, _ map[string]string) error { return nil },
		func(_ context.Context, _ string, _ *Session) (*domain.Interaction, error) { return nil, nil })

	assert.ErrorIs(t, err, showErr)
	assert.Equal(t, 0, r.Len())
}

type failingResponder struct {
	err error
}

func (f *failingResponder) AcknowledgeInteraction(_ context.Context, _ *domain.Interaction) error {
	return f.err
}

func (f *failingResponder) ShowModal(_ context.Context, _ *domain.Interaction, _ *domain.Modal) error {
	return f.err
}
