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

func awaitDecision(t *testing.T, prompt *DecisionPrompt, req *DecisionRequest) (chan bool, chan *domain.Interaction) {
	t.Helper()

	confirmed := make(chan bool, 1)
	via := make(chan *domain.Interaction, 1)

	go func() {
		ok, i, err := prompt.Await(context.Background(), req)
		assert.NoError(t, err)
		confirmed <- ok
		via <- i
	}()

	return confirmed, via
}

func promptButtons(t *testing.T, ms *mockMessenger) (string, string) {
	t.Helper()

	select {
	case content := <-ms.sentCh:
		require.Len(t, content.Buttons, 2)
		return content.Buttons[0].Token, content.Buttons[1].Token
	case <-time.After(time.Second):
		t.Fatal("prompt message was never sent")
		return "", ""
	}
}

func TestDecisionConfirmed(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	prompt := NewDecisionPrompt(r, ms, ms)

	confirmed, via := awaitDecision(t, prompt, &DecisionRequest{
		ChannelID:    "chan-1",
		Text:         "are you sure?",
		AllowedUsers: []string{"user-1"},
	})

	confirmToken, _ := promptButtons(t, ms)

	r.Dispatch(context.Background(), &domain.Interaction{Token: confirmToken, UserID: "user-1"})

	assert.True(t, <-confirmed)
	assert.NotNil(t, <-via)

	// Both collectors are gone and the prompt message cleaned up.
	require.Eventually(t, func() bool {
		return r.Len() == 0
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		return len(ms.deleted) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDecisionCancelled(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	prompt := NewDecisionPrompt(r, ms, ms)

	confirmed, via := awaitDecision(t, prompt, &DecisionRequest{ChannelID: "chan-1", Text: "sure?"})

	_, cancelToken := promptButtons(t, ms)

	r.Dispatch(context.Background(), &domain.Interaction{Token: cancelToken, UserID: "user-1"})

	assert.False(t, <-confirmed)
	assert.NotNil(t, <-via)
}

func TestDecisionExpiryDeclines(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	prompt := NewDecisionPrompt(r, ms, ms)

	confirmed, via := awaitDecision(t, prompt, &DecisionRequest{
		ChannelID: "chan-1",
		Text:      "sure?",
		Expiry:    50 * time.Millisecond,
	})

	promptButtons(t, ms)

	assert.False(t, <-confirmed)
	assert.Nil(t, <-via)

	require.Eventually(t, func() bool {
		return r.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestDecisionSendFailurePropagates(t *testing.T) {
	ms := newMockMessenger()
	ms.sendErr = errors.New("unreachable")
	r := NewRegistry(ms)
	prompt := NewDecisionPrompt(r, ms, ms)

	_, _, err := prompt.Await(context.Background(), &DecisionRequest{ChannelID: "chan-1", Text: "x"})

	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestDecisionIgnoresOtherUsers(t *testing.T) {
	ms := newMockMessenger()
	r := NewRegistry(ms)
	prompt := NewDecisionPrompt(r, ms, ms)

	confirmed, _ := awaitDecision(t, prompt, &DecisionRequest{
		ChannelID:    "chan-1",
		Text:         "sure?",
		AllowedUsers: []string{"user-1"},
	})

	confirmToken, _ := promptButtons(t, ms)

	// A bystander's press is a non-match; the requester's press resolves.
	r.Dispatch(context.Background(), &domain.Interaction{Token: confirmToken, UserID: "intruder"})

	select {
	case <-confirmed:
		t.Fatal("prompt resolved for a disallowed user")
	case <-time.After(50 * time.Millisecond):
	}

	r.Dispatch(context.Background(), &domain.Interaction{Token: confirmToken, UserID: "user-1"})
	assert.True(t, <-confirmed)
}
