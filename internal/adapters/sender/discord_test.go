package sender

import (
	"context"
	"errors"
	"testing"
	"time"

	"moxbot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend,
	options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, data)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

func (m *MockSession) ChannelMessageEditComplex(edit *discordgo.MessageEdit,
	options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(edit)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

func (m *MockSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	args := m.Called(channelID, messageID)
	return args.Error(0)
}

func (m *MockSession) ChannelMessagesBulkDelete(channelID string, messages []string,
	options ...discordgo.RequestOption) error {
	args := m.Called(channelID, messages)
	return args.Error(0)
}

func (m *MockSession) ChannelMessage(channelID, messageID string,
	options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, messageID)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

func (m *MockSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string,
	options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	args := m.Called(channelID, limit, beforeID, afterID, aroundID)
	msgs, _ := args.Get(0).([]*discordgo.Message)
	return msgs, args.Error(1)
}

func (m *MockSession) InteractionRespond(interaction *discordgo.Interaction,
	resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	args := m.Called(interaction, resp)
	return args.Error(0)
}

func TestSendMessageWithButtons(t *testing.T) {
	ms := new(MockSession)
	ms.On("ChannelMessageSendComplex", "chan-1", mock.MatchedBy(func(data *discordgo.MessageSend) bool {
		if data.Content != "pick one" || len(data.Components) != 1 {
			return false
		}
		row, ok := data.Components[0].(discordgo.ActionsRow)
		if !ok || len(row.Components) != 2 {
			return false
		}
		first, ok := row.Components[0].(discordgo.Button)
		return ok && first.CustomID == "key:yes" && first.Style == discordgo.DangerButton
	})).Return(&discordgo.Message{ID: "123"}, nil).Once()

	s := NewDiscord(ms)

	id, err := s.SendMessage(context.Background(), "chan-1", &domain.Content{
		Text: "pick one",
		Buttons: []domain.Button{
			{Label: "Yes", Token: "key:yes", Style: domain.ButtonDanger},
			{Label: "No", Token: "key:no", Style: domain.ButtonSecondary},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "123", id)
	ms.AssertExpectations(t)
}

func TestSendMessageFails(t *testing.T) {
	ms := new(MockSession)
	ms.On("ChannelMessageSendComplex", mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited")).Once()

	s := NewDiscord(ms)

	_, err := s.SendMessage(context.Background(), "chan-1", &domain.Content{Text: "x"})
	assert.Error(t, err)
}

func TestFetchMessagesAfterSortsOldestFirst(t *testing.T) {
	now := time.Now()

	ms := new(MockSession)
	ms.On("ChannelMessages", "chan-1", 100, "", "100", "").
		Return([]*discordgo.Message{
			{ID: "300", ChannelID: "chan-1", Timestamp: now, Author: &discordgo.User{ID: "u1"}},
			{ID: "200", ChannelID: "chan-1", Timestamp: now, Author: &discordgo.User{ID: "u1"}},
			{ID: "101", ChannelID: "chan-1", Timestamp: now, Author: &discordgo.User{ID: "u2"}},
		}, nil).Once()

	s := NewDiscord(ms)

	msgs, err := s.FetchMessagesAfter(context.Background(), "chan-1", "100", 100)

	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "101", msgs[0].ID)
	assert.Equal(t, "200", msgs[1].ID)
	assert.Equal(t, "300", msgs[2].ID)
	assert.Equal(t, "u2", msgs[0].AuthorID)
}

func TestAcknowledgeInteractionDefersUpdate(t *testing.T) {
	ms := new(MockSession)
	ms.On("InteractionRespond",
		mock.MatchedBy(func(i *discordgo.Interaction) bool {
			return i.ID == "evt-1" && i.Token == "resp-token"
		}),
		mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			return r.Type == discordgo.InteractionResponseDeferredMessageUpdate
		})).Return(nil).Once()

	s := NewDiscord(ms)

	err := s.AcknowledgeInteraction(context.Background(), &domain.Interaction{
		ID:            "evt-1",
		ResponseToken: "resp-token",
	})

	require.NoError(t, err)
	ms.AssertExpectations(t)
}

func TestShowModalBuildsTextInputs(t *testing.T) {
	ms := new(MockSession)
	ms.On("InteractionRespond", mock.Anything,
		mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			if r.Type != discordgo.InteractionResponseModal || r.Data.CustomID != "form-key" {
				return false
			}
			if len(r.Data.Components) != 2 {
				return false
			}
			row, ok := r.Data.Components[1].(discordgo.ActionsRow)
			if !ok {
				return false
			}
			input, ok := row.Components[0].(discordgo.TextInput)
			return ok && input.CustomID == "details" &&
				input.Style == discordgo.TextInputParagraph && input.Value == "prior text"
		})).Return(nil).Once()

	s := NewDiscord(ms)

	err := s.ShowModal(context.Background(), &domain.Interaction{ID: "evt-1", ResponseToken: "tok"},
		&domain.Modal{
			Token: "form-key",
			Title: "File a report",
			Fields: []domain.ModalField{
				{Key: "subject", Label: "Subject", Required: true},
				{Key: "details", Label: "Details", Paragraph: true, Value: "prior text"},
			},
		})

	require.NoError(t, err)
	ms.AssertExpectations(t)
}

func TestEditMessageClearsButtons(t *testing.T) {
	ms := new(MockSession)
	ms.On("ChannelMessageEditComplex", mock.MatchedBy(func(edit *discordgo.MessageEdit) bool {
		return edit.Channel == "chan-1" && edit.ID == "msg-1" &&
			edit.Content != nil && *edit.Content == "done" &&
			edit.Components != nil && len(*edit.Components) == 0
	})).Return(&discordgo.Message{ID: "msg-1"}, nil).Once()

	s := NewDiscord(ms)

	err := s.EditMessage(context.Background(), "chan-1", "msg-1", &domain.Content{Text: "done"})

	require.NoError(t, err)
	ms.AssertExpectations(t)
}
