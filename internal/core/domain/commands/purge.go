package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"moxbot/internal/core/domain"
	"moxbot/internal/core/port"
	"moxbot/internal/core/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	fetchPageSize    = 100
	bulkDeleteLimit  = 100
	progressInterval = 1500 * time.Millisecond
	statusLifetime   = time.Minute
	confirmThreshold = 10

	defaultIndexCap    = 5000
	defaultDeleteMax   = 1000
	defaultBatchDelay  = time.Second
	defaultSingleDelay = 300 * time.Millisecond

	// Bulk deletion is refused by the platform for messages older than 14
	// days; the hour of margin keeps a slow run from crossing the line
	// mid-deletion.
	bulkAgeLimit = 14*24*time.Hour - time.Hour
)

type purgeConfig struct {
	IndexCap  int `json:"purge_index_cap"`
	DeleteMax int `json:"purge_delete_max"`
}

// PurgeRange is a validated, normalised deletion request: StartID precedes
// EndID and both reference existing, non-future messages.
type PurgeRange struct {
	ChannelID string
	StartID   string
	EndID     string
	AuthorID  string
}

type PurgeHandler struct {
	sender      port.MessageSender
	cleaner     port.MessageCleaner
	history     port.ChannelHistory
	responder   port.InteractionResponder
	store       port.DocumentStore
	localiser   port.Localiser
	prompter    service.Prompter
	command     string
	batchDelay  time.Duration
	singleDelay time.Duration
}

func NewPurgeHandler(sender port.MessageSender, cleaner port.MessageCleaner, history port.ChannelHistory,
	responder port.InteractionResponder, store port.DocumentStore, localiser port.Localiser,
	prompter service.Prompter, command string) *PurgeHandler {
	h := &PurgeHandler{
		sender:      sender,
		cleaner:     cleaner,
		history:     history,
		responder:   responder,
		store:       store,
		localiser:   localiser,
		prompter:    prompter,
		command:     command,
		batchDelay:  viper.GetDuration("purge.batch_delay"),
		singleDelay: viper.GetDuration("purge.single_delay"),
	}

	if h.batchDelay <= 0 {
		h.batchDelay = defaultBatchDelay
	}
	if h.singleDelay <= 0 {
		h.singleDelay = defaultSingleDelay
	}

	return h
}

func (h *PurgeHandler) GetCommand() string {
	return h.command
}

func (h *PurgeHandler) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	l := log.With().
		Str("messageId", message.ID).
		Str("channelId", message.ChannelID).
		Str("command", h.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rng, diag, err := h.resolveRange(ctx, message)
	if err != nil {
		l.Error().Err(err).Msg("failed to resolve purge range")
		return err
	}
	if diag != "" {
		_, err := h.sender.SendMessage(ctx, message.ChannelID, &domain.Content{Text: diag})
		if err != nil {
			l.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
			return err
		}
		return nil
	}

	cfg := h.loadConfig(ctx, message.GuildID)

	statusID, err := h.sender.SendMessage(ctx, rng.ChannelID, &domain.Content{
		Text: h.localiser.Localise(message.Locale, "purge.indexing"),
	})
	if err != nil {
		l.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
		return err
	}

	// The status message must not outlive a long deletion as a stale
	// "in progress" banner.
	statusTimer := time.AfterFunc(statusLifetime, func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.cleaner.DeleteMessage(cleanupCtx, rng.ChannelID, statusID); err != nil {
			l.Warn().Err(err).Msg("failed to remove stale status message")
		}
	})

	indexed, err := h.index(ctx, message.Locale, rng, cfg.IndexCap, statusID)
	if err != nil {
		if errors.Is(err, errRangeTooLarge) {
			h.finish(ctx, rng.ChannelID, statusID, statusTimer,
				h.localiser.Localise(message.Locale, "purge.too_large", cfg.IndexCap))
			return nil
		}
		l.Error().Err(err).Msg("indexing failed")
		return err
	}

	l.Info().Int("indexed", len(indexed)).Msg("range indexed")

	toDelete, confirmed := h.gate(ctx, message, cfg, indexed)
	if !confirmed {
		h.finish(ctx, rng.ChannelID, statusID, statusTimer,
			h.localiser.Localise(message.Locale, "purge.cancelled"))
		return nil
	}

	deleted := h.deleteMessages(ctx, rng.ChannelID, toDelete)

	l.Info().Int("deleted", deleted).Int("requested", len(toDelete)).Msg("purge finished")

	h.finish(ctx, rng.ChannelID, statusID, statusTimer,
		h.localiser.Localise(message.Locale, "purge.summary", deleted, len(toDelete)))

	return nil
}

// resolveRange parses and validates the command arguments. A non-empty
// diagnostic means the request is rejected before any indexing fetch; only
// transport failures return an error.
func (h *PurgeHandler) resolveRange(ctx context.Context, message *domain.Message) (*PurgeRange, string, error) {
	args := strings.Fields(domain.ParseCommandArgs(message.Text))
	if len(args) == 0 {
		return nil, h.localiser.Localise(message.Locale, "purge.usage"), nil
	}

	rng := &PurgeRange{ChannelID: message.ChannelID, StartID: args[0]}

	// Without an explicit end, the invoking message itself is the most
	// recent one in the channel.
	rng.EndID = message.ID
	if len(args) > 1 {
		rng.EndID = args[1]
	}
	if len(args) > 2 {
		rng.AuthorID = strings.Trim(args[2], "<@>")
	}

	if rng.StartID == rng.EndID {
		return nil, h.localiser.Localise(message.Locale, "purge.ids_not_different"), nil
	}

	startInvalid := h.endpointInvalid(ctx, rng.ChannelID, rng.StartID)
	endInvalid := rng.EndID != message.ID && h.endpointInvalid(ctx, rng.ChannelID, rng.EndID)

	switch {
	case startInvalid && endInvalid:
		return nil, h.localiser.Localise(message.Locale, "purge.invalid_both"), nil
	case startInvalid:
		return nil, h.localiser.Localise(message.Locale, "purge.invalid_start"), nil
	case endInvalid:
		return nil, h.localiser.Localise(message.Locale, "purge.invalid_end"), nil
	}

	if domain.CompareSnowflakes(rng.StartID, rng.EndID) > 0 {
		rng.StartID, rng.EndID = rng.EndID, rng.StartID
	}

	return rng, "", nil
}

func (h *PurgeHandler) endpointInvalid(ctx context.Context, channelID, messageID string) bool {
	ts, err := domain.SnowflakeTime(messageID)
	if err != nil || ts.After(time.Now()) {
		return true
	}

	if _, err := h.history.GetMessage(ctx, channelID, messageID); err != nil {
		return true
	}

	return false
}

var errRangeTooLarge = errors.New("range exceeds indexing cap")

// index walks forward from the range start in pages of 100, collecting
// matching messages oldest first and re-rendering progress at a fixed
// interval. It stops when the end message shows up in a batch, a batch
// comes back short, or the cap is exceeded.
func (h *PurgeHandler) index(ctx context.Context, locale string, rng *PurgeRange,
	indexCap int, statusID string) ([]domain.Message, error) {
	var indexed []domain.Message

	if start, err := h.history.GetMessage(ctx, rng.ChannelID, rng.StartID); err == nil && h.matches(rng, start) {
		indexed = append(indexed, *start)
	}

	after := rng.StartID
	lastProgress := time.Now()

	for {
		batch, err := h.history.FetchMessagesAfter(ctx, rng.ChannelID, after, fetchPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message batch: %w", err)
		}

		endSeen := false
		for _, m := range batch {
			if domain.CompareSnowflakes(m.ID, rng.EndID) > 0 {
				endSeen = true
				break
			}
			if h.matches(rng, &m) {
				indexed = append(indexed, m)
			}
			if m.ID == rng.EndID {
				endSeen = true
				break
			}
		}

		if len(indexed) > indexCap {
			return nil, errRangeTooLarge
		}

		if endSeen || len(batch) < fetchPageSize {
			return indexed, nil
		}

		after = batch[len(batch)-1].ID

		if time.Since(lastProgress) >= progressInterval {
			err := h.sender.EditMessage(ctx, rng.ChannelID, statusID, &domain.Content{
				Text: h.localiser.Localise(locale, "purge.progress", len(indexed)),
			})
			if err != nil {
				log.Warn().Err(err).Msg("failed to render indexing progress")
			}
			lastProgress = time.Now()
		}
	}
}

func (h *PurgeHandler) matches(rng *PurgeRange, m *domain.Message) bool {
	return rng.AuthorID == "" || m.AuthorID == rng.AuthorID
}

// gate applies the confirmation policy: an over-limit count needs the
// "too many" decision first and is truncated to the maximum, and any
// non-trivial count needs the plain confirmation. Declining either leaves
// the indexed set untouched.
func (h *PurgeHandler) gate(ctx context.Context, message *domain.Message,
	cfg purgeConfig, indexed []domain.Message) ([]domain.Message, bool) {
	toDelete := indexed

	if len(indexed) > cfg.DeleteMax {
		confirmed := h.decide(ctx, message,
			h.localiser.Localise(message.Locale, "purge.too_many", len(indexed), cfg.DeleteMax))
		if !confirmed {
			return nil, false
		}
		toDelete = indexed[:cfg.DeleteMax]
	}

	if len(toDelete) > confirmThreshold {
		confirmed := h.decide(ctx, message,
			h.localiser.Localise(message.Locale, "purge.confirm", len(toDelete)))
		if !confirmed {
			return nil, false
		}
	}

	return toDelete, true
}

func (h *PurgeHandler) decide(ctx context.Context, message *domain.Message, text string) bool {
	confirmed, interaction, err := h.prompter.Await(ctx, &service.DecisionRequest{
		ChannelID:    message.ChannelID,
		Text:         text,
		AllowedUsers: []string{message.AuthorID},
	})
	if err != nil {
		log.Warn().Err(err).Msg("decision prompt failed")
		return false
	}

	if interaction != nil {
		if err := h.responder.AcknowledgeInteraction(ctx, interaction); err != nil {
			log.Warn().Err(err).Msg("failed to acknowledge decision")
		}
	}

	return confirmed
}

// deleteMessages partitions the set at the bulk age boundary, removes the
// young side in batches and the old side one by one, and reports how many
// deletions actually went through. Individual failures are logged and
// skipped.
func (h *PurgeHandler) deleteMessages(ctx context.Context, channelID string, messages []domain.Message) int {
	boundary := time.Now().Add(-bulkAgeLimit)

	var bulk, single []string
	for _, m := range messages {
		if m.Timestamp.Before(boundary) {
			single = append(single, m.ID)
		} else {
			bulk = append(bulk, m.ID)
		}
	}

	// The platform rejects single-element bulk deletes.
	if len(bulk) == 1 {
		single = append(bulk, single...)
		bulk = nil
	}

	deleted := 0

	for start := 0; start < len(bulk); start += bulkDeleteLimit {
		end := min(start+bulkDeleteLimit, len(bulk))
		batch := bulk[start:end]

		if len(batch) == 1 {
			single = append(single, batch[0])
			break
		}

		if err := h.cleaner.BulkDeleteMessages(ctx, channelID, batch); err != nil {
			log.Warn().Err(err).Int("size", len(batch)).Msg("bulk delete failed, skipping batch")
		} else {
			deleted += len(batch)
		}

		if !h.pause(ctx, h.batchDelay) {
			return deleted
		}
	}

	for _, id := range single {
		if err := h.cleaner.DeleteMessage(ctx, channelID, id); err != nil {
			log.Warn().Err(err).Str("message", id).Msg("delete failed, skipping message")
		} else {
			deleted++
		}

		if !h.pause(ctx, h.singleDelay) {
			return deleted
		}
	}

	return deleted
}

func (h *PurgeHandler) pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish replaces the status message with the final text and cancels its
// self-deletion. If the timer already removed it, the text goes out as a
// fresh message instead.
func (h *PurgeHandler) finish(ctx context.Context, channelID, statusID string, statusTimer *time.Timer, text string) {
	content := &domain.Content{Text: text}

	if statusTimer.Stop() {
		if err := h.sender.EditMessage(ctx, channelID, statusID, content); err != nil {
			log.Warn().Err(err).Msg("failed to edit status message")
		}
		return
	}

	if _, err := h.sender.SendMessage(ctx, channelID, content); err != nil {
		log.Warn().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
	}
}

func (h *PurgeHandler) loadConfig(ctx context.Context, guildID string) purgeConfig {
	cfg := purgeConfig{IndexCap: defaultIndexCap, DeleteMax: defaultDeleteMax}

	doc, err := h.store.LoadDocument(ctx, "guild-config", guildID)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			log.Warn().Err(err).Str("guild", guildID).Msg("failed to load guild config, using defaults")
		}
		return cfg
	}

	if err := json.Unmarshal(doc.Body, &cfg); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("malformed guild config, using defaults")
		return cfg
	}

	if cfg.IndexCap <= 0 {
		cfg.IndexCap = defaultIndexCap
	}
	if cfg.DeleteMax <= 0 {
		cfg.DeleteMax = defaultDeleteMax
	}

	return cfg
}
