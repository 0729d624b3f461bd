// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/store"
	"github.com/MKhiriev/go-konvo/internal/utils"
	"github.com/MKhiriev/go-konvo/models"
)

// SyncOption configures a ConversationSync.
type SyncOption func(*ConversationSync)

// WithSyncConfig sets the send retry budget and the refresh interval.
func WithSyncConfig(cfg config.ClientSync) SyncOption {
	return func(c *ConversationSync) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) SyncOption {
	return func(c *ConversationSync) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithIDGenerator replaces the UUIDv7 generator of local ids.
func WithIDGenerator(ids IDGenerator) SyncOption {
	return func(c *ConversationSync) {
		c.ids = ids
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SyncOption {
	return func(c *ConversationSync) {
		c.now = now
	}
}

// ConversationSync keeps the local copy of one conversation consistent with
// the gateway. Reads are served from the cache immediately; the gateway is
// consulted asynchronously and its answer is merged with [Reconcile].
//
// All state changes, including the write of the conversation key, happen
// under mu. After Close late fetch results are discarded without touching
// the store; sends already in flight are awaited and their outcome is kept.
type ConversationSync struct {
	conversationID string
	store          store.KeyValueStore
	gateway        adapter.Gateway
	credentials    CredentialsProvider
	ids            IDGenerator
	now            func() time.Time
	cfg            config.ClientSync
	logger         *logger.Logger

	mu       sync.Mutex
	messages []models.Message
	closed   bool
	// loaded is false until the cached list has been read once; writes are
	// held back before that so an unreadable cache is never overwritten.
	loaded bool
	// owner is the identity the conversation was opened for. Writes stop
	// once the session no longer belongs to it.
	owner string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	job    *RefreshJob
	events *Broker[models.ConversationEvent]
}

// NewConversationSync creates the engine of one conversation. Nothing is read
// until Open.
func NewConversationSync(
	conversationID string,
	kv store.KeyValueStore,
	gateway adapter.Gateway,
	credentials CredentialsProvider,
	opts ...SyncOption,
) *ConversationSync {
	ctx, cancel := context.WithCancel(context.Background())
	c := &ConversationSync{
		conversationID: conversationID,
		store:          kv,
		gateway:        gateway,
		credentials:    credentials,
		ids:            utils.NewUUIDGenerator(),
		now:            time.Now,
		cfg: config.ClientSync{
			SendAttempts: config.DefaultSendAttempts,
			SendBackoff:  config.DefaultSendBackoff,
		},
		logger: logger.Nop(),
		ctx:    ctx,
		cancel: cancel,
		events: NewBroker[models.ConversationEvent](DefaultEventBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = &logger.Logger{Logger: c.logger.WithComponent("conversation").With().Str("conversation_id", conversationID).Logger()}
	c.job = NewRefreshJob(c)
	return c
}

// ID returns the conversation id.
func (c *ConversationSync) ID() string {
	return c.conversationID
}

// Open loads the cached messages, publishes them and returns them. A refresh
// is started in the background; its outcome arrives as a ConversationEvent.
//
// Entries cached as pending belong to a send that never finished, so they
// are turned into failed ones here.
func (c *ConversationSync) Open(ctx context.Context) ([]models.Message, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConversationClosed
	}

	if _, identityID, err := c.credentials.Credentials(); err == nil {
		c.owner = identityID
	}

	cached, err := c.load(ctx)
	if err != nil {
		c.logger.Err(err).Str("func", "ConversationSync.Open").Msg("error reading cached conversation")
	}
	c.loaded = err == nil
	interrupted := failInterrupted(cached)
	c.messages = Reconcile(cached, nil)
	if interrupted {
		c.persist(ctx)
	}
	snapshot := c.snapshot()
	c.publish(snapshot, nil)

	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		_ = c.Refresh(c.ctx)
	}()
	if c.cfg.RefreshInterval > 0 {
		c.job.Start(c.ctx, c.cfg.RefreshInterval)
	}

	return snapshot, nil
}

// Refresh fetches the remote list and reconciles it into the local one. A
// failure keeps the local list and is published as ErrSyncUnavailable; a
// rejected token also ends the session through the credentials provider.
func (c *ConversationSync) Refresh(ctx context.Context) error {
	if c.isClosed() {
		return ErrConversationClosed
	}

	token, _, err := c.credentials.Credentials()
	if err != nil {
		return c.refreshFailed(fmt.Errorf("%w: %w", ErrSyncUnavailable, err))
	}

	ctx, stop := c.bind(ctx)
	defer stop()

	remote, err := c.gateway.FetchConversation(ctx, token, c.conversationID)
	if err != nil {
		if c.isClosed() {
			return ErrConversationClosed
		}
		c.logger.Err(err).Str("func", "ConversationSync.Refresh").Msg("error fetching conversation")
		c.credentials.HandleGatewayError(ctx, err)
		return c.refreshFailed(fmt.Errorf("%w: %w", ErrSyncUnavailable, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConversationClosed
	}

	for i := range remote {
		if remote[i].ConversationID == "" {
			remote[i].ConversationID = c.conversationID
		}
	}
	c.messages = Reconcile(c.messages, remote)
	c.persist(ctx)
	c.publish(c.snapshot(), nil)

	c.logger.Debug().
		Str("func", "ConversationSync.Refresh").
		Int("remote", len(remote)).
		Int("local", len(c.messages)).
		Msg("conversation refreshed")
	return nil
}

func (c *ConversationSync) refreshFailed(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConversationClosed
	}
	c.publish(c.snapshot(), err)
	return err
}

// Send appends an optimistic pending entry, persists and publishes it, then
// delivers it with a bounded retry budget. The returned message is the final
// state of the entry: sent on success, failed otherwise.
func (c *ConversationSync) Send(ctx context.Context, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, ErrEmptyContent
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Message{}, ErrConversationClosed
	}

	_, identityID, credErr := c.credentials.Credentials()
	if credErr == nil && c.owner == "" {
		c.owner = identityID
	}
	now := c.now()
	entry := models.Message{
		LocalID:            c.ids.Generate(),
		ConversationID:     c.conversationID,
		SenderID:           identityID,
		Content:            content,
		CreatedAt:          now,
		EffectiveTimestamp: now,
		DeliveryState:      models.DeliveryPending,
	}
	c.messages = append(c.messages, entry)
	sortMessages(c.messages)
	c.persist(ctx)
	c.publish(c.snapshot(), nil)
	c.wg.Add(1)
	c.mu.Unlock()

	defer c.wg.Done()
	return c.deliver(ctx, entry)
}

// Retry sends a failed entry again through the same path as Send.
func (c *ConversationSync) Retry(ctx context.Context, localID string) (models.Message, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Message{}, ErrConversationClosed
	}

	idx := c.indexOf(localID)
	if idx < 0 {
		c.mu.Unlock()
		return models.Message{}, ErrMessageNotFound
	}
	if c.messages[idx].DeliveryState != models.DeliveryFailed {
		entry := c.messages[idx]
		c.mu.Unlock()
		return entry, ErrNotRetryable
	}

	c.messages[idx].DeliveryState = models.DeliveryPending
	entry := c.messages[idx]
	c.persist(ctx)
	c.publish(c.snapshot(), nil)
	c.wg.Add(1)
	c.mu.Unlock()

	defer c.wg.Done()
	return c.deliver(ctx, entry)
}

// deliver is not bound to the lifetime of the instance: the server may
// already have accepted the message, so Close waits for the answer instead
// of cancelling the request.
func (c *ConversationSync) deliver(ctx context.Context, entry models.Message) (models.Message, error) {
	var sent models.Message
	token, _, err := c.credentials.Credentials()
	if err == nil {
		err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
			m, sendErr := c.gateway.SendMessage(ctx, token, c.conversationID, entry.Content)
			if sendErr != nil {
				if adapter.IsTransient(sendErr) && !c.isClosed() {
					c.logger.Debug().Err(sendErr).Str("func", "ConversationSync.deliver").Msg("transient send failure, retrying")
					return retry.RetryableError(sendErr)
				}
				return sendErr
			}
			sent = m
			return nil
		})
	}

	if err != nil {
		c.logger.Err(err).Str("func", "ConversationSync.deliver").Str("local_id", entry.LocalID).Msg("error sending message")
		c.credentials.HandleGatewayError(ctx, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(entry.LocalID)
	if idx < 0 {
		return entry, ErrMessageNotFound
	}

	if err != nil {
		c.messages[idx].DeliveryState = models.DeliveryFailed
		failed := c.messages[idx]
		c.persist(ctx)
		c.publish(c.snapshot(), fmt.Errorf("%w: %w", ErrSendFailed, err))
		return failed, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	upgraded := c.messages[idx]
	upgraded.RemoteID = sent.RemoteID
	if !sent.CreatedAt.IsZero() {
		upgraded.CreatedAt = sent.CreatedAt
	}
	if !sent.EffectiveTimestamp.IsZero() {
		upgraded.EffectiveTimestamp = sent.EffectiveTimestamp
	} else if !sent.CreatedAt.IsZero() {
		upgraded.EffectiveTimestamp = sent.CreatedAt
	}
	if sent.SenderID != "" {
		upgraded.SenderID = sent.SenderID
	}
	upgraded.DeliveryState = models.DeliverySent
	c.messages[idx] = upgraded

	if upgraded.RemoteID != "" {
		c.messages = slices.DeleteFunc(c.messages, func(m models.Message) bool {
			return m.RemoteID == upgraded.RemoteID && m.LocalID != upgraded.LocalID
		})
	}
	sortMessages(c.messages)
	c.persist(ctx)
	c.publish(c.snapshot(), nil)

	c.logger.Debug().
		Str("func", "ConversationSync.deliver").
		Str("local_id", upgraded.LocalID).
		Str("remote_id", upgraded.RemoteID).
		Msg("message sent")
	return upgraded, nil
}

// Messages returns a snapshot of the conversation.
func (c *ConversationSync) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Subscribe implements ConversationService.
func (c *ConversationSync) Subscribe() (<-chan models.ConversationEvent, func()) {
	return c.events.Subscribe()
}

// Close marks the conversation closed, cancels background refreshes and
// waits for them and for sends still in flight. A send's outcome is written
// before Close returns.
func (c *ConversationSync) Close() {
	c.shutdown()
	c.job.Stop()
	c.wg.Wait()
	c.events.Close()
}

// shutdown rejects new operations and cancels in-flight fetches without
// waiting.
func (c *ConversationSync) shutdown() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *ConversationSync) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// bind derives a context from ctx that is also cancelled by Close.
func (c *ConversationSync) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stopAfter()
		cancel()
	}
}

func (c *ConversationSync) backoff() retry.Backoff {
	attempts := c.cfg.SendAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := c.cfg.SendBackoff
	if base <= 0 {
		base = time.Millisecond
	}
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(base))
}

func (c *ConversationSync) indexOf(localID string) int {
	return slices.IndexFunc(c.messages, func(m models.Message) bool {
		return m.LocalID == localID
	})
}

func (c *ConversationSync) snapshot() []models.Message {
	return slices.Clone(c.messages)
}

func (c *ConversationSync) publish(messages []models.Message, err error) {
	c.events.Publish(models.ConversationEvent{
		ConversationID: c.conversationID,
		Messages:       messages,
		Err:            err,
	})
}

// load reads the cached list. A missing or corrupted entry yields an empty
// list; only a failed read is returned, since the entry may still be there.
func (c *ConversationSync) load(ctx context.Context) ([]models.Message, error) {
	raw, err := c.store.Get(ctx, store.ConversationKey(c.conversationID))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var conversation models.Conversation
	if err = json.Unmarshal(raw, &conversation); err != nil {
		c.logger.Err(err).Str("func", "ConversationSync.load").Msg("cached conversation is corrupted")
		return nil, nil
	}
	return conversation.Messages, nil
}

// reload merges the cached list into the in-memory one after an earlier read
// failed. Must be called with mu held.
func (c *ConversationSync) reload(ctx context.Context) error {
	cached, err := c.load(ctx)
	if err != nil {
		return err
	}
	failInterrupted(cached)

	merged := slices.Clone(c.messages)
	for _, m := range cached {
		if c.indexOf(m.LocalID) < 0 {
			merged = append(merged, m)
		}
	}
	c.messages = Reconcile(merged, nil)
	c.loaded = true
	return nil
}

// ownedBySession reports whether the current session still belongs to the
// identity the conversation was opened for.
func (c *ConversationSync) ownedBySession() bool {
	if c.owner == "" {
		return true
	}
	_, identityID, err := c.credentials.Credentials()
	return err == nil && identityID == c.owner
}

// failInterrupted turns pending entries into failed ones and reports whether
// there were any.
func failInterrupted(messages []models.Message) bool {
	interrupted := false
	for i := range messages {
		if messages[i].DeliveryState == models.DeliveryPending {
			messages[i].DeliveryState = models.DeliveryFailed
			interrupted = true
		}
	}
	return interrupted
}

// persist writes the whole list under the conversation key. Must be called
// with mu held. A failed write is logged; the in-memory list stays
// authoritative until the next successful write. Nothing is written while
// the cached list is unreadable or after the session changed hands.
func (c *ConversationSync) persist(ctx context.Context) {
	if !c.ownedBySession() {
		c.logger.Debug().Str("func", "ConversationSync.persist").Msg("session changed, conversation not written")
		return
	}
	if !c.loaded {
		if err := c.reload(context.WithoutCancel(ctx)); err != nil {
			c.logger.Err(err).Str("func", "ConversationSync.persist").Msg("cached conversation unreadable, write skipped")
			return
		}
	}

	data, err := json.Marshal(models.Conversation{ID: c.conversationID, Messages: c.messages})
	if err == nil {
		err = c.store.Set(context.WithoutCancel(ctx), store.ConversationKey(c.conversationID), data)
	}
	if err != nil {
		c.logger.Err(err).Str("func", "ConversationSync.persist").Msg("error persisting conversation")
	}
}
