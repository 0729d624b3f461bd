package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/store"
)

// ListCachedConversations returns the ids of every conversation with a local
// cache, in key order.
func ListCachedConversations(ctx context.Context, kv store.KeyValueStore) ([]string, error) {
	keys, err := kv.Keys(ctx, store.ConversationKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing cached conversations: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := store.ConversationIDFromKey(key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ConversationRegistry hands out one ConversationSync per conversation id, so
// that a conversation key always has a single writer.
type ConversationRegistry struct {
	store       store.KeyValueStore
	gateway     adapter.Gateway
	credentials CredentialsProvider
	cfg         config.ClientSync
	logger      *logger.Logger

	mu      sync.Mutex
	open    map[string]*ConversationSync
	closing map[string]chan struct{}
}

// NewConversationRegistry creates an empty registry.
func NewConversationRegistry(kv store.KeyValueStore, gateway adapter.Gateway, credentials CredentialsProvider, cfg config.ClientSync, log *logger.Logger) *ConversationRegistry {
	if log == nil {
		log = logger.Nop()
	}
	return &ConversationRegistry{
		store:       kv,
		gateway:     gateway,
		credentials: credentials,
		cfg:         cfg,
		logger:      log,
		open:        make(map[string]*ConversationSync),
		closing:     make(map[string]chan struct{}),
	}
}

// Get returns the live instance for id, creating it when needed. The caller
// still has to Open it. While a previous instance of id is still releasing
// the key, Get waits for it.
func (r *ConversationRegistry) Get(id string) ConversationService {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if c, ok := r.open[id]; ok {
			return c
		}
		done, ok := r.closing[id]
		if !ok {
			break
		}
		r.mu.Unlock()
		<-done
		r.mu.Lock()
	}

	c := NewConversationSync(id, r.store, r.gateway, r.credentials,
		WithSyncConfig(r.cfg),
		WithLogger(r.logger),
	)
	r.open[id] = c
	return c
}

// Close closes and forgets the instance for id. The instance stops accepting
// operations at once; sends still in flight finish in the background.
func (r *ConversationRegistry) Close(id string) {
	if done := r.detach(id); done != nil {
		go done()
	}
}

// CloseAll closes every live instance and waits until all of them released
// their keys.
func (r *ConversationRegistry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.open))
	for id := range r.open {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		if done := r.detach(id); done != nil {
			wg.Go(done)
		}
	}
	wg.Wait()

	r.mu.Lock()
	pending := make([]chan struct{}, 0, len(r.closing))
	for _, done := range r.closing {
		pending = append(pending, done)
	}
	r.mu.Unlock()
	for _, done := range pending {
		<-done
	}
}

// detach removes the instance of id from the registry and shuts it down. The
// returned func waits for the instance to release its key.
func (r *ConversationRegistry) detach(id string) func() {
	r.mu.Lock()
	c, ok := r.open[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.open, id)
	done := make(chan struct{})
	r.closing[id] = done
	r.mu.Unlock()

	c.shutdown()
	return func() {
		c.Close()
		r.mu.Lock()
		delete(r.closing, id)
		r.mu.Unlock()
		close(done)
	}
}

// Cached lists the conversations with a local cache.
func (r *ConversationRegistry) Cached(ctx context.Context) ([]string, error) {
	return ListCachedConversations(ctx, r.store)
}
