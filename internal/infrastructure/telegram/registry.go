package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Registry owns the active MTProto clients. The process bootstrap
// creates it, registers clients into it and shuts it down on exit;
// nothing else holds client references directly.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*MTProtoClient
	logger  zerolog.Logger
}

// NewRegistry creates an empty client registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*MTProtoClient),
		logger:  logger.With().Str("component", "client_registry").Logger(),
	}
}

// Register adds a client under an id. Registering the same id twice is
// an error.
func (r *Registry) Register(id string, client *MTProtoClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[id]; exists {
		return fmt.Errorf("client %q already registered", id)
	}
	r.clients[id] = client
	r.logger.Info().Str("client_id", id).Msg("client registered")
	return nil
}

// Lookup returns the client registered under id.
func (r *Registry) Lookup(id string) (*MTProtoClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[id]
	return client, ok
}

// Shutdown disconnects every registered client and empties the
// registry. Returns the number of clients that failed to disconnect.
func (r *Registry) Shutdown(ctx context.Context) int {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*MTProtoClient)
	r.mu.Unlock()

	failed := 0
	for id, client := range clients {
		if err := client.Disconnect(ctx); err != nil {
			r.logger.Warn().Err(err).Str("client_id", id).Msg("failed to disconnect client")
			failed++
		}
	}
	r.logger.Info().Int("count", len(clients)).Int("failed", failed).Msg("registry shut down")
	return failed
}
