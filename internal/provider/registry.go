package provider

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry holds all registered providers and tracks the active one.
// It is safe for concurrent use. The registry never touches the cache:
// cache keys embed the provider id, so switching the active provider
// leaves other providers' entries intact.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string // registration order, used for stable listings
	activeID  string
	logger    zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger.With().Str("component", "registry").Logger(),
	}
}

// Register adds a provider. The first registered provider becomes the
// active one. Registering an id twice fails with a duplicate-provider
// error.
func (r *Registry) Register(p Provider) error {
	id := p.Info().ID

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[id]; exists {
		return NewDuplicateProviderError(id)
	}

	r.providers[id] = p
	r.order = append(r.order, id)
	if r.activeID == "" {
		r.activeID = id
	}

	r.logger.Info().
		Str("provider", id).
		Str("name", p.Info().Name).
		Msg("Provider registered")

	return nil
}

// Get returns the provider with the given id.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, NewUnknownProviderError(id)
	}
	return p, nil
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activeID == "" {
		return nil, NewUnknownProviderError("")
	}
	return r.providers[r.activeID], nil
}

// ActiveID returns the id of the active provider, or "" if none.
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// SetActive switches the active provider.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return NewUnknownProviderError(id)
	}
	r.activeID = id

	r.logger.Info().Str("provider", id).Msg("Active provider changed")
	return nil
}

// ListByCapability returns, in registration order, every provider that
// declares support for the given operation. Used for caller-level
// fallback selection.
func (r *Registry) ListByCapability(op Operation) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		p := r.providers[id]
		if p.Info().Capabilities.Supports(op) {
			matches = append(matches, p)
		}
	}
	return matches
}

// Infos returns the static metadata of all providers in registration order.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, r.providers[id].Info())
	}
	return infos
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
