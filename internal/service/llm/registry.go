package llm

import (
	"fmt"
	"sync"

	domainllm "codescrybe/internal/domain/services/llm"
)

// Registry routes model names to registered providers. Resolution is
// cached per model; providers are registered once at startup.
type Registry struct {
	mu        sync.RWMutex
	providers []domainllm.Provider
	cache     map[string]domainllm.Provider
}

// NewRegistry creates a registry over the given providers. Providers
// are tried in registration order, so put the preferred vendor first
// and fallbacks after it.
func NewRegistry(providers ...domainllm.Provider) *Registry {
	return &Registry{
		providers: providers,
		cache:     make(map[string]domainllm.Provider),
	}
}

// Resolve returns the first registered provider that supports the
// model.
func (r *Registry) Resolve(model string) (domainllm.Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}

	r.mu.RLock()
	if p, ok := r.cache[model]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have resolved the model while we waited
	// for the write lock.
	if p, ok := r.cache[model]; ok {
		return p, nil
	}

	for _, p := range r.providers {
		if p.SupportsModel(model) {
			r.cache[model] = p
			return p, nil
		}
	}
	return nil, fmt.Errorf("no provider supports model '%s'", model)
}

// Validate checks that at least one provider is registered. Called at
// startup to fail fast on misconfiguration.
func (r *Registry) Validate() error {
	if len(r.providers) == 0 {
		return fmt.Errorf("no LLM providers registered")
	}
	return nil
}
