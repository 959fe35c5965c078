package logctx

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/philipp01105/asynclog/config"
	"github.com/philipp01105/asynclog/handler"
)

// Registry hands out one Context per name. Contexts it creates use the
// registry's base configuration and an appender built by NewAppender.
type Registry struct {
	mu       sync.Mutex
	base     config.Config
	contexts map[string]*Context

	newAppender func(config.Config) (handler.Handler, error)
}

// NewRegistry returns an empty registry creating contexts from base.
func NewRegistry(base config.Config) *Registry {
	return &Registry{
		base:        base,
		contexts:    make(map[string]*Context),
		newAppender: NewAppender,
	}
}

// Get returns the started context called name, creating and starting it
// on first use. An empty name creates a context with a generated name.
func (r *Registry) Get(name string) (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = "asynclog-" + uuid.NewString()
	}
	if c, ok := r.contexts[name]; ok {
		return c, nil
	}

	cfg := r.base
	cfg.Name = name
	app, err := r.newAppender(cfg)
	if err != nil {
		return nil, err
	}
	c, err := New(name, cfg, app)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if err := c.Start(); err != nil {
		_ = app.Close()
		return nil, err
	}
	r.contexts[name] = c
	return c, nil
}

// Lookup returns the context called name without creating it.
func (r *Registry) Lookup(name string) (*Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contexts[name]
	return c, ok
}

// Remove forgets the context called name and returns it. The caller owns
// stopping it.
func (r *Registry) Remove(name string) (*Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contexts[name]
	delete(r.contexts, name)
	return c, ok
}

// Names returns the registered context names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.contexts))
	for n := range r.contexts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StopAll stops and removes every context. It returns the total number of
// lost events and the combined errors.
func (r *Registry) StopAll(ctx context.Context) (lost uint64, err error) {
	r.mu.Lock()
	contexts := r.contexts
	r.contexts = make(map[string]*Context)
	r.mu.Unlock()

	for _, c := range contexts {
		n, stopErr := c.Stop(ctx)
		lost += n
		err = multierr.Append(err, stopErr)
	}
	return lost, err
}
