package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	primary []Command // sorted by Name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds c under its name and aliases. Every name must be non-empty,
// must not start with "-", and must not already be taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for _, n := range names {
		if n == "" || strings.HasPrefix(n, "-") {
			return fmt.Errorf("invalid command name: %q", n)
		}
		if _, taken := r.byName[n]; taken {
			return fmt.Errorf("command already registered: %s", n)
		}
	}

	for _, n := range names {
		r.byName[n] = c
	}
	i := sort.Search(len(r.primary), func(i int) bool { return r.primary[i].Name() >= c.Name() })
	r.primary = append(r.primary, nil)
	copy(r.primary[i+1:], r.primary[i:])
	r.primary[i] = c
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns the registered commands sorted by name, aliases excluded.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, len(r.primary))
	copy(out, r.primary)
	return out
}

// DefaultRegistry is the registry commands add themselves to in init.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry and panics on conflict.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
