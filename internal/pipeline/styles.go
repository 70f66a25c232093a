package pipeline

import (
	"strings"
	"sync"
)

// StyleRegistry is the list of style fragments contributed by components
// (the highlighter, user plugins). The CSS assembler includes every
// registered fragment, in registration order.
type StyleRegistry struct {
	mu    sync.RWMutex
	names []string
	css   map[string]string
}

// NewStyleRegistry creates an empty registry.
func NewStyleRegistry() *StyleRegistry {
	return &StyleRegistry{css: make(map[string]string)}
}

var defaultStyles = NewStyleRegistry()

// DefaultStyles returns the process-wide registry.
func DefaultStyles() *StyleRegistry {
	return defaultStyles
}

// Register adds or replaces the fragment registered under name. A
// replaced fragment keeps its position.
func (r *StyleRegistry) Register(name, css string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.css[name]; !ok {
		r.names = append(r.names, name)
	}
	r.css[name] = css
}

// Unregister removes the fragment registered under name.
func (r *StyleRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.css[name]; !ok {
		return
	}
	delete(r.css, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Names returns the registered names in order.
func (r *StyleRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// CSS concatenates every fragment in registration order.
func (r *StyleRegistry) CSS() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parts := make([]string, 0, len(r.names))
	for _, n := range r.names {
		if css := strings.TrimSpace(r.css[n]); css != "" {
			parts = append(parts, css)
		}
	}
	return strings.Join(parts, "\n")
}
