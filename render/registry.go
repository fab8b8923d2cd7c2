package render

import (
	"fmt"
	"html/template"
	"sort"
	"sync"

	"github.com/randalmurphal/blogkit/blocks"
)

// Widget renders one block.
type Widget interface {
	Render(tag blocks.Tag) (template.HTML, error)
}

// WidgetFunc adapts a function to the Widget interface.
type WidgetFunc func(tag blocks.Tag) (template.HTML, error)

// Render calls f(tag).
func (f WidgetFunc) Render(tag blocks.Tag) (template.HTML, error) {
	return f(tag)
}

// Registry maps block names to widgets. Names are matched exactly.
type Registry struct {
	mu       sync.RWMutex
	widgets  map[string]Widget
	fallback Widget
}

// NewRegistry creates an empty registry whose fallback is the
// "Unknown block" notice.
func NewRegistry() *Registry {
	return &Registry{
		widgets:  make(map[string]Widget),
		fallback: WidgetFunc(unknownBlock),
	}
}

// Register adds a widget under name.
// Panics if a widget with the same name is already registered.
func (r *Registry) Register(name string, w Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.widgets[name]; exists {
		panic(fmt.Sprintf("widget %q already registered", name))
	}
	r.widgets[name] = w
}

// SetFallback replaces the widget used for unregistered names.
func (r *Registry) SetFallback(w Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fallback = w
}

// Lookup returns the widget registered under name.
func (r *Registry) Lookup(name string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.widgets[name]
	return w, ok
}

// IsRegistered checks if a widget is registered under name.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names, sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.widgets))
	for name := range r.widgets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes the widget registered under name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.widgets, name)
}

// Render renders tag with its registered widget, or with the fallback.
func (r *Registry) Render(tag blocks.Tag) (template.HTML, error) {
	r.mu.RLock()
	w, ok := r.widgets[tag.Name]
	if !ok {
		w = r.fallback
	}
	r.mu.RUnlock()

	out, err := w.Render(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrWidget, tag.Name, err)
	}
	return out, nil
}
