package template

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
)

// Engine compiles widget templates and keeps them by name.
// It is safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	funcs  template.FuncMap
	byName map[string]*Template
}

// Template is a compiled widget template. It is safe for concurrent use.
type Template struct {
	name string
	tmpl *template.Template
	vars []string
}

// NewEngine creates an engine with the built-in functions.
func NewEngine() *Engine {
	return &Engine{
		funcs:  builtinFuncs(),
		byName: make(map[string]*Template),
	}
}

// AddFunc registers fn under name for templates compiled afterwards.
// Calls to it take Handlebars-style arguments like the built-ins.
func (e *Engine) AddFunc(name string, fn any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.funcs[name] = fn
}

// parse converts and parses src with a snapshot of the engine's functions.
func (e *Engine) parse(name, src string) (*Template, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmpty
	}

	e.mu.RLock()
	funcs := make(template.FuncMap, len(e.funcs))
	for k, v := range e.funcs {
		funcs[k] = v
	}
	e.mu.RUnlock()

	isFunc := func(s string) bool {
		_, ok := funcs[s]
		return ok
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(convertSyntax(src, isFunc))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}
	return &Template{name: name, tmpl: tmpl, vars: extractVariables(src, isFunc)}, nil
}

// Compile parses src and stores the result under name, replacing any
// template of the same name.
func (e *Engine) Compile(name, src string) (*Template, error) {
	t, err := e.parse(name, src)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.byName[name] = t
	e.mu.Unlock()
	return t, nil
}

// MustCompile is like Compile but panics on error. It is meant for
// templates built into the binary.
func (e *Engine) MustCompile(name, src string) *Template {
	t, err := e.Compile(name, src)
	if err != nil {
		panic(fmt.Sprintf("template: MustCompile(%q): %v", name, err))
	}
	return t
}

// Lookup returns the template compiled under name.
func (e *Engine) Lookup(name string) (*Template, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.byName[name]
	return t, ok
}

// Render parses src and executes it once without storing it.
func (e *Engine) Render(src string, vars map[string]any) (template.HTML, error) {
	t, err := e.parse("inline", src)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}

// RenderNamed executes the template compiled under name.
func (e *Engine) RenderNamed(name string, vars map[string]any) (template.HTML, error) {
	t, ok := e.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t.Render(vars)
}

// Name returns the name the template was compiled under.
func (t *Template) Name() string {
	return t.name
}

// Variables returns the variable names the template references, in order
// of first use.
func (t *Template) Variables() []string {
	out := make([]string, len(t.vars))
	copy(out, t.vars)
	return out
}

// Execute writes the rendered template to w.
func (t *Template) Execute(w io.Writer, vars map[string]any) error {
	if err := t.tmpl.Execute(w, vars); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExecute, t.name, err)
	}
	return nil
}

// Render executes the template and returns the escaped markup.
func (t *Template) Render(vars map[string]any) (template.HTML, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, vars); err != nil {
		return "", err
	}
	return template.HTML(sb.String()), nil
}
