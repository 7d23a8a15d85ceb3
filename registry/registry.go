// Package registry holds the set of tools a devflow server exposes.
//
// The registry is populated once at startup and is read-only afterwards.
// It is the single source of truth for both listing and dispatch: a tool is
// callable if and only if it is advertised.
package registry

import (
	"fmt"

	"github.com/zero-day-ai/devflow/tool"
	"github.com/zero-day-ai/devflow/toolerr"
)

// Registry maps tool names to tools and remembers registration order.
// It is safe for concurrent readers; there are no writers after New.
type Registry struct {
	order  []tool.Tool
	byName map[string]tool.Tool
}

// New registers tools in the given order.
// It fails if a tool is nil, has an empty name, or reuses a name.
func New(tools ...tool.Tool) (*Registry, error) {
	r := &Registry{
		order:  make([]tool.Tool, 0, len(tools)),
		byName: make(map[string]tool.Tool, len(tools)),
	}

	for i, t := range tools {
		if t == nil {
			return nil, toolerr.New("registry", "register", toolerr.ErrCodeInvalidInput,
				fmt.Sprintf("tool at position %d is nil", i))
		}
		name := t.Name()
		if name == "" {
			return nil, toolerr.New("registry", "register", toolerr.ErrCodeInvalidInput,
				fmt.Sprintf("tool at position %d has no name", i))
		}
		if _, exists := r.byName[name]; exists {
			return nil, toolerr.New("registry", "register", toolerr.ErrCodeDuplicateTool,
				fmt.Sprintf("tool %q registered twice", name)).
				WithClass(toolerr.ErrorClassPermanent)
		}
		r.byName[name] = t
		r.order = append(r.order, t)
	}

	return r, nil
}

// List returns the descriptors of all tools in registration order.
// Each call returns a fresh slice.
func (r *Registry) List() []tool.Descriptor {
	out := make([]tool.Descriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, tool.ToDescriptor(t))
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, t.Name())
	}
	return out
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []tool.Tool {
	out := make([]tool.Tool, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Resolve looks up a tool by name. A miss is a *toolerr.Error with code
// TOOL_NOT_FOUND, which also matches toolerr.ErrToolNotFound.
func (r *Registry) Resolve(name string) (tool.Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, toolerr.New("registry", "resolve", toolerr.ErrCodeToolNotFound,
			fmt.Sprintf("tool %q not found", name)).
			WithClass(toolerr.ErrorClassSemantic)
	}
	return t, nil
}
