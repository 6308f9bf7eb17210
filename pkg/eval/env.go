package eval

import "github.com/libdbm/libcel/pkg/value"

// Env is the mutable binding environment a single evaluation runs against.
// It must not be shared across concurrent evaluations: macro evaluation
// transiently shadows names in place, so two evaluations sharing an Env
// would race and corrupt each other's iteration variables.
type Env struct {
	vars map[string]value.Value
}

// NewEnv builds an Env from a caller-supplied binding map. The map is
// copied, so the caller's map is never mutated by evaluation.
func NewEnv(bindings map[string]value.Value) *Env {
	vars := make(map[string]value.Value, len(bindings))
	for k, v := range bindings {
		vars[k] = v
	}
	return &Env{vars: vars}
}

func (e *Env) lookup(name string) (value.Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// saved captures whatever was bound to a name before a macro shadows it, so
// it can be restored exactly on every exit path, including errors.
type saved struct {
	name    string
	value   value.Value
	existed bool
}

func (e *Env) shadow(name string, v value.Value) saved {
	prev, existed := e.vars[name]
	s := saved{name: name, value: prev, existed: existed}
	e.vars[name] = v
	return s
}

func (e *Env) restore(s saved) {
	if s.existed {
		e.vars[s.name] = s.value
	} else {
		delete(e.vars, s.name)
	}
}
