// Package guard evaluates per-tool call guards written in CEL.
//
// A guard is a boolean expression over the call's arguments, bound to the
// variable `args`, and the tool name, bound to `tool`. A call is rejected
// before its handler runs when the guard evaluates to false or fails to
// evaluate. For example:
//
//	webapp_deploy: 'args.type in ["zip", "war"] && has(args.slot_name)'
//	code_publish:  'args.version.matches("^v[0-9]+(\\.[0-9]+)*$")'
package guard

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"github.com/zero-day-ai/devflow/toolerr"
)

// Set holds the compiled guards, keyed by tool name.
// It is immutable after Compile and safe for concurrent use.
type Set struct {
	guards map[string]compiled
}

type compiled struct {
	expr    string
	program cel.Program
}

// Compile type-checks every expression. An expression must produce a bool
// (or dyn, checked at evaluation time).
func Compile(exprs map[string]string) (*Set, error) {
	env, err := cel.NewEnv(
		cel.Variable("args", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("tool", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	s := &Set{guards: make(map[string]compiled, len(exprs))}
	for name, expr := range exprs {
		ast, iss := env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return nil, guardConfigError(name, "compile", iss.Err())
		}
		out := ast.OutputType()
		if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, guardConfigError(name, "compile",
				fmt.Errorf("expression must be a bool, got %s", out))
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, guardConfigError(name, "program", err)
		}
		s.guards[name] = compiled{expr: expr, program: prg}
	}
	return s, nil
}

// Tools returns the names of guarded tools, sorted.
func (s *Set) Tools() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.guards))
	for name := range s.guards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unknown returns the guarded tool names not present in registered.
func (s *Set) Unknown(registered []string) []string {
	known := make(map[string]bool, len(registered))
	for _, n := range registered {
		known[n] = true
	}
	var out []string
	for _, n := range s.Tools() {
		if !known[n] {
			out = append(out, n)
		}
	}
	return out
}

// Check evaluates the guard for toolName, if any. It returns nil when the
// call may proceed and a *toolerr.Error with code GUARD_DENIED otherwise.
// A nil Set allows every call.
func (s *Set) Check(toolName string, args map[string]any) error {
	if s == nil {
		return nil
	}
	g, ok := s.guards[toolName]
	if !ok {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	out, _, err := g.program.Eval(map[string]any{
		"args": args,
		"tool": toolName,
	})
	if err != nil {
		return denied(toolName, g.expr, err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return denied(toolName, g.expr, fmt.Errorf("guard produced %T, not bool", out.Value()))
	}
	if !allowed {
		return denied(toolName, g.expr, nil)
	}
	return nil
}

func denied(toolName, expr string, cause error) error {
	err := toolerr.New(toolName, "guard", toolerr.ErrCodeGuardDenied,
		fmt.Sprintf("call rejected by guard %q", expr)).
		WithClass(toolerr.ErrorClassSemantic)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}

func guardConfigError(toolName, op string, cause error) error {
	return toolerr.New("guard", op, toolerr.ErrCodeConfig,
		fmt.Sprintf("guard for %s", toolName)).
		WithCause(cause).
		WithClass(toolerr.ErrorClassInfrastructure)
}
