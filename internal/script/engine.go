package script

import (
	"context"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// DefaultTimeout bounds a single script execution. Scripts run once per
// inbound event, so anything slower than this is a bug in the script.
const DefaultTimeout = 100 * time.Millisecond

// allowedModules is the stdlib subset exposed to rule scripts. No os, no
// network: scripts compute over the event and game state they are handed.
var allowedModules = []string{"math", "text", "times", "fmt", "json"}

// Engine compiles and executes Tengo scripts with injected globals.
type Engine struct {
	timeout time.Duration
}

// NewEngine creates an engine with the given per-run timeout; zero means
// DefaultTimeout.
func NewEngine(timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{timeout: timeout}
}

// Run executes a script with the given globals and returns every variable
// the script defined, keyed by name. Panics inside the script runtime are
// converted to errors.
func (e *Engine) Run(ctx context.Context, sc *Script, globals map[string]interface{}) (map[string]interface{}, error) {
	tengoScript := tengo.NewScript([]byte(sc.Content))
	tengoScript.SetImports(stdlib.GetModuleMap(allowedModules...))

	for name, value := range globals {
		if err := tengoScript.Add(name, value); err != nil {
			return nil, NewError(ErrorTypeCompilation, sc.Name, fmt.Sprintf("failed to bind global %q", name), err)
		}
	}

	compiled, err := tengoScript.Compile()
	if err != nil {
		return nil, NewError(ErrorTypeCompilation, sc.Name, "failed to compile script", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resultChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultChan <- fmt.Errorf("script panic: %v", r)
			}
		}()
		resultChan <- compiled.RunContext(execCtx)
	}()

	select {
	case err := <-resultChan:
		if err != nil {
			if execCtx.Err() != nil {
				return nil, NewError(ErrorTypeTimeout, sc.Name, "script execution timed out", err)
			}
			return nil, NewError(ErrorTypeExecution, sc.Name, "script execution failed", err)
		}
	case <-execCtx.Done():
		return nil, NewError(ErrorTypeTimeout, sc.Name, "script execution timed out", execCtx.Err())
	}

	out := make(map[string]interface{})
	for _, v := range compiled.GetAll() {
		out[v.Name()] = v.Value()
	}
	return out, nil
}
