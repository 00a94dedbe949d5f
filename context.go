package igniter

import (
	"fmt"
	"sync"

	"github.com/igniter-hq/igniter-go/logger"
)

// Context is the per-request typed value map accumulated through the
// procedure chain (spec §3 "Context", §4.2). Each procedure's
// ContextPatch is merged into it before the next procedure runs.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
	log    logger.Logger
}

func newContext(base map[string]any, log logger.Logger) *Context {
	values := make(map[string]any, len(base))
	for k, v := range base {
		values[k] = v
	}
	return &Context{values: values, log: log}
}

// ContextPatch is the set of named values a procedure contributes to the
// request's Context (spec §4.2 "Procedure").
type ContextPatch map[string]any

// merge installs patch into the context, logging a warning (not an
// error) when a key collides with an existing one — later procedures
// win, matching the documented last-write ordering (spec §9 open
// question 3).
func (c *Context) merge(patch ContextPatch) {
	if len(patch) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range patch {
		if _, exists := c.values[k]; exists {
			c.log.Warn("igniter: context key overwritten by later procedure", logger.Fields{"key": k})
		}
		c.values[k] = v
	}
}

// Get returns the value stored at key, type-asserted to T. ok is false
// when the key is absent or holds a value of a different type.
func Get[T any](ctx *Context, key string) (T, bool) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	var zero T
	raw, ok := ctx.values[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// MustGet returns the value stored at key, panicking if it is absent or
// of the wrong type. Intended for context keys a procedure chain
// guarantees are present by construction (spec §4.2).
func MustGet[T any](ctx *Context, key string) T {
	v, ok := Get[T](ctx, key)
	if !ok {
		panic(fmt.Sprintf("igniter: context key %q missing or wrong type", key))
	}
	return v
}

// snapshot returns a shallow copy of the accumulated values.
func (c *Context) snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
