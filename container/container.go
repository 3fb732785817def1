/*
Package container is an in-memory mediator.Resolver. It plays the role of the
host's composition layer: instances are registered under a mediator.Contract
and resolved by the dispatch engine.
*/
package container

import (
	"fmt"
	"sync"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Container is a concurrency-safe registry of single and multi instances.
type Container struct {
	mu     sync.RWMutex
	single map[cmed.Contract]any
	multi  map[cmed.Contract][]any
}

var _ cmed.Resolver = (*Container)(nil)

// New constructs an empty Container.
func New() *Container {
	return &Container{
		single: make(map[cmed.Contract]any),
		multi:  make(map[cmed.Contract][]any),
	}
}

// Set registers the single instance for c. Duplicate registrations are rejected.
func (c *Container) Set(contract cmed.Contract, instance any) error {
	if instance == nil {
		return fmt.Errorf("register %s: %w", contract, berr.ErrNullArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.single[contract]; exists {
		return fmt.Errorf("register %s: %w", contract, berr.ErrHandlerExists)
	}

	c.single[contract] = instance

	return nil
}

// Append adds instance to the ordered list registered for c.
func (c *Container) Append(contract cmed.Contract, instance any) error {
	if instance == nil {
		return fmt.Errorf("register %s: %w", contract, berr.ErrNullArgument)
	}

	c.mu.Lock()
	c.multi[contract] = append(c.multi[contract], instance)
	c.mu.Unlock()

	return nil
}

// Resolve returns the single instance registered for c.
func (c *Container) Resolve(contract cmed.Contract) (any, bool) {
	c.mu.RLock()
	v, ok := c.single[contract]
	c.mu.RUnlock()

	return v, ok
}

// ResolveAll returns a copy of the instances registered for c in registration order.
func (c *Container) ResolveAll(contract cmed.Contract) []any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]any(nil), c.multi[contract]...)
}

// AddSignalHandler registers the handler for signal type S. Duplicate bindings are rejected.
func AddSignalHandler[S cmed.Signal[R], R any](c *Container, h cmed.SignalHandler[S, R]) error {
	return c.Set(cmed.HandlerContract[S, R](), h)
}

// AddNotificationHandler appends a handler for notification type N. Multiple handlers are allowed.
func AddNotificationHandler[N cmed.Notification](c *Container, h cmed.NotificationHandler[N]) error {
	return c.Append(cmed.NotificationHandlerContract[N](), h)
}

// AddBehaviour appends a pipeline behaviour for (S, R). The first added runs outermost.
func AddBehaviour[S cmed.Signal[R], R any](c *Container, b cmed.PipelineBehaviour[S, R]) error {
	return c.Append(cmed.BehaviourContract[S, R](), b)
}

// AddPreProcessor appends a pre-processor for S.
func AddPreProcessor[S any](c *Container, p cmed.PreProcessor[S]) error {
	return c.Append(cmed.PreProcessorContract[S](), p)
}

// AddPostProcessor appends a post-processor for (S, R).
func AddPostProcessor[S cmed.Signal[R], R any](c *Container, p cmed.PostProcessor[S, R]) error {
	return c.Append(cmed.PostProcessorContract[S, R](), p)
}

// AddExceptionAction appends an action run when S fails with an error of category E.
func AddExceptionAction[S any, E error](c *Container, a cmed.ExceptionAction[S]) error {
	return c.Append(cmed.ExceptionActionContract[S, E](), a)
}

// AddExceptionHandler appends a handler that may recover S failing with an error of category E.
func AddExceptionHandler[S cmed.Signal[R], R any, E error](c *Container, h cmed.ExceptionHandler[S, R]) error {
	return c.Append(cmed.ExceptionHandlerContract[S, R, E](), h)
}
