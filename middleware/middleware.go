// Package middleware provides an interception chain around turn execution.
// Middlewares can validate, rate-limit, log, and post-process a turn before
// and after the pipeline runs.
package middleware

import (
	"context"

	"github.com/sweetpotato0/odialingua/message"
)

// Context carries a single turn through the middleware chain.
type Context struct {
	// Utterance is the raw user input for this turn.
	Utterance string

	// History holds the prior conversation messages.
	History []*message.Message

	// Reply is the assistant message produced by the final handler.
	Reply *message.Message

	// Metadata passes data between middlewares.
	Metadata map[string]interface{}

	context context.Context
}

// NewContext creates a middleware context for one turn.
func NewContext(ctx context.Context) *Context {
	return &Context{
		Metadata: make(map[string]interface{}),
		context:  ctx,
	}
}

// Context returns the underlying context.Context.
func (c *Context) Context() context.Context {
	return c.context
}

// Middleware intercepts a turn on its way into and out of the pipeline.
type Middleware interface {
	// Name identifies the middleware for logging and debugging.
	Name() string

	// Execute runs the middleware logic. It receives the turn context and a
	// next handler to continue the chain. Returning an error stops the chain.
	Execute(ctx *Context, next Handler) error
}

// Handler passes control to the next middleware in the chain.
type Handler func(*Context) error

// Chain is a sequence of middlewares executed around a final handler.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a middleware chain.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{middlewares: middlewares}
}

// Add appends a middleware to the chain.
func (c *Chain) Add(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Execute runs the chain, ending with the final handler.
func (c *Chain) Execute(ctx *Context, finalHandler Handler) error {
	return c.execute(ctx, 0, finalHandler)
}

func (c *Chain) execute(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		return finalHandler(ctx)
	}
	next := func(ctx *Context) error {
		return c.execute(ctx, index+1, finalHandler)
	}
	return c.middlewares[index].Execute(ctx, next)
}
