package bridge

import "context"

// Invoker performs a named remote invocation on the host. args is encoded as
// a JSON object; the result is decoded into out, which may be nil to discard
// it. Implementations must be safe for concurrent use.
type Invoker interface {
	Invoke(ctx context.Context, cmd string, args any, out any) error
}

// InvokerFunc adapts an ordinary function to the Invoker interface.
type InvokerFunc func(ctx context.Context, cmd string, args any, out any) error

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, cmd string, args any, out any) error {
	return f(ctx, cmd, args, out)
}
