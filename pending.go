package gitkv

import "context"

// Pending is the durability future returned by Set and Delete. It settles
// only when a flush covering the mutation succeeds; a failed flush leaves it
// pending for the next cycle. Callers bound their own wait with the context.
type Pending struct {
	result bool
	done   chan struct{}
}

func newPending(result bool) *Pending {
	return &Pending{result: result, done: make(chan struct{})}
}

func (p *Pending) resolve() {
	close(p.done)
}

// Wait blocks until the covering flush succeeds or ctx ends. The result is
// true for Set, and whether the key existed for Delete.
func (p *Pending) Wait(ctx context.Context) (bool, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Done returns a channel closed once the mutation is durable.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}
