package service

import (
	"context"
	"sync"

	"github.com/aiagents/collab-hub/internal/chat/domain"
)

// Pending is the future for one assistant response.
type Pending struct {
	done     chan struct{}
	once     sync.Once
	cancelFn func()

	reply domain.Message
	err   error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(reply domain.Message, err error) {
	p.once.Do(func() {
		p.reply = reply
		p.err = err
		close(p.done)
	})
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the response is delivered or cancelled, or ctx ends.
// Giving up on ctx does not cancel the response.
func (p *Pending) Wait(ctx context.Context) (domain.Message, error) {
	select {
	case <-p.done:
		return p.reply, p.err
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	}
}

// Cancel discards the response if it has not been delivered yet.
func (p *Pending) Cancel() {
	if p.cancelFn != nil {
		p.cancelFn()
	}
}
