package responder

import (
	"context"
	"fmt"
	"time"

	"github.com/aiagents/collab-hub/internal/common/clock"
)

// Responder produces the assistant reply for one user message. It must
// return promptly with ctx.Err() once ctx is cancelled.
type Responder interface {
	Respond(ctx context.Context, input string) (string, error)
}

const responseTemplate = "This is a simulated response to: \"%s\". In production, this would involve real multi-agent collaboration using Claude, GPT-4, Gemini, and Perplexity for research-enhanced responses."

func Simulated(input string) string {
	return fmt.Sprintf(responseTemplate, input)
}

// TemplateResponder answers every message with a canned text after a fixed delay.
type TemplateResponder struct {
	delay time.Duration
	clock clock.Clock
}

func NewTemplateResponder(delay time.Duration, clk clock.Clock) *TemplateResponder {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &TemplateResponder{delay: delay, clock: clk}
}

func (r *TemplateResponder) Respond(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.delay <= 0 {
		return Simulated(input), nil
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-r.clock.After(r.delay):
		return Simulated(input), nil
	}
}
