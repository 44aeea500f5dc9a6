// Package resolve drives a single message resolution from raw URL to
// aggregated message through an explicit state machine.
package resolve

import (
	"context"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/permalink"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/slack"
)

// State is the lifecycle of one resolution.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateResolved
	StateFailed
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MessageService fetches the aggregated message for a locator. Consumers
// depend on this interface rather than the concrete slack.Client so a
// substitute can be injected in tests.
type MessageService interface {
	GetMessage(ctx context.Context, loc permalink.Locator) (*slack.Message, error)
}

// Verify slack.Client satisfies MessageService at compile time.
var _ MessageService = (*slack.Client)(nil)

// Pipeline resolves one URL. It is single-use and not safe for concurrent
// callers; each resolution gets its own Pipeline.
type Pipeline struct {
	svc   MessageService
	state State
	msg   *slack.Message
	err   error
}

// New creates an idle Pipeline backed by svc.
func New(svc MessageService) *Pipeline {
	return &Pipeline{svc: svc, state: StateIdle}
}

// Resolve parses rawURL and fetches the aggregated message. A parse failure
// fails the pipeline immediately without any remote call. A message fetch
// failure is terminal; optional sub-lookups (author, channel, permalink)
// have already been degraded to absent inside the message service.
func (p *Pipeline) Resolve(ctx context.Context, rawURL string) (*slack.Message, error) {
	loc, err := permalink.Parse(rawURL)
	if err != nil {
		return p.fail(err)
	}
	p.state = StateResolving

	msg, err := p.svc.GetMessage(ctx, loc)
	if err != nil {
		return p.fail(err)
	}

	p.state = StateResolved
	p.msg = msg
	return msg, nil
}

func (p *Pipeline) fail(err error) (*slack.Message, error) {
	p.state = StateFailed
	p.err = err
	return nil, err
}

// State returns the current pipeline state.
func (p *Pipeline) State() State { return p.state }

// Message returns the resolved message, or nil before Resolved.
func (p *Pipeline) Message() *slack.Message { return p.msg }

// Err returns the terminal error, or nil unless Failed.
func (p *Pipeline) Err() error { return p.err }
