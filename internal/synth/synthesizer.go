package synth

import (
	"context"
	"sync/atomic"

	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/logger"
)

// Guard hands out increasing generation tokens. Only the most recently
// issued token is current.
type Guard struct {
	gen atomic.Uint64
}

// Next issues a new token, superseding all earlier ones.
func (g *Guard) Next() uint64 { return g.gen.Add(1) }

// Current reports whether token is the latest one issued.
func (g *Guard) Current(token uint64) bool { return g.gen.Load() == token }

// Outcome is the result of one synthesis call, ready to be applied.
type Outcome struct {
	Token uint64
	Path  filter.Path
	Group *filter.Group
	Err   error
}

// Synthesizer runs synthesis calls against a Backend and applies their
// results atomically.
type Synthesizer struct {
	backend Backend
	props   filter.Properties
	guard   Guard
}

// New creates a synthesizer validating answers against props.
func New(backend Backend, props filter.Properties) *Synthesizer {
	return &Synthesizer{backend: backend, props: props}
}

// Begin reserves a token for a call about to start. Tokens from earlier
// calls stop being current.
func (s *Synthesizer) Begin() uint64 { return s.guard.Next() }

// Run performs the call for token. It blocks; hosts run it off the
// interaction loop and hand the outcome back to Apply.
func (s *Synthesizer) Run(ctx context.Context, token uint64, prompt string, p filter.Path) Outcome {
	lgr := logger.FromContext(ctx).WithValues("token", token, "path", p.String())
	out := Outcome{Token: token, Path: p.Clone()}

	resp, err := s.backend.Synthesize(ctx, Request{Prompt: prompt, FilterProperties: s.props, CurrentPath: p.Clone()})
	if err != nil {
		lgr.Error(err, "AI synthesis failed")
		out.Err = err
		return out
	}
	g, err := Convert(resp, s.props)
	if err != nil {
		lgr.Error(err, "AI synthesis rejected")
		out.Err = err
		return out
	}
	out.Group = g
	return out
}

// Apply replaces the subtree at the outcome's path. The tree is returned
// unchanged with an error when the call failed, when a newer call has been
// started since, or when the path no longer addresses a group.
func (s *Synthesizer) Apply(ctx context.Context, tree *filter.Group, o Outcome) (*filter.Group, error) {
	lgr := logger.FromContext(ctx)
	if !s.guard.Current(o.Token) {
		lgr.V(1).Info("dropping stale AI result", "token", o.Token)
		return tree, ErrStale
	}
	if o.Err != nil {
		return tree, o.Err
	}
	next, err := filter.UpdateGroupAtPathE(tree, o.Path, o.Group)
	if err != nil {
		return tree, err
	}
	lgr.Info("AI filter applied", "path", o.Path.String(), "conditions", o.Group.Len())
	return next, nil
}
