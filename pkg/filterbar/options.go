package filterbar

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/filterbar/internal/synth"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/logger"
)

// Option configures a Bar.
type Option func(*Bar)

// WithTree sets the initial tree. The default is an empty AND group.
func WithTree(tree *filter.Group) Option {
	return func(b *Bar) {
		if tree != nil {
			b.tree = tree
		}
	}
}

// WithContext sets the context handed to option providers, actions and
// synthesis calls.
func WithContext(ctx context.Context) Option {
	return func(b *Bar) {
		if ctx != nil {
			b.ctx = ctx
		}
	}
}

// WithLogger attaches lgr to the bar's context.
func WithLogger(lgr *logr.Logger) Option {
	return func(b *Bar) {
		if lgr != nil {
			b.lgr = lgr
		}
	}
}

// WithDebounce overrides the options loader's debounce.
func WithDebounce(d time.Duration) Option {
	return func(b *Bar) { b.debounce = &d }
}

// WithSynthesizer enables the "Filter by AI" item backed by backend.
func WithSynthesizer(backend synth.Backend) Option {
	return func(b *Bar) { b.backend = backend }
}

// WithActions adds caller actions to group menus.
func WithActions(actions ...filter.Action) Option {
	return func(b *Bar) { b.actions = append(b.actions, actions...) }
}

// WithNewGroup controls the "New Group" item. It is shown by default.
func WithNewGroup(enabled bool) Option {
	return func(b *Bar) { b.newGroup = enabled }
}

// WithOnChange registers a callback invoked with every new tree.
func WithOnChange(fn func(*filter.Group)) Option {
	return func(b *Bar) { b.onChange = fn }
}

// WithOnOptionsLoaded registers a callback invoked from a loader goroutine
// whenever a property's options finish loading or start loading. Hosts use
// it to schedule OptionsUpdated on their own event loop.
func WithOnOptionsLoaded(fn func(property string)) Option {
	return func(b *Bar) { b.onOptions = fn }
}

func (b *Bar) context() context.Context {
	if b.lgr != nil {
		return logger.WithLogger(b.ctx, b.lgr)
	}
	return b.ctx
}
