package loader

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/derivgraph/pkg/derivation"
	errs "github.com/matzehuels/derivgraph/pkg/errors"
	"github.com/matzehuels/derivgraph/pkg/observability"
)

// State is the outcome of one load. Exactly one slot is written.
type State struct {
	// ID uniquely identifies the load for log correlation.
	ID string
	// Source names the payload the state was loaded from.
	Source string

	Data  *Slot[*derivation.Graph]
	Error *Slot[string]
}

func newState(source string) *State {
	return &State{
		ID:     uuid.NewString(),
		Source: source,
		Data:   &Slot[*derivation.Graph]{},
		Error:  &Slot[string]{},
	}
}

// Graph returns the validated graph, if the load succeeded.
func (s *State) Graph() (*derivation.Graph, bool) { return s.Data.Get() }

// Err returns the error message, if the load failed.
func (s *State) Err() (string, bool) { return s.Error.Get() }

// Loader validates a fixed payload and publishes the result.
type Loader struct {
	name    string
	payload []byte
	logger  *log.Logger
	parse   func([]byte) (*derivation.Graph, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithPayload replaces the bundled payload. name identifies it in logs.
func WithPayload(name string, data []byte) Option {
	return func(l *Loader) {
		l.name = name
		l.payload = data
	}
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader over the bundled payload.
func New(opts ...Option) *Loader {
	l := &Loader{
		name:    BundledName,
		payload: bundled,
		logger:  log.Default(),
		parse:   derivation.Parse,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the payload name.
func (l *Loader) Source() string { return l.name }

// Load validates the payload once and returns the resulting state.
// It is equivalent to LoadContext with context.Background().
func (l *Loader) Load() *State {
	return l.LoadContext(context.Background())
}

// LoadContext validates the payload once and returns the resulting state.
// Failures never escape as errors or panics: they are converted into the
// error slot's message. ctx is checked before validation starts and passed
// to observability hooks.
func (l *Loader) LoadContext(ctx context.Context) *State {
	st := newState(l.name)
	logger := l.logger.With("load", st.ID, "source", l.name)

	hooks := observability.Loader()
	hooks.OnLoadStart(ctx, l.name)
	start := time.Now()

	g, failure := l.attempt(ctx)
	elapsed := time.Since(start)

	if failure != nil {
		msg := errs.MessageOf(failure)
		st.Error.Set(msg)

		err, ok := failure.(error)
		if !ok {
			err = errs.New(errs.ErrCodeInternal, "%s", msg)
		}
		hooks.OnLoadComplete(ctx, l.name, 0, 0, elapsed, err)
		logger.Warn("Derivation graph rejected", "err", msg)
		return st
	}

	st.Data.Set(g)
	hooks.OnLoadComplete(ctx, l.name, g.NodeCount(), g.LinkCount(), elapsed, nil)
	logger.Debug("Derivation graph loaded",
		"nodes", g.NodeCount(), "links", g.LinkCount(),
		"elapsed", elapsed.Round(time.Microsecond))
	return st
}

// attempt runs validation and reports any failure value, including recovered
// panics, instead of returning an error.
func (l *Loader) attempt(ctx context.Context) (g *derivation.Graph, failure any) {
	defer func() {
		if r := recover(); r != nil {
			g, failure = nil, r
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := l.parse(l.payload)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		// An empty message normalizes to errs.UnknownMessage.
		return nil, errs.New(errs.ErrCodeInternal, "")
	}
	return parsed, nil
}
