package wizard

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/events"
	"github.com/rpattn/adminkit/internal/provider"
	"github.com/rpattn/adminkit/internal/validation"
)

// ViewType is reported on analytics events emitted by a session.
const ViewType = "wizard"

// Session is one user's pass through a wizard. It owns the validation
// errors of the active step: they are cleared whenever a step mounts and
// replaced when a submission fails.
type Session struct {
	wizard    *Wizard
	resource  string
	current   string
	errors    *validation.Store
	notifier  events.Notifier
	analytics events.Analytics
	logger    *zap.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNotifier sets the notifier used after submissions.
func WithNotifier(n events.Notifier) SessionOption {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithAnalytics sets the analytics sink.
func WithAnalytics(a events.Analytics) SessionOption {
	return func(s *Session) {
		if a != nil {
			s.analytics = a
		}
	}
}

// WithErrorStore shares an existing error store with the session.
func WithErrorStore(store *validation.Store) SessionOption {
	return func(s *Session) {
		if store != nil {
			s.errors = store
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession starts w at its initial state for resource.
func NewSession(w *Wizard, resource string, opts ...SessionOption) *Session {
	s := &Session{
		wizard:    w,
		resource:  resource,
		errors:    validation.NewStore(),
		notifier:  events.Nop{},
		analytics: events.Nop{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mount(w.Initial())
	s.push("open_wizard", nil)
	return s
}

// Current returns the active state.
func (s *Session) Current() string {
	return s.current
}

// Step returns the step of the active state.
func (s *Session) Step() Step {
	step, _ := s.wizard.Step(s.current)
	return step
}

// Errors returns the store holding the active step's validation errors.
func (s *Session) Errors() *validation.Store {
	return s.errors
}

// Done reports whether the active state is terminal.
func (s *Session) Done() bool {
	return s.wizard.IsTerminal(s.current)
}

// CanFire reports whether the control for transition should be enabled:
// the transition exists and the step has no outstanding errors.
func (s *Session) CanFire(transition string) bool {
	if _, ok := s.wizard.Lookup(s.current, transition); !ok {
		return false
	}
	return s.errors.Empty()
}

// Fire applies transition and returns the resulting state. Outstanding
// errors do not block it; an unknown transition is a no-op.
func (s *Session) Fire(transition string) string {
	s.push(transition, s.current)

	next, ok := s.wizard.Lookup(s.current, transition)
	if !ok {
		s.logger.Debug("ignoring unknown wizard transition",
			zap.String("wizard", s.wizard.Title()),
			zap.String("state", s.current),
			zap.String("transition", transition))
		return s.current
	}
	if next != s.current {
		s.mount(next)
	}
	return s.current
}

// Submitter persists step data.
type Submitter interface {
	Update(ctx context.Context, resourceURL, id string, record domain.Record) (domain.Record, error)
}

var _ Submitter = (*provider.Provider)(nil)

// Submit writes record through submitter. Field errors returned by the
// backend replace the step's errors; any failure is reported through the
// notifier and returned.
func (s *Session) Submit(ctx context.Context, submitter Submitter, resourceURL, id string, record domain.Record) (domain.Record, error) {
	updated, err := submitter.Update(ctx, resourceURL, id, record)
	if err != nil {
		var validationErr *provider.ValidationError
		if errors.As(err, &validationErr) {
			s.errors.Replace(validationErr.Fields)
		}
		s.notifier.Notify(err.Error(), events.LevelError)
		return nil, err
	}

	s.errors.Reset()
	s.notifier.Notify("Changes saved", events.LevelSuccess)
	return updated, nil
}

func (s *Session) mount(state string) {
	s.current = state
	s.errors.Reset()
}

func (s *Session) push(widget string, value any) {
	s.analytics.Push(events.Event{
		Name:       events.EventButtonClick,
		WidgetType: events.WidgetAction,
		WidgetName: widget,
		ViewType:   ViewType,
		Resource:   s.resource,
		Value:      value,
	})
}
