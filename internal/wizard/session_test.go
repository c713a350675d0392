package wizard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/events"
	"github.com/rpattn/adminkit/internal/provider"
	"github.com/rpattn/adminkit/internal/validation"
)

type notification struct {
	Message string
	Level   events.Level
}

type recordingNotifier struct {
	notifications []notification
}

func (r *recordingNotifier) Notify(message string, level events.Level) {
	r.notifications = append(r.notifications, notification{message, level})
}

type recordingAnalytics struct {
	events []events.Event
}

func (r *recordingAnalytics) Push(e events.Event) {
	r.events = append(r.events, e)
}

type stubSubmitter struct {
	err    error
	record domain.Record
	calls  int
}

func (s *stubSubmitter) Update(_ context.Context, _, _ string, record domain.Record) (domain.Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	s.record = record
	return record, nil
}

func TestSessionStartsAtInitialStep(t *testing.T) {
	analytics := &recordingAnalytics{}
	s := NewSession(newTestWizard(t), "patients", WithAnalytics(analytics))

	assert.Equal(t, "begin", s.Current())
	assert.Equal(t, "test_wizard_step", s.Step().ResourceName)
	assert.False(t, s.Done())

	require.Len(t, analytics.events, 1)
	assert.Equal(t, "open_wizard", analytics.events[0].WidgetName)
	assert.Equal(t, ViewType, analytics.events[0].ViewType)
	assert.Equal(t, "patients", analytics.events[0].Resource)
}

func TestSessionMountResetsSharedErrors(t *testing.T) {
	store := validation.NewStore()
	store.Replace(validation.Errors{"first_name": {"stale"}})

	s := NewSession(newTestWizard(t), "patients", WithErrorStore(store))
	assert.Same(t, store, s.Errors())
	assert.True(t, store.Empty())
}

func TestSessionFire(t *testing.T) {
	analytics := &recordingAnalytics{}
	s := NewSession(newTestWizard(t), "patients", WithAnalytics(analytics))

	assert.Equal(t, "begin", s.Fire("unknown"))
	assert.Equal(t, "test", s.Fire(Forward))
	assert.True(t, s.Done())

	require.Len(t, analytics.events, 3)
	assert.Equal(t, Forward, analytics.events[2].WidgetName)
	assert.Equal(t, "begin", analytics.events[2].Value)
}

func TestSessionErrorsDisableButDoNotBlock(t *testing.T) {
	s := NewSession(newTestWizard(t), "patients")
	assert.True(t, s.CanFire(Forward))
	assert.False(t, s.CanFire(Backward))

	s.Errors().Replace(validation.Errors{"first_name": {"required"}})
	assert.False(t, s.CanFire(Forward))

	assert.Equal(t, "test", s.Fire(Forward))
	assert.True(t, s.Errors().Empty(), "mounting the next step clears errors")
}

func TestSessionSubmitPopulatesErrors(t *testing.T) {
	notifier := &recordingNotifier{}
	validationErr := &provider.ValidationError{
		Status: &provider.StatusError{StatusCode: http.StatusBadRequest},
		Fields: validation.Errors{"first_name": {"This field may not be blank."}},
	}
	s := NewSession(newTestWizard(t), "patients", WithNotifier(notifier))

	_, err := s.Submit(context.Background(), &stubSubmitter{err: validationErr}, "/patients/", "1", domain.Record{"first_name": ""})
	require.Error(t, err)

	assert.Equal(t, []string{"This field may not be blank."}, s.Errors().Field("first_name"))
	assert.False(t, s.CanFire(Forward))
	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, events.LevelError, notifier.notifications[0].Level)
}

func TestSessionSubmitOtherFailuresKeepErrors(t *testing.T) {
	notifier := &recordingNotifier{}
	s := NewSession(newTestWizard(t), "patients", WithNotifier(notifier))
	s.Errors().Replace(validation.Errors{"age": {"invalid"}})

	boom := errors.New("connection refused")
	_, err := s.Submit(context.Background(), &stubSubmitter{err: boom}, "/patients/", "1", domain.Record{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"invalid"}, s.Errors().Field("age"))
	assert.Equal(t, events.LevelError, notifier.notifications[0].Level)
}

func TestSessionSubmitSuccess(t *testing.T) {
	notifier := &recordingNotifier{}
	submitter := &stubSubmitter{}
	s := NewSession(newTestWizard(t), "patients", WithNotifier(notifier))
	s.Errors().Replace(validation.Errors{"first_name": {"required"}})

	updated, err := s.Submit(context.Background(), submitter, "/patients/", "1", domain.Record{"first_name": "Test"})
	require.NoError(t, err)
	assert.Equal(t, "Test", updated["first_name"])
	assert.True(t, s.Errors().Empty())
	assert.Equal(t, []notification{{"Changes saved", events.LevelSuccess}}, notifier.notifications)
}
