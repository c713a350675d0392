package wizard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rpattn/adminkit/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testWizardStep = Step{
	ResourceName: "test_wizard_step",
	Widgets: []domain.FieldDescription{
		{Name: "patient.last_name", HelpText: "Test help text", Widget: "text"},
	},
}

func newTestWizard(t *testing.T) *Wizard {
	t.Helper()
	w, err := New("Test Wizard", "", map[string]Step{
		"begin": testWizardStep,
		"test":  {ResourceName: "test_wizard_step"},
	}, Machine{
		"begin": {Forward: "test"},
	})
	require.NoError(t, err)
	return w
}

func TestAdvance(t *testing.T) {
	w := newTestWizard(t)

	assert.Equal(t, "test", w.Advance("begin", "forward"))
	assert.Equal(t, "begin", w.Advance("begin", "unknown"))
	assert.Equal(t, "test", w.Advance("test", "forward"), "terminal states stay put")
}

func TestInitialDefaultsToBegin(t *testing.T) {
	w := newTestWizard(t)
	assert.Equal(t, "begin", w.Initial())
	assert.Equal(t, "Test Wizard", w.Title())
}

func TestExplicitInitialState(t *testing.T) {
	w, err := New("Intake", "start", map[string]Step{"start": {}, "end": {}}, Machine{"start": {Forward: "end"}})
	require.NoError(t, err)
	assert.Equal(t, "start", w.Initial())
}

func TestNewRequiresInitialState(t *testing.T) {
	_, err := New("Intake", "", map[string]Step{"start": {}}, nil)
	assert.ErrorIs(t, err, ErrNoInitialState)
}

func TestNewRejectsUnknownTargets(t *testing.T) {
	_, err := New("Broken", "begin", map[string]Step{"begin": {}}, Machine{
		"begin":  {Forward: "missing"},
		"orphan": {Backward: "begin"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `targets unknown state "missing"`)
	assert.Contains(t, err.Error(), `state "orphan" has transitions but no step`)
}

func TestNewRejectsMissingInitialStep(t *testing.T) {
	_, err := New("Broken", "nowhere", map[string]Step{"begin": {}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `initial state "nowhere" has no step`)
}

func TestTerminalStates(t *testing.T) {
	w := newTestWizard(t)
	assert.False(t, w.IsTerminal("begin"))
	assert.True(t, w.IsTerminal("test"))
}

func TestIntrospection(t *testing.T) {
	w, err := New("Intake", "begin", map[string]Step{"begin": {}, "middle": {}, "end": {}}, Machine{
		"begin":  {Forward: "middle"},
		"middle": {Forward: "end", Backward: "begin"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"begin", "end", "middle"}, w.States())
	assert.Equal(t, []string{Backward, Forward}, w.Transitions("middle"))
	assert.Empty(t, w.Transitions("end"))
}

func TestStepIsImmutable(t *testing.T) {
	steps := map[string]Step{"begin": {
		ResourceName: "patients",
		Widgets:      []domain.FieldDescription{{Name: "first_name"}},
	}}
	machine := Machine{"begin": {}}
	w, err := New("Intake", "", steps, machine)
	require.NoError(t, err)

	steps["begin"].Widgets[0].Name = "mutated"
	machine["begin"][Forward] = "begin"

	step, ok := w.Step("begin")
	require.True(t, ok)
	step.Widgets[0].Name = "mutated again"

	again, _ := w.Step("begin")
	if diff := cmp.Diff([]domain.FieldDescription{{Name: "first_name"}}, again.Widgets); diff != "" {
		t.Fatalf("step widgets changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, "begin", w.Advance("begin", Forward))

	_, ok = w.Step("missing")
	assert.False(t, ok)
}
