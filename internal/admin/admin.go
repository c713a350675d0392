// Package admin holds the declarative description of every administered
// resource and the providers and wizards built from it.
package admin

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/config"
	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/provider"
	"github.com/rpattn/adminkit/internal/wizard"
)

// ErrUnknownResource is returned for names that were never registered.
var ErrUnknownResource = errors.New("unknown resource")

// ErrUnknownWizard is returned for wizard names a resource does not declare.
var ErrUnknownWizard = errors.New("unknown wizard")

// Admin describes how one resource is listed, shown and edited.
type Admin struct {
	Name         string
	URL          string
	VerboseName  string
	ListFields   []domain.Column
	DetailFields []domain.FieldDescription
	ListFilters  []domain.Filter
	HideListView bool
	Provider     *provider.Provider
	Wizards      map[string]*wizard.Wizard
}

// Wizard returns the named wizard of the resource.
func (a *Admin) Wizard(name string) (*wizard.Wizard, error) {
	w, ok := a.Wizards[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w %q", a.Name, ErrUnknownWizard, name)
	}
	return w, nil
}

// WizardNames returns the wizard names, sorted.
func (a *Admin) WizardNames() []string {
	names := make([]string, 0, len(a.Wizards))
	for name := range a.Wizards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Title returns the verbose name, falling back to the resource name.
func (a *Admin) Title() string {
	if a.VerboseName != "" {
		return a.VerboseName
	}
	return a.Name
}

// Registry indexes admins by resource name.
type Registry struct {
	admins map[string]*Admin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{admins: make(map[string]*Admin)}
}

// Register adds an admin. Names must be unique.
func (r *Registry) Register(a *Admin) error {
	if a == nil || a.Name == "" {
		return errors.New("admin must have a name")
	}
	if _, ok := r.admins[a.Name]; ok {
		return fmt.Errorf("resource %q already registered", a.Name)
	}
	r.admins[a.Name] = a
	return nil
}

// Get returns the admin of a resource.
func (r *Registry) Get(name string) (*Admin, error) {
	a, ok := r.admins[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownResource, name)
	}
	return a, nil
}

// Names returns every registered resource, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.admins))
	for name := range r.admins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listed returns the admins shown in navigation, sorted by name.
func (r *Registry) Listed() []*Admin {
	var out []*Admin
	for _, name := range r.Names() {
		if a := r.admins[name]; !a.HideListView {
			out = append(out, a)
		}
	}
	return out
}

// FromConfig builds a registry with one provider per resource. Wizard
// declarations that break the transition table invariants fail the build.
func FromConfig(cfg config.Config, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := NewRegistry()

	for _, rc := range cfg.Resources {
		a := &Admin{
			Name:         rc.Name,
			URL:          rc.EndpointURL(),
			VerboseName:  rc.VerboseName,
			ListFields:   rc.ListFields,
			DetailFields: rc.DetailFields,
			ListFilters:  rc.ListFilters,
			HideListView: rc.HideListView,
			Provider: provider.New(cfg.API.BaseURL,
				provider.WithTimeout(cfg.API.Timeout),
				provider.WithPageSize(cfg.API.PageSize),
				provider.WithFieldPolicy(rc.Policy()),
				provider.WithLogger(logger.With(zap.String("resource", rc.Name))),
			),
			Wizards: make(map[string]*wizard.Wizard, len(rc.Wizards)),
		}

		for _, wc := range rc.Wizards {
			w, err := buildWizard(wc)
			if err != nil {
				return nil, fmt.Errorf("resource %q: %w", rc.Name, err)
			}
			a.Wizards[wc.Name] = w
		}

		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func buildWizard(wc config.WizardConfig) (*wizard.Wizard, error) {
	if wc.Name == "" {
		return nil, errors.New("wizard must have a name")
	}
	title := wc.Title
	if title == "" {
		title = wc.Name
	}

	// Config map keys arrive lower-cased, so states named in values are
	// lower-cased to match.
	steps := make(map[string]wizard.Step, len(wc.Steps))
	for state, sc := range wc.Steps {
		steps[strings.ToLower(state)] = wizard.Step{ResourceName: sc.ResourceName, Widgets: sc.Widgets}
	}

	machine := make(wizard.Machine, len(wc.Machine))
	for from, edges := range wc.Machine {
		targets := make(map[string]string, len(edges))
		for transition, to := range edges {
			targets[strings.ToLower(transition)] = strings.ToLower(to)
		}
		machine[strings.ToLower(from)] = targets
	}

	return wizard.New(title, strings.ToLower(wc.Initial), steps, machine)
}
