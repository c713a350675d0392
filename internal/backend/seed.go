package backend

import (
	"context"
	"fmt"

	"github.com/rpattn/adminkit/internal/config"
	"github.com/rpattn/adminkit/internal/domain"
)

// ResourcesFromConfig returns the served resources declared in cfg.
func ResourcesFromConfig(cfg config.Config) []Resource {
	resources := make([]Resource, len(cfg.Resources))
	for i, rc := range cfg.Resources {
		resources[i] = Resource{Name: rc.Name, Required: rc.Required}
	}
	return resources
}

// Seed inserts the fixture records declared in cfg.
func Seed(ctx context.Context, store Store, cfg config.Config) (int, error) {
	n := 0
	for _, rc := range cfg.Resources {
		for _, fixture := range rc.Seed {
			if _, err := store.Create(ctx, rc.Name, domain.Record(fixture)); err != nil {
				return n, fmt.Errorf("failed to seed %s: %w", rc.Name, err)
			}
			n++
		}
	}
	return n, nil
}
