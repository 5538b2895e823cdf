package preset

import (
	"context"
	"sort"
	"sync"

	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/domain/tax"
	ierr "github.com/billforge/billforge/internal/errors"
)

// Registry maps preset names to ordered tax rule bundles. A preset
// resolves to rules that are concatenated after the caller-supplied tax
// list; an unknown name is a validation failure, never a silent default.
type Registry struct {
	store cache.Cache

	mu    sync.RWMutex
	names map[string]struct{}
}

func NewRegistry(store cache.Cache) *Registry {
	return &Registry{
		store: store,
		names: make(map[string]struct{}),
	}
}

// Register stores a bundle under the given name, replacing any previous
// bundle with that name. The rules are copied so later mutation of the
// caller's slice cannot change the registered bundle.
func (r *Registry) Register(ctx context.Context, name string, rules []tax.Rule) error {
	if name == "" {
		return ierr.NewError("preset name is required").
			WithHint("Tax presets must be registered under a non-empty name").
			Mark(ierr.ErrValidation)
	}

	bundle := make([]tax.Rule, len(rules))
	for i, rule := range rules {
		bundle[i] = rule.Clone()
	}

	r.store.Set(ctx, cache.Key(cache.PrefixTaxPreset, name), bundle, 0)

	r.mu.Lock()
	r.names[name] = struct{}{}
	r.mu.Unlock()

	return nil
}

// Resolve returns a copy of the named bundle.
func (r *Registry) Resolve(ctx context.Context, name string) ([]tax.Rule, error) {
	value, found := r.store.Get(ctx, cache.Key(cache.PrefixTaxPreset, name))
	if !found {
		return nil, ierr.NewErrorf("unknown tax preset %q", name).
			WithHintf("Tax preset %q is not registered", name).
			WithFieldPath("config.tax_preset").
			Mark(ierr.ErrValidation)
	}

	bundle, ok := value.([]tax.Rule)
	if !ok {
		return nil, ierr.NewErrorf("corrupt tax preset %q", name).
			Mark(ierr.ErrSystem)
	}

	out := make([]tax.Rule, len(bundle))
	for i, rule := range bundle {
		out[i] = rule.Clone()
	}
	return out, nil
}

// Names lists the registered preset names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
