package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/webgl/gpucore"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// WGPU > Software (Software is the headless fallback).
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in priority order,
// followed by any others sorted by name.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return orderedNames()
}

// orderedNames must be called with registryMu held.
func orderedNames() []string {
	names := make([]string, 0, len(backends))
	seen := make(map[string]bool, len(backends))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range backends {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get creates a context on the named backend.
// Returns ErrBackendNotAvailable if the backend is not registered.
func Get(name string, cfg Config) (gpucore.Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return factory(cfg)
}

// Default creates a context on the best available backend.
// Priority order: wgpu > software, then any other registered backend.
// A backend whose factory fails is skipped; if every backend fails the
// joined errors are returned with ErrBackendNotAvailable.
func Default(cfg Config) (gpucore.Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	names := orderedNames()
	factories := make([]Factory, len(names))
	for i, name := range names {
		factories[i] = backends[name]
	}
	registryMu.RUnlock()

	errs := []error{ErrBackendNotAvailable}
	for i, factory := range factories {
		ctx, err := factory(cfg)
		if err != nil {
			slogger().Info("backend: unavailable, trying next", "backend", names[i], "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", names[i], err))
			continue
		}
		slogger().Debug("backend: selected", "backend", names[i])
		return ctx, nil
	}
	return nil, errors.Join(errs...)
}

// MustDefault returns a context on the default backend or panics.
func MustDefault(cfg Config) gpucore.Context {
	ctx, err := Default(cfg)
	if err != nil {
		panic(err)
	}
	return ctx
}
