package server

import (
	"context"
	"sync"
)

// BuildSettingsProvider is the build-system collaborator contract: given a
// document URL and language, it returns the compiler arguments to attach to
// native requests for that document, or ok=false if it has no opinion.
type BuildSettingsProvider interface {
	Settings(ctx context.Context, url, language string) ([]string, bool)
}

// NoBuildSettings is a BuildSettingsProvider that never has an opinion,
// used when no external build-system collaborator is configured.
type NoBuildSettings struct{}

func (NoBuildSettings) Settings(context.Context, string, string) ([]string, bool) {
	return nil, false
}

// buildSettingsCache memoizes a provider's answer per URL so that every
// native request triggered by a single keystroke doesn't re-derive compiler
// arguments from scratch. Entries are invalidated on didClose.
type buildSettingsCache struct {
	provider BuildSettingsProvider

	mu      sync.Mutex
	entries map[string][]string
	known   map[string]bool
}

func newBuildSettingsCache(provider BuildSettingsProvider) *buildSettingsCache {
	return &buildSettingsCache{
		provider: provider,
		entries:  make(map[string][]string),
		known:    make(map[string]bool),
	}
}

// compilerArgs returns the cached compiler arguments for url, consulting the
// provider on first use. A provider answer of ok=false is not cached, so the
// provider is asked again on the next call.
func (c *buildSettingsCache) compilerArgs(ctx context.Context, url, language string) []string {
	c.mu.Lock()
	if args, ok := c.entries[url]; ok {
		c.mu.Unlock()
		return args
	}
	c.mu.Unlock()

	args, ok := c.provider.Settings(ctx, url, language)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.entries[url] = args
	}
	return args
}

// invalidate drops any cached entry for url, called on didClose.
func (c *buildSettingsCache) invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}
