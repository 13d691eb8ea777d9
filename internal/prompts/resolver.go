package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrNotFound is returned when no prompt is registered under a key.
var ErrNotFound = errors.New("prompt not found")

// Resolver resolves prompts with file overrides.
// Resolution order: <dir>/<key>.tmpl > Embedded default
type Resolver struct {
	dir      string
	embedded map[string]EmbeddedPrompt
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewResolver creates a resolver preloaded with the embedded prompts.
// dir may be empty, which disables overrides.
func NewResolver(dir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		dir:      dir,
		embedded: make(map[string]EmbeddedPrompt),
		logger:   logger,
	}
	for _, p := range Embedded() {
		r.Register(p)
	}
	return r
}

// Register registers an embedded prompt, replacing any previous one
// with the same key.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Compute hash if not provided
	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}

	// Extract variables if not provided
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// Dir returns the override directory, or "" when overrides are disabled.
func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve returns the override for key if one exists on disk, otherwise
// the embedded default.
func (r *Resolver) Resolve(key string) (*ResolvedPrompt, error) {
	r.mu.RLock()
	embedded, ok := r.embedded[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if r.dir != "" {
		path := filepath.Join(r.dir, key+".tmpl")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			text := string(data)
			return &ResolvedPrompt{
				Key:        key,
				Text:       text,
				Variables:  ExtractVariables(text),
				Hash:       HashText(text),
				IsOverride: true,
				Path:       path,
			}, nil
		case !errors.Is(err, fs.ErrNotExist):
			r.logger.Warn("failed to read prompt override", "key", key, "path", path, "error", err)
			// Fall through to embedded default
		}
	}

	return &ResolvedPrompt{
		Key:       key,
		Text:      embedded.Text,
		Variables: embedded.Variables,
		Hash:      embedded.Hash,
	}, nil
}

// Render resolves key and executes it against data.
func (r *Resolver) Render(key string, data Data) (string, error) {
	p, err := r.Resolve(key)
	if err != nil {
		return "", err
	}
	return Render(key, p.Text, data)
}

// GetEmbedded returns the embedded default for a key (no override resolution).
func (r *Resolver) GetEmbedded(key string) (*EmbeddedPrompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.embedded[key]
	return &p, ok
}

// List resolves every registered key, sorted by key.
func (r *Resolver) List() ([]*ResolvedPrompt, error) {
	r.mu.RLock()
	keys := make([]string, 0, len(r.embedded))
	for k := range r.embedded {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)

	out := make([]*ResolvedPrompt, 0, len(keys))
	for _, k := range keys {
		p, err := r.Resolve(k)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Export writes the embedded default for key into the override directory
// so it can be edited. Existing files are left alone unless force is set.
func (r *Resolver) Export(key string, force bool) (string, error) {
	if r.dir == "" {
		return "", errors.New("prompt override directory not configured")
	}
	p, ok := r.GetEmbedded(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	path := filepath.Join(r.dir, key+".tmpl")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("override already exists: %s", path)
		}
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create prompt dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(p.Text), 0o644); err != nil {
		return "", fmt.Errorf("write prompt override: %w", err)
	}
	r.logger.Info("exported prompt", "key", key, "path", path)
	return path, nil
}
