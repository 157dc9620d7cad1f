// Package policy implements the Language Policy Table (C2): a process-wide
// registry mapping each Language to the recipe for building and running a
// submission in that language. The registry is the single extension
// point — adding a language is a data addition, not a code change
// elsewhere in the pipeline.
package policy

import (
	"sync"

	"codejudge/internal/model"
	appErr "codejudge/pkg/errors"
)

// Registry holds LanguagePolicy values keyed by Language. Registration
// happens at startup (and, in tests, explicitly). Reads are not lock-free:
// Resolve and Languages take a shared read lock and Register takes the
// write lock, so concurrent Resolve calls during a later Register never
// race.
type Registry struct {
	mu    sync.RWMutex
	table map[model.Language]model.LanguagePolicy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{table: make(map[model.Language]model.LanguagePolicy)}
}

// Register adds or replaces the policy for a language.
func (r *Registry) Register(policy model.LanguagePolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[policy.Language] = policy
}

// Resolve looks up the policy for a language. An unrecognized language
// fails with LanguageNotSupported, never a generic error.
func (r *Registry) Resolve(lang model.Language) (model.LanguagePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.table[lang]
	if !ok {
		return model.LanguagePolicy{}, appErr.UnsupportedLanguage(string(lang))
	}
	return p, nil
}

// Languages returns the set of currently registered languages, for
// diagnostics and the HTTP surface's per-language route table.
func (r *Registry) Languages() []model.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]model.Language, 0, len(r.table))
	for l := range r.table {
		langs = append(langs, l)
	}
	return langs
}
