/*
Package settings holds the user's appearance preferences at runtime.

PURPOSE:
  Theme and accent are read on every page render and written rarely. State
  caches the persisted record, validates changes and writes them through to
  the SettingsStore before they become visible.

CLASSES:
  The front-end applies the preferences as classes on the document root:
    dark theme  -> "dark"
    accent X    -> "theme-X"
  Classes() returns exactly that list so the client never has to derive it.

SEE ALSO:
  - generic/types.go: Theme, Accent, DefaultSettings
  - api/handlers.go: GET/PUT /api/settings
*/
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/nexwork/workbench/generic"
)

type State struct {
	mu      sync.RWMutex
	store   generic.SettingsStore
	current generic.Settings
}

// Load reads the persisted settings. Unknown values stored by an older
// build fall back to the defaults field by field.
func Load(ctx context.Context, store generic.SettingsStore) (*State, error) {
	s, err := store.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &State{store: store, current: sanitize(s)}, nil
}

// Reload replaces the cached settings with what the store holds now.
func (st *State) Reload(ctx context.Context) error {
	s, err := st.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	st.mu.Lock()
	st.current = sanitize(s)
	st.mu.Unlock()
	return nil
}

// Current returns a copy of the active settings.
func (st *State) Current() generic.Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Update is a partial change; empty fields keep their current value.
type Update struct {
	Theme  generic.Theme  `json:"theme,omitempty" yaml:"theme,omitempty"`
	Accent generic.Accent `json:"accent,omitempty" yaml:"accent,omitempty"`
}

// Apply validates u, persists the merged result and makes it current.
func (st *State) Apply(ctx context.Context, u Update) (generic.Settings, error) {
	if u.Theme != "" && !u.Theme.Valid() {
		return generic.Settings{}, generic.Invalid("theme", "unknown theme %q", u.Theme)
	}
	if u.Accent != "" && !u.Accent.Valid() {
		return generic.Settings{}, generic.Invalid("accent", "unknown accent %q", u.Accent)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.current
	if u.Theme != "" {
		next.Theme = u.Theme
	}
	if u.Accent != "" {
		next.Accent = u.Accent
	}
	if next == st.current {
		return next, nil
	}
	if err := st.store.SaveSettings(ctx, next); err != nil {
		return generic.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	st.current = next
	return next, nil
}

// ToggleTheme flips between light and dark.
func (st *State) ToggleTheme(ctx context.Context) (generic.Settings, error) {
	theme := generic.ThemeDark
	if st.Current().Theme == generic.ThemeDark {
		theme = generic.ThemeLight
	}
	return st.Apply(ctx, Update{Theme: theme})
}

// Classes returns the document-root classes for the active settings.
func (st *State) Classes() []string {
	return Classes(st.Current())
}

func Classes(s generic.Settings) []string {
	classes := make([]string, 0, 2)
	if s.Theme == generic.ThemeDark {
		classes = append(classes, "dark")
	}
	return append(classes, "theme-"+string(s.Accent))
}

func sanitize(s generic.Settings) generic.Settings {
	def := generic.DefaultSettings()
	if !s.Theme.Valid() {
		s.Theme = def.Theme
	}
	if !s.Accent.Valid() {
		s.Accent = def.Accent
	}
	return s
}
