// Package preferences stores UI preferences that outlive a session, currently the language.
package preferences

import (
	"sync"

	"github.com/angelmondragon/meaw-storefront/internal/signal"
	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
)

// Snapshot is the persisted preference set.
type Snapshot struct {
	Language enums.Language `json:"language"`
}

// Engine exposes the language preference.
type Engine interface {
	Language() enums.Language
	SetLanguage(lang enums.Language) (enums.Language, error)
	ToggleLanguage() enums.Language

	Snapshot() Snapshot
	Restore(snapshot Snapshot)
	Subscribe(fn func(Snapshot)) (cancel func())
}

type engine struct {
	mu       sync.Mutex
	language enums.Language
	changes  signal.Hub[Snapshot]
}

// NewEngine starts with the default language.
func NewEngine() Engine {
	return &engine{language: enums.DefaultLanguage}
}

func (e *engine) Language() enums.Language {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

func (e *engine) SetLanguage(lang enums.Language) (enums.Language, error) {
	if !lang.IsValid() {
		return e.Language(), pkgerrors.New(pkgerrors.CodeValidation, "unsupported language").
			WithDetails(map[string]any{"language": string(lang)})
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.language = lang
	e.changes.Emit(Snapshot{Language: lang})
	return lang, nil
}

// ToggleLanguage switches between Bengali and English.
func (e *engine) ToggleLanguage() enums.Language {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.language = e.language.Other()
	e.changes.Emit(Snapshot{Language: e.language})
	return e.language
}

func (e *engine) Snapshot() Snapshot {
	return Snapshot{Language: e.Language()}
}

// Restore applies a persisted language; unknown values keep the default.
func (e *engine) Restore(snapshot Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if snapshot.Language.IsValid() {
		e.language = snapshot.Language
		return
	}
	e.language = enums.DefaultLanguage
}

func (e *engine) Subscribe(fn func(Snapshot)) func() {
	return e.changes.Subscribe(fn)
}
