package preferences

import (
	"testing"

	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsToBengali(t *testing.T) {
	assert.Equal(t, enums.LanguageBengali, NewEngine().Language())
}

func TestToggleAlternates(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, enums.LanguageEnglish, e.ToggleLanguage())
	assert.Equal(t, enums.LanguageBengali, e.ToggleLanguage())
}

func TestSetLanguage(t *testing.T) {
	e := NewEngine()
	var persisted []Snapshot
	e.Subscribe(func(s Snapshot) { persisted = append(persisted, s) })

	got, err := e.SetLanguage(enums.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, enums.LanguageEnglish, got)

	got, err = e.SetLanguage("fr")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, enums.LanguageEnglish, got)

	require.Len(t, persisted, 1)
	assert.Equal(t, enums.LanguageEnglish, persisted[0].Language)
}

func TestRestore(t *testing.T) {
	e := NewEngine()
	e.Restore(Snapshot{Language: enums.LanguageEnglish})
	assert.Equal(t, enums.LanguageEnglish, e.Language())

	e.Restore(Snapshot{Language: "xx"})
	assert.Equal(t, enums.LanguageBengali, e.Language())
}
