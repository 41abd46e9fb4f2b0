package enums

import "fmt"

// Language is a supported UI language.
type Language string

const (
	LanguageBengali Language = "bn"
	LanguageEnglish Language = "en"
)

var validLanguages = []Language{
	LanguageBengali,
	LanguageEnglish,
}

// DefaultLanguage is used when no preference was persisted.
const DefaultLanguage = LanguageBengali

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// IsValid reports whether the language is supported.
func (l Language) IsValid() bool {
	for _, candidate := range validLanguages {
		if candidate == l {
			return true
		}
	}
	return false
}

// Other returns the language a toggle switches to.
func (l Language) Other() Language {
	if l == LanguageEnglish {
		return LanguageBengali
	}
	return LanguageEnglish
}

// ParseLanguage converts a raw string into a Language.
func ParseLanguage(value string) (Language, error) {
	for _, candidate := range validLanguages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid language %q", value)
}
