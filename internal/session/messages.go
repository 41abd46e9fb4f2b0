package session

import "github.com/angelmondragon/meaw-storefront/pkg/enums"

const invalidCredentialsMessage = "Invalid email or password"

var invalidCredentialsByLanguage = map[enums.Language]string{
	enums.LanguageBengali: "ইমেইল বা পাসওয়ার্ড ভুল",
	enums.LanguageEnglish: invalidCredentialsMessage,
}

func localizedInvalidCredentials(lang enums.Language) string {
	if msg, ok := invalidCredentialsByLanguage[lang]; ok {
		return msg
	}
	return invalidCredentialsByLanguage[enums.DefaultLanguage]
}
