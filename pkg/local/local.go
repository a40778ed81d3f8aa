package local

import "fmt"

type Language string

const (
	Spa = Language("es")
	Eng = Language("en")
)

// Parse falls back to Spanish, the app's original language.
func Parse(s string) Language {
	switch s {
	case "en":
		return Eng
	default:
		return Spa
	}
}

type Localization struct {
	language Language
	text     string
}

// TextSet is one user-visible string with its translations. Default is
// the Spanish original.
type TextSet struct {
	Default          string
	translationsText map[Language]string
}

func NewTrans(language Language, text string) Localization {
	return Localization{
		language: language,
		text:     text,
	}
}

func NewSet(defaultText string, localizations ...Localization) TextSet {
	set := TextSet{
		Default:          defaultText,
		translationsText: make(map[Language]string),
	}
	for _, localization := range localizations {
		set.translationsText[localization.language] = localization.text
	}
	return set
}

func (l TextSet) Text(language Language) string {
	if text, ok := l.translationsText[language]; ok {
		return text
	}
	return l.Default
}

func (l TextSet) Format(language Language, a ...any) string {
	return fmt.Sprintf(l.Text(language), a...)
}
