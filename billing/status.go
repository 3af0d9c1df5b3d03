package billing

import (
	"golang.org/x/text/language"

	"github.com/nexwork/workbench/generic"
)

var statusLabels = map[language.Tag]map[generic.Status]string{
	language.BrazilianPortuguese: {
		generic.StatusNotStarted: "Não Iniciado",
		generic.StatusInProgress: "Em Progresso",
		generic.StatusCompleted:  "Concluído",
		generic.StatusOnHold:     "Em Espera",
	},
	language.English: {
		generic.StatusNotStarted: "Not Started",
		generic.StatusInProgress: "In Progress",
		generic.StatusCompleted:  "Completed",
		generic.StatusOnHold:     "On Hold",
	},
}

// First entry is the fallback for unmatched locales.
var labelMatcher = language.NewMatcher([]language.Tag{
	language.BrazilianPortuguese,
	language.English,
})

// StatusLabel returns the pt-BR label, or the raw status when unknown.
func StatusLabel(status generic.Status) string {
	return labelIn(language.BrazilianPortuguese, status)
}

// StatusLabelFor picks the label language from a locale such as "en-US"
// or an Accept-Language header value.
func StatusLabelFor(locale string, status generic.Status) string {
	return labelIn(MatchLocale(locale), status)
}

// MatchLocale resolves a locale string to one of the supported label
// languages. Empty or unparseable input resolves to pt-BR.
func MatchLocale(locale string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return language.BrazilianPortuguese
	}
	_, idx, _ := labelMatcher.Match(tags...)
	if idx == 1 {
		return language.English
	}
	return language.BrazilianPortuguese
}

func labelIn(tag language.Tag, status generic.Status) string {
	if label, ok := statusLabels[tag][status]; ok {
		return label
	}
	return string(status)
}
