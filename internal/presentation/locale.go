package presentation

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
)

// Supported display locales.
var (
	BrazilianPortuguese = language.MustParse("pt-BR")
	English             = language.English
)

type phrases struct {
	dateLayout string
	past       string // fmt verb receives the distance
	future     string
	units      map[unit][2]string // singular, plural (plural takes %d)
}

type unit int

const (
	lessThanXMinutes unit = iota
	xMinutes
	aboutXHours
	xDays
	aboutXMonths
	xMonths
	aboutXYears
	overXYears
	almostXYears
)

var locales = map[string]phrases{
	"pt-BR": {
		dateLayout: "02/01/2006",
		past:       "há %s",
		future:     "em %s",
		units: map[unit][2]string{
			lessThanXMinutes: {"menos de um minuto", "menos de %d minutos"},
			xMinutes:         {"1 minuto", "%d minutos"},
			aboutXHours:      {"cerca de 1 hora", "cerca de %d horas"},
			xDays:            {"1 dia", "%d dias"},
			aboutXMonths:     {"cerca de 1 mês", "cerca de %d meses"},
			xMonths:          {"1 mês", "%d meses"},
			aboutXYears:      {"cerca de 1 ano", "cerca de %d anos"},
			overXYears:       {"mais de 1 ano", "mais de %d anos"},
			almostXYears:     {"quase 1 ano", "quase %d anos"},
		},
	},
	"en": {
		dateLayout: "01/02/2006",
		past:       "%s ago",
		future:     "in %s",
		units: map[unit][2]string{
			lessThanXMinutes: {"less than a minute", "less than %d minutes"},
			xMinutes:         {"1 minute", "%d minutes"},
			aboutXHours:      {"about 1 hour", "about %d hours"},
			xDays:            {"1 day", "%d days"},
			aboutXMonths:     {"about 1 month", "about %d months"},
			xMonths:          {"1 month", "%d months"},
			aboutXYears:      {"about 1 year", "about %d years"},
			overXYears:       {"over 1 year", "over %d years"},
			almostXYears:     {"almost 1 year", "almost %d years"},
		},
	},
}

func (p phrases) distance(u unit, count int) string {
	forms := p.units[u]
	if count == 1 {
		return forms[0]
	}
	return fmt.Sprintf(forms[1], count)
}

// ParseLocale resolves a configured locale name to a supported tag.
func ParseLocale(name string) (language.Tag, error) {
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", name, err)
	}
	if _, ok := locales[tag.String()]; !ok {
		return language.Und, fmt.Errorf("unsupported locale %q", name)
	}
	return tag, nil
}

type localeKey struct{}

// WithLocale returns a copy of ctx carrying the display locale.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// LocaleFromContext returns the locale stored by WithLocale.
func LocaleFromContext(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(localeKey{}).(language.Tag)
	return tag, ok
}
