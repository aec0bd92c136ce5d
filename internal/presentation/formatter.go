package presentation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/taskflow-api/internal/config"
	"golang.org/x/text/language"
)

// Minute thresholds used when choosing a distance phrase.
const (
	minutesInDay           = 1440
	minutesInAlmostTwoDays = 2520
	minutesInMonth         = 43200
	minutesInTwoMonths     = 86400
)

// DisplayTime is the presentation form of a timestamp.
type DisplayTime struct {
	Date string `json:"date"`
	Read string `json:"read"`
}

// Formatter renders timestamps for a locale and time zone.
type Formatter struct {
	defaultLocale language.Tag
	supported     []language.Tag
	matcher       language.Matcher
	location      *time.Location
	now           func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock overrides the clock used for relative distances.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		f.now = now
	}
}

// NewFormatter builds a Formatter from the presentation settings.
func NewFormatter(cfg config.PresentationConfig, opts ...Option) (*Formatter, error) {
	def, err := ParseLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	// the matcher falls back to the first entry
	supported := []language.Tag{def}
	for _, tag := range []language.Tag{BrazilianPortuguese, English} {
		if tag.String() != def.String() {
			supported = append(supported, tag)
		}
	}

	f := &Formatter{
		defaultLocale: def,
		supported:     supported,
		matcher:       language.NewMatcher(supported),
		location:      loc,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// DefaultLocale returns the configured fallback locale.
func (f *Formatter) DefaultLocale() language.Tag {
	return f.defaultLocale
}

// Match picks the supported locale that best fits an Accept-Language header.
// An empty or unmatched header yields the default locale.
func (f *Formatter) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return f.defaultLocale
	}
	_, index := language.MatchStrings(f.matcher, acceptLanguage)
	return f.supported[index]
}

// Format renders t in the locale carried by ctx, or the default locale.
func (f *Formatter) Format(ctx context.Context, t time.Time) DisplayTime {
	tag, ok := LocaleFromContext(ctx)
	if !ok {
		tag = f.defaultLocale
	}
	p, ok := locales[tag.String()]
	if !ok {
		p = locales[f.defaultLocale.String()]
	}

	return DisplayTime{
		Date: t.In(f.location).Format(p.dateLayout),
		Read: relative(p, t, f.now()),
	}
}

// relative renders the distance between t and now with a past or future
// marker. Equal instants count as past.
func relative(p phrases, t, now time.Time) string {
	earlier, later := t, now
	future := t.After(now)
	if future {
		earlier, later = now, t
	}

	text := distance(p, earlier, later)
	if future {
		return fmt.Sprintf(p.future, text)
	}
	return fmt.Sprintf(p.past, text)
}

func distance(p phrases, earlier, later time.Time) string {
	seconds := math.Floor(later.Sub(earlier).Seconds())
	minutes := int(math.Round(seconds / 60))

	switch {
	case minutes < 2:
		if minutes == 0 {
			return p.distance(lessThanXMinutes, 1)
		}
		return p.distance(xMinutes, minutes)
	case minutes < 45:
		return p.distance(xMinutes, minutes)
	case minutes < 90:
		return p.distance(aboutXHours, 1)
	case minutes < minutesInDay:
		return p.distance(aboutXHours, roundDiv(minutes, 60))
	case minutes < minutesInAlmostTwoDays:
		return p.distance(xDays, 1)
	case minutes < minutesInMonth:
		return p.distance(xDays, roundDiv(minutes, minutesInDay))
	case minutes < minutesInTwoMonths:
		return p.distance(aboutXMonths, roundDiv(minutes, minutesInMonth))
	}

	months := monthsBetween(earlier, later)
	if months < 12 {
		return p.distance(xMonths, roundDiv(minutes, minutesInMonth))
	}

	years := months / 12
	switch rem := months % 12; {
	case rem < 3:
		return p.distance(aboutXYears, years)
	case rem < 9:
		return p.distance(overXYears, years)
	default:
		return p.distance(almostXYears, years+1)
	}
}

func roundDiv(n, d int) int {
	return int(math.Round(float64(n) / float64(d)))
}

// monthsBetween counts whole calendar months from earlier to later.
func monthsBetween(earlier, later time.Time) int {
	earlier, later = earlier.UTC(), later.UTC()
	months := (later.Year()-earlier.Year())*12 + int(later.Month()) - int(earlier.Month())

	anchor := earlier.AddDate(0, months, 0)
	if anchor.After(later) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
