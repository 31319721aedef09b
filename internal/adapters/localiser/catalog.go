// Package localiser resolves user-facing strings against per-locale
// message catalogs using language matching with a base-locale fallback.
package localiser

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

const BaseLocale = "en-US"

type Catalog struct {
	matcher  language.Matcher
	locales  []string
	messages map[string]map[string]string
}

func NewCatalog() *Catalog {
	locales := make([]string, 0, len(messages))
	tags := make([]language.Tag, 0, len(messages))

	// The base locale must be first so the matcher falls back to it.
	locales = append(locales, BaseLocale)
	tags = append(tags, language.MustParse(BaseLocale))

	for locale := range messages {
		if locale == BaseLocale {
			continue
		}
		locales = append(locales, locale)
		tags = append(tags, language.MustParse(locale))
	}

	return &Catalog{
		matcher:  language.NewMatcher(tags),
		locales:  locales,
		messages: messages,
	}
}

func (c *Catalog) Localise(locale, key string, args ...any) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(BaseLocale)
	}

	_, index, _ := c.matcher.Match(tag)
	matched := c.locales[index]

	msg, ok := c.messages[matched][key]
	if !ok {
		msg, ok = c.messages[BaseLocale][key]
	}
	if !ok {
		log.Warn().Str("key", key).Str("locale", locale).Msg("missing localisation key")
		return key
	}

	if len(args) == 0 {
		return msg
	}

	return fmt.Sprintf(msg, args...)
}
