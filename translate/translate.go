// Package translate formats user-facing messages in the caller's locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the host reports no locale preference.
const DEFAULT_LOCALE = "en-US"

// supported lists the catalog languages. The first entry is the fallback.
var supported = []language.Tag{
	language.AmericanEnglish,
	language.German,
}

var matcher = language.NewMatcher(supported)

var printer *message.Printer

func init() {
	err := loadCatalog()
	if err != nil {
		log.Printf("duet: catalog: %v", err)
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("duet: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	printer = message.NewPrinter(Match(locales...))
}

// Match returns the supported language closest to the preferred locales.
// Locales that do not parse are ignored.
func Match(locales ...string) (tag language.Tag) {
	var tags []language.Tag
	for _, name := range locales {
		pref, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, pref)
	}

	_, index, _ := matcher.Match(tags...)
	tag = supported[index]

	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
