package translate

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// german holds the de translations, keyed by the en-US format.
var german = map[string]string{
	"channel invalid":                 "Kanal ungültig",
	"modulo by zero":                  "Modulo durch Null",
	"opcode invalid":                  "Opcode ungültig",
	"wrong argument count":            "falsche Anzahl an Argumenten",
	"register invalid":                "Register ungültig",
	"pc %d: %v":                       "pc %d: %v",
	"line %d '%v' %v":                 "Zeile %d '%v' %v",
	"$(%v) is not a valid expression": "$(%v) ist kein gültiger Ausdruck",
	"step limit exceeded":             "Schrittgrenze überschritten",
	"cpu%d line %d %v":                "cpu%d Zeile %d %v",
	"parse":                           "Einlesen",
	"single":                          "Einzellauf",
	"dual":                            "Duettlauf",
}

// loadCatalog registers the translations with the default catalog.
func loadCatalog() (err error) {
	for key, msg := range german {
		err = errors.Join(err, message.SetString(language.German, key, msg))
	}

	return
}
