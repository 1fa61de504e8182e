// Package normalize prepara texto para búsquedas insensibles a tildes,
// necesario con nombres en español ("Construcción" debe coincidir con
// "construccion").
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)), // elimina marcas diacríticas
	norm.NFC,
)

// SearchKey normaliza un término de búsqueda: minúsculas, sin tildes,
// espacios colapsados.
func SearchKey(s string) string {
	out, _, err := transform.String(stripper, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
