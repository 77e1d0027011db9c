package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tags etiquetas normalizadas (JSONB). "Pintura Acrílica" y "pintura acrilica" son la misma etiqueta.
type Tags []string

var lower = cases.Lower(language.Und)

// NormalizeTag recorta, pasa a minúsculas y elimina tildes/diacríticos.
func NormalizeTag(tag string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(tag))
	if err != nil {
		folded = strings.TrimSpace(tag)
	}
	return strings.Join(strings.Fields(lower.String(folded)), " ")
}

// NormalizeTags normaliza, descarta vacías y elimina duplicados conservando el orden.
// Nunca devuelve nil (la columna es NOT NULL).
func NormalizeTags(tags []string) Tags {
	out := make(Tags, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		n := NormalizeTag(tag)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
