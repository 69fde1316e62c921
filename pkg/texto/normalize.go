// Package texto provee la canonicalización de texto usada para comparar
// nombres y SKUs del inventario. El resultado nunca se persiste: es solo
// la llave de comparación.
package texto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// marcasDiacriticas es el conjunto de marcas a eliminar (categoría Mn).
// Los Set de runes son inmutables; los transformadores de x/text NO lo son
// (guardan buffers entre llamadas), así que la cadena se arma por invocación.
var marcasDiacriticas = runes.In(unicode.Mn)

// Normalize devuelve la forma canónica de s: sin acentos, en minúsculas y
// sin espacios alrededor. Es idempotente, total sobre cualquier string y
// segura para uso concurrente.
func Normalize(s string) string {
	quitarAcentos := transform.Chain(norm.NFD, runes.Remove(marcasDiacriticas), norm.NFC)
	out, _, err := transform.String(quitarAcentos, s)
	if err != nil {
		// transform.String solo falla con transformadores que devuelven error;
		// runes.Remove y norm nunca lo hacen, pero conservamos el original por si acaso.
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
