// Package markdown escapa texto dinámico para MarkdownV2 de Telegram.
package markdown

import "strings"

// reservados son los caracteres que MarkdownV2 exige escapar con backslash.
const reservados = "_*[]()~`>#+-=|{}.!"

var escaper = buildEscaper()

func buildEscaper() *strings.Replacer {
	pairs := make([]string, 0, len(reservados)*2)
	for _, c := range reservados {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}

// Escape antepone backslash a cada carácter reservado de MarkdownV2.
// Todo texto proveniente del usuario o del inventario debe pasar por aquí
// antes de interpolarse en una respuesta.
func Escape(s string) string {
	return escaper.Replace(s)
}
