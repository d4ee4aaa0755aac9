package service

import "strings"

const minMaskableLength = 7

// MaskPhone deja visibles un prefijo y los dos ultimos caracteres del
// telefono; el resto se sustituye por '*'. Numeros de menos de 7
// caracteres (tras limpiar) se devuelven sin cambios.
func MaskPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	clean := b.String()

	n := len(clean)
	if n < minMaskableLength {
		return clean
	}

	prefix := 4
	if strings.HasPrefix(clean, "+") && n > 12 {
		prefix = 5
	}
	prefix = min(prefix, n-2)

	return clean[:prefix] + strings.Repeat("*", n-prefix-2) + clean[n-2:]
}
