// Package brdoc normaliza y formatea documentos brasileños usados por la app:
// CPF (11 dígitos), teléfono (DDD + 8 o 9 dígitos) y CEP (8 dígitos).
//
// La validación sólo mira la cantidad de dígitos; las máscaras son de presentación.
package brdoc

import "unicode"

const (
	cpfLen      = 11
	cepLen      = 8
	phoneMinLen = 10
	phoneMaxLen = 11
)

// Digits devuelve sólo los dígitos ASCII de s.
func Digits(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return string(out)
}

// IsCPF indica si s tiene exactamente 11 dígitos y nada más.
func IsCPF(s string) bool {
	return len(s) == cpfLen && Digits(s) == s
}

// IsPhone indica si s (ya limpio) tiene 10 u 11 dígitos.
func IsPhone(s string) bool {
	return len(s) >= phoneMinLen && len(s) <= phoneMaxLen && Digits(s) == s
}

// IsCEP indica si s (ya limpio) tiene 8 dígitos.
func IsCEP(s string) bool {
	return len(s) == cepLen && Digits(s) == s
}

// FormatCPF aplica la máscara 000.000.000-00. Entradas incompletas se enmascaran hasta donde alcance.
func FormatCPF(cpf string) string {
	d := Digits(cpf)
	if len(d) > cpfLen {
		d = d[:cpfLen]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// FormatPhone aplica (00) 00000-0000 o (00) 0000-0000.
func FormatPhone(phone string) string {
	d := Digits(phone)
	if len(d) > phoneMaxLen {
		d = d[:phoneMaxLen]
	}
	switch {
	case len(d) == 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case len(d) == 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	case len(d) > 2:
		return "(" + d[:2] + ") " + d[2:]
	default:
		return d
	}
}

// FormatCEP aplica 00000-000.
func FormatCEP(cep string) string {
	d := Digits(cep)
	if len(d) != cepLen {
		return d
	}
	return d[:5] + "-" + d[5:]
}
