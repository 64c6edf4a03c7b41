// Package numbering implementa el formateo de números de documento a partir
// de una plantilla por cuenta. La plantilla admite los marcadores de fecha
// YYYY, YY y MM, más una corrida de letras N que se sustituye por el número
// de consecutivo con relleno de ceros: "FYYYYNNNN" con fecha 2026-03-15 y
// consecutivo 7 produce "F20260007". Si la plantilla tiene varias corridas
// de N, la más larga (la última en caso de empate) actúa de consecutivo;
// las demás quedan como texto literal.
//
// Todo el formateo es determinista: misma plantilla + misma fecha + mismo
// número producen siempre la misma salida.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Formatter formatea números y deriva el token de consecutivo de una plantilla.
type Formatter struct {
	format string
	date   time.Time
}

// NewFormatter construye el formateador. La fecha determina los valores de
// los marcadores YYYY/YY/MM; para facturas es la fecha de suministro.
func NewFormatter(format string, date time.Time) (*Formatter, error) {
	if !strings.Contains(format, "N") {
		return nil, fmt.Errorf("numbering: la plantilla %q no contiene marcador N de consecutivo", format)
	}
	return &Formatter{format: format, date: date}, nil
}

// Format devuelve la plantilla original.
func (f *Formatter) Format() string { return f.format }

// SequenceToken deriva la clave de período que delimita el consecutivo.
// Una plantilla con MM produce un token año-mes ("2026-03"); con solo
// YYYY/YY produce el año ("2026"); sin marcadores de fecha el consecutivo
// es global a la cuenta. La corrida del consecutivo se excluye antes de
// buscar marcadores, igual que en FormatNumber.
func (f *Formatter) SequenceToken() string {
	start, end := counterRun(f.format)
	rest := f.format
	if start >= 0 {
		rest = f.format[:start] + f.format[end:]
	}
	hasYear := strings.Contains(rest, "YYYY") || strings.Contains(rest, "YY")
	hasMonth := strings.Contains(rest, "MM")

	switch {
	case hasMonth:
		return fmt.Sprintf("%04d-%02d", f.date.Year(), int(f.date.Month()))
	case hasYear:
		return fmt.Sprintf("%04d", f.date.Year())
	default:
		return "default"
	}
}

// FormatNumber sustituye los marcadores de la plantilla y devuelve el número
// formateado. La corrida de N se rellena con ceros a su ancho; si el
// consecutivo no cabe, se emite completo sin truncar.
func (f *Formatter) FormatNumber(n int64) string {
	out := f.format

	seq := strconv.FormatInt(n, 10)
	start, end := counterRun(out)
	if start >= 0 {
		width := end - start
		if len(seq) < width {
			seq = strings.Repeat("0", width-len(seq)) + seq
		}
		// Centinela \x00 en lugar del consecutivo: los dígitos del número
		// jamás se confunden con los marcadores de fecha que siguen.
		out = out[:start] + "\x00" + out[end:]
	}

	out = strings.ReplaceAll(out, "YYYY", fmt.Sprintf("%04d", f.date.Year()))
	out = strings.ReplaceAll(out, "YY", fmt.Sprintf("%02d", f.date.Year()%100))
	out = strings.ReplaceAll(out, "MM", fmt.Sprintf("%02d", int(f.date.Month())))

	return strings.Replace(out, "\x00", seq, 1)
}

// counterRun localiza la corrida de N que actúa de consecutivo: la corrida
// maximal más larga y, en empate, la última. Así un prefijo literal como
// "INV-" nunca captura el consecutivo de "INV-NNNN". Devuelve (-1, -1) si
// la plantilla no contiene N.
func counterRun(s string) (start, end int) {
	bestStart, bestLen := -1, 0
	for i := 0; i < len(s); {
		if s[i] != 'N' {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == 'N' {
			j++
		}
		if j-i >= bestLen {
			bestStart, bestLen = i, j-i
		}
		i = j
	}
	if bestStart < 0 {
		return -1, -1
	}
	return bestStart, bestStart + bestLen
}
