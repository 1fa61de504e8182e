// Package money formatea y parsea montos en formato regional: punto como
// separador de miles y coma decimal, siempre con dos decimales ("1.234,50").
//
// Política de parseo (única para toda la aplicación): en bordes de
// persistencia y API se usa ParseAmount (estricto, retorna ErrInvalidAmount);
// solo la agregación de celdas de display tolera vacíos como cero vía
// ParseAmountOrZero.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indica entrada vacía o no numérica en ParseAmount.
var ErrInvalidAmount = errors.New("monto inválido")

// FormatAmount renderiza un decimal con separador de miles '.' y coma decimal,
// siempre con dos decimales: 1234.5 -> "1.234,50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2) // "-1234.50"
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// FormatAmountAny renderiza cualquier valor crudo. Entradas nil o no numéricas
// producen "0,00" en lugar de panic (el formato nunca falla hacia el display).
func FormatAmountAny(v any) string {
	switch x := v.(type) {
	case nil:
		return FormatAmount(decimal.Zero)
	case decimal.Decimal:
		return FormatAmount(x)
	case *decimal.Decimal:
		if x == nil {
			return FormatAmount(decimal.Zero)
		}
		return FormatAmount(*x)
	case int:
		return FormatAmount(decimal.NewFromInt(int64(x)))
	case int64:
		return FormatAmount(decimal.NewFromInt(x))
	case float64:
		return FormatAmount(decimal.NewFromFloat(x))
	case string:
		d, err := ParseAmount(x)
		if err != nil {
			return FormatAmount(decimal.Zero)
		}
		return FormatAmount(d)
	default:
		return FormatAmount(decimal.Zero)
	}
}

// ParseAmount es el inverso estricto de FormatAmount: quita separadores de
// miles ('.'), convierte la coma decimal a punto y parsea. Entrada vacía o no
// numérica retorna ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: vacío", ErrInvalidAmount)
	}
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseAmountOrZero parsea tolerante: celdas vacías o ilegibles valen cero.
// Reservado para agregación de valores de display; nunca usarlo al persistir.
func ParseAmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
