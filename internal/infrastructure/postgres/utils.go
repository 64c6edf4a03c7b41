package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/invoicing-pro/internal/domain/money"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// minorOrNil proyecta un Money opcional a su columna BIGINT nullable.
func minorOrNil(m *money.Money) *int64 {
	if m == nil {
		return nil
	}
	v := m.MinorUnits()
	return &v
}

// moneyOrNil reconstruye un Money opcional desde la columna BIGINT nullable
// y la moneda de la factura.
func moneyOrNil(minor *int64, code string) *money.Money {
	if minor == nil {
		return nil
	}
	m := money.MustOfMinor(*minor, code)
	return &m
}
