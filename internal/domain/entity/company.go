package entity

import "time"

// Company son los datos de una parte de la factura (emisor o cliente).
// Es un snapshot por cuenta; la factura referencia supplier y customer.
type Company struct {
	ID        string
	AccountID string
	Name      string
	TaxID     string
	VatID     string
	Address   string
	Email     string
	Phone     string
	IBAN      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
