package entity

import "time"

// NumberSequence es el consecutivo de numeración de una cuenta, con una fila
// por par (cuenta, token). El token codifica el período (año o año-mes) que
// el formato de numeración de la cuenta determina.
//
// NextNumber solo crece: nunca decrece ni se reutiliza, aunque la factura
// que lo consumió se elimine después. Huecos en la serie son legales;
// duplicados jamás.
type NumberSequence struct {
	ID            string
	AccountID     string
	SequenceToken string
	Format        string
	NextNumber    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
