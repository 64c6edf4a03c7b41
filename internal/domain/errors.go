package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Se agrupan en tres familias: violaciones de contrato (bugs del caller,
// jamás se reintentan), contención de recursos (recuperables, el caller
// decide si reintenta) y errores referenciales (recurso inexistente).
var (
	// Referenciales
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Violaciones de contrato: indican un bug en el caller, no un error del usuario.
	ErrDraftInvoice     = errors.New("la factura en borrador no admite pagos")
	ErrInvoiceNotDraft  = errors.New("la factura ya fue emitida")
	ErrDraftNotLockable = errors.New("un borrador no puede bloquearse")
	ErrInvoiceLocked    = errors.New("la factura está bloqueada para edición")

	// Integridad del consecutivo: una violación de unicidad al emitir significa
	// que el protocolo reservar → guardar → incrementar se rompió. Jamás se
	// reintenta con otro número; requiere investigación manual.
	ErrSequenceIntegrity = errors.New("número de factura duplicado: integridad del consecutivo violada")

	// Contención: el lock por factura no se adquirió dentro del plazo.
	// Recuperable; se traduce al usuario como "inténtelo de nuevo".
	ErrLockTimeout = errors.New("no se pudo adquirir el lock de la factura")
)
