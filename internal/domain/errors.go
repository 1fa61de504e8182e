package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrReferenced: el registro está referenciado por otra tabla (FK) y no
	// puede borrarse; el caller debe ofrecer cierre lógico en su lugar.
	ErrReferenced = errors.New("registro referenciado por otros datos")

	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrUserLocked   = errors.New("cuenta bloqueada temporalmente")
	ErrUserInactive = errors.New("usuario inactivo")
)
