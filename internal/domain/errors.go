package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Firma de retiro (pickup) sobre una requisición aprobada.
	ErrSignatureLockExpired = errors.New("el bloqueo de firma expiró o no pertenece al usuario")
	ErrSignatureLockHeld    = errors.New("otro usuario tiene el bloqueo de firma vigente")

	// Clave de idempotencia usada para otra requisición u operación.
	ErrIdempotencyKeyReused = errors.New("la clave de idempotencia ya fue usada para otro recurso")
)
