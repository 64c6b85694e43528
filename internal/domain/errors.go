package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidState      = errors.New("estado inválido para la operación")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// ValidationError entrada mal formada; siempre se detecta antes de escribir en el libro.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError recurso referenciado inexistente (ítem, orden, línea).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateError operación sobre una orden que no está en el estado requerido.
type InvalidStateError struct {
	Resource string
	ID       string
	Status   string
	Expected string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s en estado %q (se requiere %q)", e.Resource, e.ID, e.Status, e.Expected)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// InsufficientStockError primer faltante encontrado en la verificación de suficiencia.
type InsufficientStockError struct {
	ItemID    string
	ColorID   string
	Required  int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	if e.ColorID != "" {
		return fmt.Sprintf("%s: ítem %s color %s requiere %d, disponible %d",
			ErrInsufficientStock, e.ItemID, e.ColorID, e.Required, e.Available)
	}
	return fmt.Sprintf("%s: ítem %s requiere %d, disponible %d",
		ErrInsufficientStock, e.ItemID, e.Required, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConcurrencyConflictError bloqueo que no se pudo resolver esperando (timeout, deadlock).
// El caller debe reintentar la operación completa.
type ConcurrencyConflictError struct {
	Operation string
	Err       error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrConflict, e.Operation)
	}
	return fmt.Sprintf("%s: %s: %v", ErrConflict, e.Operation, e.Err)
}

func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConcurrencyConflictError) Unwrap() error { return e.Err }
