package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrUnknownFormula  = errors.New("fórmula personalizada no registrada")
	ErrPersistence     = errors.New("error de persistencia")
	ErrLockNotObtained = errors.New("no se pudo obtener el bloqueo del producto")
)

// NotFoundError indica que un registro que se asume existente (tarea, activo fijo, item de inventario) no está.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnknownFormulaError se devuelve al invocar un id de fórmula que no está en el registro.
type UnknownFormulaError struct {
	MethodID string
}

func (e *UnknownFormulaError) Error() string {
	return fmt.Sprintf("fórmula personalizada %q no registrada", e.MethodID)
}

func (e *UnknownFormulaError) Is(target error) bool { return target == ErrUnknownFormula }

// PersistenceError envuelve un fallo de escritura en el ledger. Aborta el recálculo completo.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}
